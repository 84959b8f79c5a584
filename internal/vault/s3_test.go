package vault

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestS3Vault_Keys(t *testing.T) {
	v := NewS3VaultWithClient("test", "bucket", "cards/", s3.New(s3.Options{Region: "us-east-1"}))

	if got := v.key("a.pfp"); got != "cards/a.pfp" {
		t.Errorf("key() = %q, want %q", got, "cards/a.pfp")
	}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"cards/a.pfp", "a.pfp", true},
		{"cards/nested/a.pfp", "", false},
		{"cards/notes.txt", "", false},
		{"other/a.pfp", "", false},
		{"cards/", "", false},
	}
	for _, tt := range tests {
		got, ok := v.nameFromKey(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("nameFromKey(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
