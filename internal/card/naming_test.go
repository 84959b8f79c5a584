package card_test

import (
	"testing"
	"time"

	"pfoca/internal/card"
)

func TestGenerateTimestampName(t *testing.T) {
	got := card.GenerateTimestampName(time.Date(2024, 3, 5, 9, 7, 59, 0, time.UTC))
	if want := "pfoca_20240305_0907.pfp"; got != want {
		t.Errorf("GenerateTimestampName() = %q, want %q", got, want)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a/b", "a_b.pfp"},
		{"c.pfp", "c.pfp"},
		{`x\y`, "x_y.pfp"},
		{"  trip  ", "trip.pfp"},
		{"../up", "_._up.pfp"},
		{".mine", "_mine.pfp"},
		{".pfp", "_pfp.pfp"},
	}
	for _, tt := range tests {
		if got := card.SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
