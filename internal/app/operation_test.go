package app

import (
	"errors"
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	start := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name      string
		operation string
		now       time.Time
		wantID    string
	}{
		{
			name:      "utc start",
			operation: "SaveProject",
			now:       start,
			wantID:    "20240615T143045Z",
		},
		{
			name:      "local start is normalized",
			operation: "ListProjects",
			now:       start.In(time.FixedZone("UTC+2", 2*60*60)),
			wantID:    "20240615T143045Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.operation, tt.now)

			if op.Name != tt.operation {
				t.Errorf("Name = %q, want %q", op.Name, tt.operation)
			}
			if op.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", op.ID, tt.wantID)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if op.Failed() {
				t.Error("Failed() = true for a new operation")
			}
		})
	}
}

func TestOperation_Fail(t *testing.T) {
	op := NewOperation("ExportProject", time.Now())
	first := errors.New("first")

	op.Fail(first)
	op.Fail(errors.New("second"))

	if !op.Failed() || op.Status != "error" {
		t.Errorf("Status = %q, want error", op.Status)
	}
	if op.Err != first {
		t.Errorf("Err = %v, want %v", op.Err, first)
	}
}

func TestOperation_Elapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	op := NewOperation("RenderProject", start)
	if got := op.Elapsed(start.Add(1500 * time.Millisecond)); got != 1500*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 1.5s", got)
	}
}
