package app

import "time"

// Operation tracks the CLI command an app instance was created for. Its ID
// tags every log line the command writes.
type Operation struct {
	ID        string
	Name      string
	StartedAt time.Time
	Status    string // "success" or "error"
	Err       error
}

// NewOperation creates an operation that starts out successful.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:        now.UTC().Format("20060102T150405Z"),
		Name:      name,
		StartedAt: now,
		Status:    "success",
	}
}

// Fail marks the operation as failed. The first error is kept.
func (op *Operation) Fail(err error) {
	op.Status = "error"
	if op.Err == nil {
		op.Err = err
	}
}

// Failed returns true if any step of the operation reported an error.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}

// Elapsed returns how long the operation has been running at now.
func (op *Operation) Elapsed(now time.Time) time.Duration {
	return now.Sub(op.StartedAt)
}
