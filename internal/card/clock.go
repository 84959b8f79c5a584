package card

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts item and layer ID generation so tests are deterministic.
type IDGenerator interface {
	New() uuid.UUID
}

// UUIDGenerator produces random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() uuid.UUID { return uuid.New() }
