package sensor

import "github.com/google/uuid"

// IDGenerator produces a fresh, unique sensor identifier per call.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

// NewID calls f.
func (f IDFunc) NewID() string { return f() }

// UUIDGenerator issues time-ordered UUIDv7 identifiers, so ids sort in
// creation order. It falls back to a random UUIDv4 if the v7 clock source
// fails.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
