package model

import (
	"github.com/google/uuid"
)

// NewID returns a time-ordered identifier (UUIDv7).
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.NewString()
	}
	return id.String()
}

// ParseID validates an identifier and returns its canonical form.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

// ParseIDs validates several identifiers at once, stopping at the first bad one.
func ParseIDs(raw ...string) ([]string, error) {
	ids := make([]string, len(raw))
	for i, r := range raw {
		id, err := ParseID(r)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
