package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID identifies a plan across saves and loads
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ParseID accepts any UUID, such as the identifier stamped into a workbook
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("plan ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("plan ID %q: %w", s, err)
	}
	return ID(id.String()), nil
}
