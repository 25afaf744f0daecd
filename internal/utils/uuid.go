package utils

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a random (version 4) UUID in canonical form
func GenerateUUID() string {
	return uuid.NewString()
}

// IsValidUUID reports whether id parses as a canonical UUID
func IsValidUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
