package util

import "github.com/google/uuid"

// NewID generates a unique identifier used for turn and event correlation.
func NewID() string { return uuid.NewString() }
