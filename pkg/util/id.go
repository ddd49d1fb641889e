// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewUserID returns a random identifier for a new user
func NewUserID() (string, error) {
	return gonanoid.Generate(charset, 21)
}

// NewRequestID returns a short random identifier attached to every request.
// Falls back to "unknown" when no randomness is available.
func NewRequestID() string {
	id, err := gonanoid.Generate(charset, 10)
	if err != nil {
		return "unknown"
	}

	return id
}
