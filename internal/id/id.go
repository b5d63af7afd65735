// Package id generates document identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	hexAlphabet = "0123456789abcdef"

	// Length matches a MongoDB ObjectID rendered as hex, so ids from either
	// store backend look the same on the wire.
	Length = 24
)

// Generate creates a random 24-character lowercase hex id using NanoID.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate() (string, error) {
	id, err := gonanoid.Generate(hexAlphabet, Length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate() string {
	id, err := Generate()
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s has the shape of a generated id.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
