// Package ids generates and validates the short record identifiers used by
// every focusflow record type.
package ids

import (
	"crypto/sha256"
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	length   = 8
)

var pattern = regexp.MustCompile(`^[a-z0-9]{8}$`)

// NewID generates a new nanoid.
func NewID() (string, error) {
	return gonanoid.Generate(alphabet, length)
}

// MustNewID is NewID for callers that cannot recover from a broken entropy source.
func MustNewID() string {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

// Validate checks whether an ID matches the expected pattern.
func Validate(id string) error {
	if !pattern.MatchString(id) {
		return fmt.Errorf("invalid ID: %q (must be 8 lowercase alphanumeric characters)", id)
	}
	return nil
}

// FromKey derives a stable ID from an arbitrary key, so records that are
// logged more than once under the same key share an ID.
func FromKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[int(sum[i])%len(alphabet)]
	}
	return string(out)
}
