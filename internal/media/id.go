// Package media holds the core value types shared across the graph
// compiler, node registry, cache and wire protocol: identifiers, stream
// count triples and numeric restrictions.
package media

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// ID is a 128-bit opaque identifier. Equality and ordering are bytewise,
// matching spec.md's "Identifier" value type.
type ID uuid.UUID

// NewID generates a fresh random identifier.
func NewID() ID {
	return ID(uuid.New())
}

// Nil is the zero identifier.
var Nil = ID(uuid.Nil)

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Compare returns -1, 0 or 1 depending on the bytewise ordering of id and
// other, so IDs can be used as map keys and sorted deterministically.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// MarshalText and UnmarshalText use the canonical UUID string, so an ID
// encodes as a JSON string and can also key a JSON object.
func (id ID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *ID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return fmt.Errorf("media.ID: %w", err)
	}
	*id = ID(u)
	return nil
}

// ParseID parses a canonical UUID string into an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("media.ParseID: %w", err)
	}
	return ID(u), nil
}
