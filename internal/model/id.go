package model

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewID generates a ULID for entity primary keys.
// ULIDs are lexicographically sortable, so primary-key order matches
// insertion order.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
