package store

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewID mints a lexicographically sortable entity identifier. ULIDs are
// globally unique within an entity kind, which the client-side delete
// path relies on.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
