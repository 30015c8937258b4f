// Package recordid issues identifiers for compression records. Ids are
// vid_-prefixed lowercase ULIDs: creation-time sortable in the database,
// opaque to callers, and backed by crypto/rand entropy so concurrent
// creates never collide.
package recordid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const prefix = "vid_"

var entropy = &ulid.LockedMonotonicReader{
	MonotonicReader: ulid.Monotonic(rand.Reader, 0),
}

// New returns the id for a freshly stored compression record.
func New() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return prefix + strings.ToLower(id.String())
}

// IsValid reports whether value is a well-formed record id.
func IsValid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Parse extracts the ULID embedded in a record id.
func Parse(value string) (ulid.ULID, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(value), prefix)
	if !ok {
		return ulid.ULID{}, fmt.Errorf("record id missing %q prefix", prefix)
	}
	return ulid.Parse(raw)
}
