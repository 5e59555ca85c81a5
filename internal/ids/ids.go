package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewConversation returns a lexicographically sortable identifier used as a
// conversation document key.
func NewConversation() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewMessage returns a random identifier assigned to an appended message.
func NewMessage() string {
	return uuid.NewString()
}

// NewRequest returns a correlation identifier attached to incoming requests.
func NewRequest() string {
	return uuid.NewString()
}
