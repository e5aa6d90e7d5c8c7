package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID string. ULIDs sort lexicographically by generation
// time, which keeps order and fill ids naturally ordered in journals and
// SQLite indexes. Monotonic entropy keeps ids generated within the same
// millisecond increasing.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		// Only possible if entropy is exhausted or time overflows.
		panic(err)
	}
	return u.String()
}
