package webtrace

import (
	"math/rand"
	"sync"
	"time"
)

var (
	seededGUIDGen     *rand.Rand
	seededGUIDGenOnce sync.Once
	seededGUIDLock    sync.Mutex
)

func genSeededGUID() uint64 {
	// Make sure the generator is seeded exactly once.
	seededGUIDGenOnce.Do(func() {
		seededGUIDGen = rand.New(rand.NewSource(time.Now().UnixNano()))
	})

	// The golang random generators are *not* intrinsically thread-safe.
	seededGUIDLock.Lock()
	defer seededGUIDLock.Unlock()
	// zero means "no id" in SpanContext
	for {
		if id := uint64(seededGUIDGen.Int63()); id != 0 {
			return id
		}
	}
}

func genSeededGUID2() (uint64, uint64) {
	return genSeededGUID(), genSeededGUID()
}
