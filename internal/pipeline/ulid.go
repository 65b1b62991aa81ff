package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 48 bits of millisecond timestamp followed by 80 bits
// of randomness, written as 26 Crockford base32 characters. IDs created
// within the same millisecond carry an increasing sequence so they still
// sort in creation order.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func generateULID() string {
	return ulidAt(time.Now())
}

func ulidAt(t time.Time) string {
	ulidMu.Lock()
	ts := uint64(t.UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}
	seq := lastSeq
	ulidMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	rand.Read(b[8:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeCrockford(b)
}

// encodeCrockford writes 128 bits as 26 base32 digits, most significant
// first. The leading digit carries only the top 3 bits.
func encodeCrockford(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])
	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
