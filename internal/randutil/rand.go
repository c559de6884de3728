// Package randutil derives reproducible random sources for tables and bots.
package randutil

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns a source for a named stream under a parent seed, so a
// single configured seed can drive a table's deck and each of its bots
// without the streams correlating.
func Derive(seed int64, stream string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(stream))
	return New(int64(mix(uint64(seed)) ^ h.Sum64()))
}

// Reader returns a reproducible byte stream for a named stream under a
// parent seed, for consumers that take an io.Reader such as id generators.
func Reader(seed int64, stream string) io.Reader {
	r := Derive(seed, stream)
	var key [32]byte
	for i := 0; i < len(key); i += 8 {
		binary.LittleEndian.PutUint64(key[i:], r.Uint64())
	}
	return rand.NewChaCha8(key)
}

// SeedOrNow returns seed, or a time based seed when seed is zero.
func SeedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
