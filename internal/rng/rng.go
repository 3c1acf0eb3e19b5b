// Package rng provides the random sources for rolls that do not need seed
// commitments: a crypto/rand backed source for live rolls, a seeded source
// for reproducible sessions and a scripted source for deterministic replay.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	mathrand "math/rand/v2"
)

// CryptoSource draws from the operating system entropy pool. It is safe for
// concurrent use. Entropy failure is unrecoverable and panics.
type CryptoSource struct{}

// Crypto returns the live source.
func Crypto() CryptoSource { return CryptoSource{} }

// NextInt returns a uniform draw from [low, high], inclusive both ends.
func (CryptoSource) NextInt(low, high int64) int64 {
	if high < low {
		panic(fmt.Sprintf("rng: invalid range [%d, %d]", low, high))
	}
	span := uint64(high-low) + 1
	if span == 0 {
		// The range covers every int64.
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			panic(fmt.Sprintf("rng: entropy source failed: %v", err))
		}
		return low + int64(binary.BigEndian.Uint64(buf[:]))
	}
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(span))
	if err != nil {
		panic(fmt.Sprintf("rng: entropy source failed: %v", err))
	}
	return low + int64(n.Uint64())
}

// Choose picks one element of options.
func (s CryptoSource) Choose(options []string) string {
	return options[s.NextInt(0, int64(len(options)-1))]
}

// SeededSource is a reproducible source for local sessions. Equal seeds yield
// equal draw sequences. Not safe for concurrent use.
type SeededSource struct {
	r *mathrand.Rand
}

// Seeded returns a source replaying the sequence for seed.
func Seeded(seed int64) *SeededSource {
	return &SeededSource{r: mathrand.New(mathrand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// NextInt returns a uniform draw from [low, high], inclusive both ends.
func (s *SeededSource) NextInt(low, high int64) int64 {
	if high < low {
		panic(fmt.Sprintf("rng: invalid range [%d, %d]", low, high))
	}
	span := uint64(high-low) + 1
	if span == 0 {
		return low + int64(s.r.Uint64())
	}
	return low + int64(s.r.Uint64N(span))
}

// Choose picks one element of options.
func (s *SeededSource) Choose(options []string) string {
	return options[s.NextInt(0, int64(len(options)-1))]
}

// ScriptedSource replays queued draws and picks, panicking if a draw falls
// outside the requested range or the script runs dry. It backs deterministic
// replay in tests and tooling.
type ScriptedSource struct {
	ints  []int64
	picks []string
}

// Scripted returns a source that replays ints for NextInt and picks for
// Choose, in order.
func Scripted(ints []int64, picks []string) *ScriptedSource {
	return &ScriptedSource{
		ints:  append([]int64(nil), ints...),
		picks: append([]string(nil), picks...),
	}
}

// NextInt pops the next scripted draw.
func (s *ScriptedSource) NextInt(low, high int64) int64 {
	if len(s.ints) == 0 {
		panic("rng: scripted draws exhausted")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < low || v > high {
		panic(fmt.Sprintf("rng: scripted draw %d outside [%d, %d]", v, low, high))
	}
	return v
}

// Choose pops the next scripted pick.
func (s *ScriptedSource) Choose(options []string) string {
	if len(s.picks) == 0 {
		panic("rng: scripted picks exhausted")
	}
	v := s.picks[0]
	s.picks = s.picks[1:]
	return v
}
