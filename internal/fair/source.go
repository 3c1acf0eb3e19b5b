package fair

import (
	"fmt"
	"math"
)

// Source adapts a Stream to the dice source contract.
type Source struct {
	stream *Stream
}

// New returns a Source drawing from the (serverSeed, clientSeed, nonce)
// stream.
func New(serverSeed, clientSeed string, nonce uint64) *Source {
	return &Source{stream: NewStream(serverSeed, clientSeed, nonce)}
}

// NextInt returns a uniform draw from [low, high], inclusive both ends. Words
// above the largest multiple of the span are discarded and redrawn, so no
// value is favored by the modulo.
func (s *Source) NextInt(low, high int64) int64 {
	if high < low {
		panic(fmt.Sprintf("fair: invalid range [%d, %d]", low, high))
	}
	span := uint64(high-low) + 1
	if span == 0 {
		// The range covers every int64; any word is a fair draw.
		return low + int64(s.stream.Uint64())
	}
	limit := math.MaxUint64 - math.MaxUint64%span
	for {
		v := s.stream.Uint64()
		if v < limit {
			return low + int64(v%span)
		}
	}
}

// Choose picks one element of options.
func (s *Source) Choose(options []string) string {
	return options[s.NextInt(0, int64(len(options)-1))]
}
