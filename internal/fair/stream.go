// Package fair implements the committed-seed random stream behind verifiable
// rolls. Bytes come from consecutive HMAC-SHA256 rounds keyed by the server
// seed over "clientSeed:nonce:round"; integer draws consume eight-byte words
// with rejection sampling so every value in a range is equally likely. A
// caller holding the seeds and nonce can replay any roll byte for byte.
package fair

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Stream is the deterministic byte stream for one (serverSeed, clientSeed,
// nonce) triple.
type Stream struct {
	serverSeed string
	clientSeed string
	nonce      uint64
	round      int
	cursor     int
	buffer     [32]byte
}

// NewStream starts the byte stream at round zero.
func NewStream(serverSeed, clientSeed string, nonce uint64) *Stream {
	s := &Stream{serverSeed: serverSeed, clientSeed: clientSeed, nonce: nonce}
	s.generateRound()
	return s
}

// Next returns the next byte of the stream.
func (s *Stream) Next() byte {
	if s.cursor >= len(s.buffer) {
		s.round++
		s.cursor = 0
		s.generateRound()
	}
	b := s.buffer[s.cursor]
	s.cursor++
	return b
}

// Uint64 consumes the next eight stream bytes as a big-endian word.
func (s *Stream) Uint64() uint64 {
	var word [8]byte
	for i := range word {
		word[i] = s.Next()
	}
	return binary.BigEndian.Uint64(word[:])
}

func (s *Stream) generateRound() {
	h := hmac.New(sha256.New, []byte(s.serverSeed))
	fmt.Fprintf(h, "%s:%d:%d", s.clientSeed, s.nonce, s.round)
	copy(s.buffer[:], h.Sum(nil))
}

// HashSeed returns the hex SHA-256 commitment for a server seed. Publishing
// the hash before rolling and the seed after lets anyone verify the stream.
func HashSeed(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
