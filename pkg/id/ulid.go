// Package id generates identifiers: sortable ULIDs for rows and requests,
// opaque tokens for DNS ownership challenges.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID generates a 26-character ULID: a 48-bit millisecond timestamp
// followed by 80 random bits. ULIDs sort lexicographically by creation time.
func NewULID() string {
	return ulidAt(time.Now())
}

func ulidAt(t time.Time) string {
	var b [16]byte
	ms := uint64(t.UnixMilli())
	binary.BigEndian.PutUint16(b[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(b[2:6], uint32(ms))
	_, _ = rand.Read(b[6:])

	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	// 26 chars * 5 bits = 130 bits; the first char carries the top 3.
	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockfordBase32[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// NewToken returns a 26-character lowercase random token with 128 bits of
// entropy, safe to publish in a DNS TXT record.
func NewToken() string {
	return strings.ToLower(rand.Text())
}
