package service

import (
	"crypto/sha256"
	"encoding/binary"
)

// base62Alphabet is the fixed symbol order for short codes: digits, then
// uppercase, then lowercase. The order must not change, or previously issued
// codes would no longer be reproducible.
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ShortCodeLength is the fixed width of every generated short code.
const ShortCodeLength = 8

// GenerateShortCode deterministically derives a short code from the original
// URL and a strictly increasing counter value. The counter occupies the high
// bits of the encoded value, so distinct counter values yield distinct codes
// for the same URL; the low 32 bits of the URL's SHA-256 digest tie the code
// to its URL.
func GenerateShortCode(originalURL string, counter int64) string {
	digest := sha256.Sum256([]byte(originalURL))
	hashLow32 := binary.BigEndian.Uint64(digest[:8]) & 0xFFFFFFFF

	combined := uint64(counter)<<32 | hashLow32

	return padShortCode(encodeBase62(combined))
}

func encodeBase62(n uint64) string {
	if n == 0 {
		return string(base62Alphabet[0])
	}

	// 11 base62 digits cover the full uint64 range.
	var buf [11]byte
	i := len(buf)

	for n > 0 {
		i--
		buf[i] = base62Alphabet[n%62]
		n /= 62
	}

	return string(buf[i:])
}

// padShortCode left-pads with the alphabet's zero symbol and truncates to the
// fixed width, so even the degenerate all-zero value encodes to a full-width
// code.
func padShortCode(code string) string {
	for len(code) < ShortCodeLength {
		code = string(base62Alphabet[0]) + code
	}

	return code[:ShortCodeLength]
}
