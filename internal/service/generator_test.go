package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShortCode(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		code1 := GenerateShortCode("https://example.com", 42)
		code2 := GenerateShortCode("https://example.com", 42)

		assert.Equal(t, code1, code2)
	})

	t.Run("fixed width using alphabet symbols only", func(t *testing.T) {
		urls := []string{
			"https://example.com",
			"https://example.com/some/long/path?with=query&params=true",
			"http://a",
			"",
		}

		for _, url := range urls {
			for _, counter := range []int64{0, 1, 61, 62, 100000, 1 << 30} {
				code := GenerateShortCode(url, counter)

				assert.Len(t, code, ShortCodeLength)
				for _, r := range code {
					assert.Containsf(t, base62Alphabet, string(r),
						"code %q for url %q counter %d contains symbol outside alphabet", code, url, counter)
				}
			}
		}
	})

	t.Run("distinct counters yield distinct codes", func(t *testing.T) {
		const samples = 1000

		seen := make(map[string]int64, samples)

		for counter := int64(1); counter <= samples; counter++ {
			code := GenerateShortCode("https://example.com", counter)

			prev, exists := seen[code]
			assert.Falsef(t, exists, "counters %d and %d collided on code %q", prev, counter, code)
			seen[code] = counter
		}
	})

	t.Run("counter dominates over url hash", func(t *testing.T) {
		code1 := GenerateShortCode("https://example.com", 1)
		code2 := GenerateShortCode("https://example.com", 2)

		assert.NotEqual(t, code1, code2)
	})
}

func TestEncodeBase62(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{9, "9"},
		{10, "A"},
		{35, "Z"},
		{36, "a"},
		{61, "z"},
		{62, "10"},
		{3843, "zz"},
		{3844, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeBase62(tt.n))
		})
	}
}

func TestPadShortCode(t *testing.T) {
	t.Run("pads zero value to full width", func(t *testing.T) {
		assert.Equal(t, strings.Repeat("0", ShortCodeLength), padShortCode(encodeBase62(0)))
	})

	t.Run("pads short values", func(t *testing.T) {
		assert.Equal(t, "000000zz", padShortCode("zz"))
	})

	t.Run("truncates long values", func(t *testing.T) {
		assert.Equal(t, "12345678", padShortCode("123456789AB"))
	})
}
