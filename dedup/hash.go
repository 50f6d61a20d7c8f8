package dedup

import (
	"strconv"
	"strings"
)

const hashMaxChars = 500

// SimpleHash produces a cheap content fingerprint: lowercase, collapse
// whitespace runs, truncate to 500 characters, then a polynomial rolling
// hash. Not cryptographic — collisions are an accepted tradeoff for speed.
func SimpleHash(text string) string {
	norm := normalizeContent(text)

	var h uint32
	for _, r := range norm {
		h = h*31 + uint32(r)
	}
	return strconv.FormatUint(uint64(h), 36)
}

func normalizeContent(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	norm := strings.Join(fields, " ")
	if len(norm) > hashMaxChars {
		norm = norm[:hashMaxChars]
	}
	return norm
}
