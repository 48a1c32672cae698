// Package slug derives comparison keys for user-supplied labels.
package slug

import (
	"strings"
	"unicode"
)

const maxLen = 64

// Slugify lowercases s, turns every run of non letter/digit characters into a
// single '_', trims leading and trailing '_' and caps the result at 64 runes.
// "Eating Out", "eating-out" and " EATING  OUT " all map to "eating_out".
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = n > 0
			continue
		}
		if pendingSep {
			if n+1 >= maxLen {
				break
			}
			b.WriteRune('_')
			n++
			pendingSep = false
		}
		b.WriteRune(r)
		n++
		if n >= maxLen {
			break
		}
	}
	return b.String()
}

// Same reports whether two labels collide once slugified.
func Same(a, b string) bool {
	ka := Slugify(a)
	return ka != "" && ka == Slugify(b)
}
