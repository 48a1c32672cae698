// Package sanitize masks blocklisted words in free text.
package sanitize

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultWords is the blocklist used when none is configured.
var DefaultWords = []string{
	"arse",
	"bastard",
	"bollocks",
	"crap",
	"damn",
	"dickhead",
	"shit",
	"wanker",
}

// Filter masks whole-word, case-insensitive matches of its blocklist.
// A Filter is immutable and safe for concurrent use.
type Filter struct {
	re *regexp.Regexp
}

// New compiles a filter for words. Blank entries are ignored.
func New(words []string) *Filter {
	list := make([]string, 0, len(words))
	seen := map[string]struct{}{}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		list = append(list, regexp.QuoteMeta(w))
	}
	if len(list) == 0 {
		return &Filter{}
	}
	// longest first so overlapping entries mask the widest match
	sort.Slice(list, func(i, j int) bool { return len(list[i]) > len(list[j]) })
	return &Filter{re: regexp.MustCompile(`(?i)\b(?:` + strings.Join(list, "|") + `)\b`)}
}

// Clean replaces every match with asterisks of the same rune length.
func (f *Filter) Clean(text string) string {
	if f == nil || f.re == nil || text == "" {
		return text
	}
	return f.re.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat("*", utf8.RuneCountInString(m))
	})
}

// HasBadWords reports whether text contains a blocklisted word.
func (f *Filter) HasBadWords(text string) bool {
	if f == nil || f.re == nil {
		return false
	}
	return f.re.MatchString(text)
}
