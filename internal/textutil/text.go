package textutil

import (
	"strings"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ReadingTime returns ceil(words/WordsPerMinute), never less than one minute.
func ReadingTime(s string) int {
	words := WordCount(s)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Truncate shortens s to at most max runes, preferring a word boundary in
// the second half of the allowed length.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	cut := runes[:max]
	if next := runes[max]; next != ' ' {
		for i := len(cut) - 1; i > max/2; i-- {
			if cut[i] == ' ' {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimSpace(string(cut))
}

// Dedupe trims entries and drops blanks and case-insensitive duplicates,
// keeping first occurrences in order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
