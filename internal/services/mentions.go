package services

import (
	"iter"
	"unicode"
)

// Mentions returns a lazy sequence over the @username tokens in text. A token
// is the longest run of word characters (letters, digits, underscore) directly
// following an unescaped @ sign; a trailing or punctuation-followed @ yields
// nothing. Duplicates are yielded as they appear; callers that care about
// distinct users dedup after resolving usernames to ids. The sequence is
// restartable: ranging over it again rescans the text.
func Mentions(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		for i := 0; i < len(runes); i++ {
			if runes[i] != '@' {
				continue
			}
			if i > 0 && runes[i-1] == '\\' {
				continue
			}

			start := i + 1
			end := start
			for end < len(runes) && isWordRune(runes[end]) {
				end++
			}
			if end == start {
				continue
			}

			if !yield(string(runes[start:end])) {
				return
			}
			i = end - 1
		}
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
