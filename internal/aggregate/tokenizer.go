package aggregate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minWordLength drops OCR noise and connective short tokens from the index.
const minWordLength = 3

// Tokenize splits text on non-alphanumeric boundaries, lowercases every
// token, and discards tokens shorter than three characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minWordLength {
			continue
		}
		words = append(words, strings.ToLower(f))
	}
	return words
}
