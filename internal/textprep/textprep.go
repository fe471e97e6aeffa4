// Package textprep normalizes and word-wraps practice text.
package textprep

import (
	"errors"
	"strings"
)

// ErrInvalidWidth reports a wrap width that cannot hold the text without splitting a word.
var ErrInvalidWidth = errors.New("invalid wrap width")

// Normalize collapses every whitespace run (including newlines and tabs) into a single space.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// WordWrap pads the text with spaces so that no word crosses a multiple of width.
// The result is meant to be printed in width-sized chunks, one chunk per line.
func WordWrap(text string, width int) (string, error) {
	if width <= 0 {
		return "", ErrInvalidWidth
	}
	r := []rune(text)
	for k := 1; k*width < len(r); k++ {
		boundary := k * width
		if r[boundary-1] == ' ' {
			continue
		}
		lineStart := boundary - width
		i := boundary - 1
		for i >= lineStart && r[i] != ' ' {
			i--
		}
		if i < lineStart {
			// A token exactly as wide as the line keeps it to itself.
			if r[boundary] == ' ' {
				continue
			}
			return "", ErrInvalidWidth
		}
		pad := boundary - 1 - i
		padded := make([]rune, 0, len(r)+pad)
		padded = append(padded, r[:i]...)
		for j := 0; j < pad; j++ {
			padded = append(padded, ' ')
		}
		padded = append(padded, r[i:]...)
		r = padded
	}
	return string(r), nil
}

// CountLines returns how many width-sized lines the text occupies.
func CountLines(text string, width int) int {
	if width <= 0 {
		return 0
	}
	n := len([]rune(text))
	return (n + width - 1) / width
}

// TokenStart returns the rune offset at which the n-th token begins.
// It returns the text length when n is not smaller than the token count.
func TokenStart(text []rune, n int) int {
	seen := 0
	for i, r := range text {
		if r == ' ' {
			continue
		}
		if i == 0 || text[i-1] == ' ' {
			if seen == n {
				return i
			}
			seen++
		}
	}
	return len(text)
}

// RemapPosition maps an offset in one wrapping of a normalized text to the
// matching offset in another wrapping of the same text. Padding spaces map to
// the word separator they extend.
func RemapPosition(from, to []rune, pos int) int {
	if pos < 0 {
		return pos
	}
	if pos >= len(from) {
		return len(to) + pos - len(from)
	}
	n := normalOffset(from, pos)
	idx := -1
	for i := range to {
		if isPadding(to, i) {
			continue
		}
		idx++
		if idx == n {
			return i
		}
	}
	return len(to)
}

func normalOffset(text []rune, pos int) int {
	n := -1
	for i := 0; i <= pos; i++ {
		if isPadding(text, i) {
			continue
		}
		n++
	}
	if n < 0 {
		return 0
	}
	return n
}

// isPadding reports whether text[i] is a space that follows another space.
func isPadding(text []rune, i int) bool {
	return i > 0 && text[i] == ' ' && text[i-1] == ' '
}
