package session

import (
	"sort"

	"github.com/verte-zerg/retype/internal/keys"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/textprep"
)

// DefaultWordLimit caps the length of the word in progress.
const DefaultWordLimit = 25

// wordLimitSlack is added to the longest token when it does not fit the configured limit.
const wordLimitSlack = 5

// Buffer is the typing state of one attempt. Live typing and replay both
// drive it through Apply.
type Buffer struct {
	reference []rune
	tokens    []string
	limit     int

	word     []rune
	typed    []rune
	cursor   int
	total    int
	mistyped map[int]struct{}
}

// NewBuffer returns an empty buffer for the wrapped reference text.
func NewBuffer(reference string, tokens []string, limit int) *Buffer {
	return &Buffer{
		reference: []rune(reference),
		tokens:    tokens,
		limit:     limit,
		mistyped:  map[int]struct{}{},
	}
}

// WordLimitFor returns limit, raised when the longest token would not fit.
func WordLimitFor(tokens []string, limit int) int {
	if limit <= 0 {
		limit = DefaultWordLimit
	}
	longest := 0
	for _, tok := range tokens {
		if n := len([]rune(tok)); n > longest {
			longest = n
		}
	}
	if longest > limit {
		return longest + wordLimitSlack
	}
	return limit
}

// Apply feeds one key into the buffer and reports whether the state changed.
func (b *Buffer) Apply(k keys.Key) bool {
	var changed bool
	switch k.Kind {
	case keys.Backspace:
		changed = b.eraseKey()
	case keys.WordDelete:
		changed = b.eraseWord()
	case keys.Printable:
		if k.Rune == ' ' {
			changed = b.space()
		} else {
			changed = b.appendRune(k.Rune)
		}
	}
	if changed {
		b.trackMistype()
	}
	return changed
}

func (b *Buffer) appendRune(r rune) bool {
	if len(b.word) >= b.limit {
		return false
	}
	b.word = append(b.word, r)
	b.typed = append(b.typed, r)
	b.total++
	return true
}

func (b *Buffer) space() bool {
	if len(b.word) == 0 {
		return false
	}
	if b.cursor < len(b.tokens) && string(b.word) == b.tokens[b.cursor] {
		pad := stats.SpaceRunLength(b.reference, len(b.typed))
		b.cursor++
		b.word = b.word[:0]
		for i := 0; i < pad; i++ {
			b.typed = append(b.typed, ' ')
		}
		b.total++
		return true
	}
	if len(b.word) >= b.limit {
		return false
	}
	b.word = append(b.word, ' ')
	b.typed = append(b.typed, ' ')
	b.total++
	return true
}

func (b *Buffer) eraseKey() bool {
	if len(b.word) == 0 {
		return false
	}
	b.word = b.word[:len(b.word)-1]
	b.typed = b.typed[:len(b.typed)-1]
	return true
}

func (b *Buffer) eraseWord() bool {
	if len(b.word) == 0 {
		return false
	}
	cut := len(b.word)
	for i := len(b.word) - 1; i >= 0; i-- {
		if b.word[i] == ' ' {
			cut = len(b.word) - i
			break
		}
	}
	b.word = b.word[:len(b.word)-cut]
	b.typed = b.typed[:len(b.typed)-cut]
	return true
}

func (b *Buffer) trackMistype() {
	n := len(b.typed)
	if n == 0 || n > len(b.reference) {
		return
	}
	if stats.FirstDifference(b.typed, b.reference) < n {
		b.mistyped[n-1] = struct{}{}
	}
}

// rewrap swaps in a new wrapping of the same text, keeping accepted words,
// the word in progress, and mistyped offsets aligned.
func (b *Buffer) rewrap(reference string) {
	next := []rune(reference)
	oldStart := textprep.TokenStart(b.reference, b.cursor)
	newStart := textprep.TokenStart(next, b.cursor)

	typed := make([]rune, 0, newStart+len(b.word))
	typed = append(typed, next[:newStart]...)
	typed = append(typed, b.word...)

	mistyped := make(map[int]struct{}, len(b.mistyped))
	for pos := range b.mistyped {
		if pos < oldStart {
			mistyped[textprep.RemapPosition(b.reference, next, pos)] = struct{}{}
			continue
		}
		mistyped[pos-oldStart+newStart] = struct{}{}
	}

	b.reference = next
	b.typed = typed
	b.mistyped = mistyped
}

// Reference returns the wrapped reference text.
func (b *Buffer) Reference() []rune { return b.reference }

// Typed returns everything accepted so far, including padding spaces.
func (b *Buffer) Typed() []rune { return b.typed }

// CurrentWord returns the word in progress.
func (b *Buffer) CurrentWord() string { return string(b.word) }

// Cursor returns the index of the token being matched.
func (b *Buffer) Cursor() int { return b.cursor }

// Total returns the count of accepted printable characters.
func (b *Buffer) Total() int { return b.total }

// Limit returns the word length cap.
func (b *Buffer) Limit() int { return b.limit }

// AtLimit reports whether the word in progress reached the cap.
func (b *Buffer) AtLimit() bool { return len(b.word) >= b.limit }

// DiffIndex returns the first index where typed and reference disagree.
func (b *Buffer) DiffIndex() int {
	return stats.FirstDifference(b.typed, b.reference)
}

// Complete reports whether the reference has been typed exactly.
func (b *Buffer) Complete() bool {
	return b.DiffIndex() == len(b.reference)
}

// Mistyped returns every offset that mismatched when typed, in ascending order.
func (b *Buffer) Mistyped() []int {
	out := make([]int, 0, len(b.mistyped))
	for pos := range b.mistyped {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}
