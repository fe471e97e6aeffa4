// Package keys classifies raw terminal input into semantic key events.
package keys

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind is the semantic category of a key event.
type Kind int

const (
	Ignored Kind = iota
	Printable
	Backspace
	WordDelete
	Enter
	Tab
	Resize
	Escape
	CtrlC
	Share
	ArrowLeft
	ArrowRight
	Null
)

// Symbolic names delivered by the input adapter for non-character keys.
const (
	NameBackspace = "KEY_BACKSPACE"
	NameDelete    = "KEY_DC"
	NameResize    = "KEY_RESIZE"
	NameLeft      = "KEY_LEFT"
	NameRight     = "KEY_RIGHT"
)

// Control bytes.
const (
	ByteNull       = 0x00
	ByteCtrlC      = 0x03
	ByteBackspace  = 0x08
	ByteCtrlS      = 0x13
	ByteCtrlT      = 0x14
	ByteWordDelete = 0x17
	ByteEscape     = 0x1b
	ByteDelete     = 0x7f
)

var kindNames = map[Kind]string{
	Ignored:    "ignored",
	Printable:  "printable",
	Backspace:  "backspace",
	WordDelete: "word-delete",
	Enter:      "enter",
	Tab:        "tab",
	Resize:     "resize",
	Escape:     "escape",
	CtrlC:      "ctrl+c",
	Share:      "share",
	ArrowLeft:  "left",
	ArrowRight: "right",
	Null:       "null",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Key is a classified key event. Rune is set only for Printable keys.
type Key struct {
	Kind Kind
	Rune rune
}

// Char builds a Printable key.
func Char(r rune) Key {
	return Key{Kind: Printable, Rune: r}
}

// Of builds a non-printable key of the given kind.
func Of(kind Kind) Key {
	return Key{Kind: kind}
}

// IsSpace reports whether the key is a printable space.
func (k Key) IsSpace() bool {
	return k.Kind == Printable && k.Rune == ' '
}

func (k Key) String() string {
	if k.Kind == Printable {
		return fmt.Sprintf("%q", k.Rune)
	}
	return k.Kind.String()
}

// IsValidInitial reports whether the key may start a typing session.
func IsValidInitial(k Key) bool {
	return k.Kind == Printable
}

// Classifier maps raw input tokens to keys.
type Classifier struct {
	shareByte byte
}

// NewClassifier returns a classifier that treats shareByte as the share signal.
func NewClassifier(shareByte byte) Classifier {
	return Classifier{shareByte: shareByte}
}

// DefaultClassifier uses ctrl+t as the share signal.
func DefaultClassifier() Classifier {
	return NewClassifier(ByteCtrlT)
}

// ShareByteFor resolves a share key name ("ctrl+t" or "ctrl+s").
func ShareByteFor(name string) (byte, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ctrl+t":
		return ByteCtrlT, nil
	case "ctrl+s":
		return ByteCtrlS, nil
	default:
		return 0, fmt.Errorf("unsupported share key %q (use ctrl+t or ctrl+s)", name)
	}
}

// Classify maps a raw token to a key. It never fails: unknown input is Ignored.
func (c Classifier) Classify(raw string) Key {
	switch raw {
	case "":
		return Of(Null)
	case NameBackspace, NameDelete:
		return Of(Backspace)
	case NameResize:
		return Of(Resize)
	case NameLeft:
		return Of(ArrowLeft)
	case NameRight:
		return Of(ArrowRight)
	case "\n":
		return Of(Enter)
	case "\t":
		return Of(Tab)
	}
	if utf8.RuneCountInString(raw) != 1 {
		return Of(Ignored)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError {
		return Of(Ignored)
	}
	if c.shareByte != 0 && r == rune(c.shareByte) {
		return Of(Share)
	}
	switch r {
	case ByteNull:
		return Of(Null)
	case ByteEscape:
		return Of(Escape)
	case ByteCtrlC:
		return Of(CtrlC)
	case ByteWordDelete:
		return Of(WordDelete)
	case ByteBackspace, ByteDelete:
		return Of(Backspace)
	}
	if r < 0x20 {
		return Of(Ignored)
	}
	return Char(r)
}
