package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()
	cases := []struct {
		raw  string
		want Key
	}{
		{"\x1b", Of(Escape)},
		{"\x03", Of(CtrlC)},
		{"\x14", Of(Share)},
		{"\x17", Of(WordDelete)},
		{"KEY_BACKSPACE", Of(Backspace)},
		{"\b", Of(Backspace)},
		{"\x7f", Of(Backspace)},
		{"KEY_DC", Of(Backspace)},
		{"\n", Of(Enter)},
		{"\t", Of(Tab)},
		{"KEY_RESIZE", Of(Resize)},
		{"KEY_LEFT", Of(ArrowLeft)},
		{"KEY_RIGHT", Of(ArrowRight)},
		{"", Of(Null)},
		{"\x00", Of(Null)},
		{"KEY_F1", Of(Ignored)},
		{"\x01", Of(Ignored)},
		{"a", Char('a')},
		{" ", Char(' ')},
		{"é", Char('é')},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.raw); got != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestClassifyShareByteConfigurable(t *testing.T) {
	b, err := ShareByteFor("ctrl+s")
	if err != nil {
		t.Fatalf("share byte: %v", err)
	}
	c := NewClassifier(b)
	if got := c.Classify("\x13"); got.Kind != Share {
		t.Fatalf("expected share for ctrl+s, got %v", got)
	}
	if got := c.Classify("\x14"); got.Kind != Ignored {
		t.Fatalf("expected ctrl+t ignored, got %v", got)
	}
	if _, err := ShareByteFor("ctrl+x"); err == nil {
		t.Fatalf("expected error for unsupported share key")
	}
}

func TestIsValidInitialOnlyPrintable(t *testing.T) {
	for kind := Ignored; kind <= Null; kind++ {
		k := Of(kind)
		if kind == Printable {
			k = Char('x')
		}
		if got := IsValidInitial(k); got != (kind == Printable) {
			t.Fatalf("IsValidInitial(%v) = %v", k, got)
		}
	}
}

func TestClassifyTea(t *testing.T) {
	c := DefaultClassifier()
	got := c.ClassifyTea(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	want := []Key{Char('a'), Char('b')}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("runes mismatch (-want +got):\n%s", diff)
	}
	cases := []struct {
		msg  tea.KeyMsg
		want Kind
	}{
		{tea.KeyMsg{Type: tea.KeyBackspace}, Backspace},
		{tea.KeyMsg{Type: tea.KeyCtrlW}, WordDelete},
		{tea.KeyMsg{Type: tea.KeyEsc}, Escape},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, CtrlC},
		{tea.KeyMsg{Type: tea.KeyEnter}, Enter},
		{tea.KeyMsg{Type: tea.KeyTab}, Tab},
		{tea.KeyMsg{Type: tea.KeyLeft}, ArrowLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, ArrowRight},
		{tea.KeyMsg{Type: tea.KeyCtrlT}, Share},
		{tea.KeyMsg{Type: tea.KeyUp}, Ignored},
		{tea.KeyMsg{Type: tea.KeySpace}, Printable},
	}
	for _, tc := range cases {
		keys := c.ClassifyTea(tc.msg)
		if len(keys) != 1 || keys[0].Kind != tc.want {
			t.Fatalf("ClassifyTea(%v) = %v, want %v", tc.msg, keys, tc.want)
		}
	}
}
