package keys

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FromTea decodes a bubbletea key message into raw tokens for Classify.
// A burst of runes (for example a paste) yields one token per rune.
func FromTea(msg tea.KeyMsg) []string {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return []string{"alt+" + string(msg.Runes)}
		}
		out := make([]string, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, string(r))
		}
		return out
	case tea.KeySpace:
		return []string{" "}
	case tea.KeyNull:
		return []string{""}
	case tea.KeyCtrlC:
		return []string{string(rune(ByteCtrlC))}
	case tea.KeyEsc:
		return []string{string(rune(ByteEscape))}
	case tea.KeyBackspace:
		return []string{string(rune(ByteDelete))}
	case tea.KeyCtrlH:
		return []string{string(rune(ByteBackspace))}
	case tea.KeyDelete:
		return []string{NameDelete}
	case tea.KeyCtrlW:
		return []string{string(rune(ByteWordDelete))}
	case tea.KeyCtrlT:
		return []string{string(rune(ByteCtrlT))}
	case tea.KeyCtrlS:
		return []string{string(rune(ByteCtrlS))}
	case tea.KeyEnter:
		return []string{"\n"}
	case tea.KeyTab:
		return []string{"\t"}
	case tea.KeyLeft:
		return []string{NameLeft}
	case tea.KeyRight:
		return []string{NameRight}
	default:
		return []string{"KEY_" + msg.String()}
	}
}

// ClassifyTea decodes and classifies a bubbletea key message.
func (c Classifier) ClassifyTea(msg tea.KeyMsg) []Key {
	raws := FromTea(msg)
	out := make([]Key, 0, len(raws))
	for _, raw := range raws {
		out = append(out, c.Classify(raw))
	}
	return out
}
