package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/retype/internal/session"
)

type cellKind int

const (
	cellPending cellKind = iota
	cellTyped
	cellWrong
	cellCursor
)

var (
	pendingStyle = lipgloss.NewStyle().Bold(true)
	typedStyle   = lipgloss.NewStyle().Faint(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cursorStyle  = pendingStyle.Copy().Underline(true)

	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#36CFC9"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#4096FF"))
	wpmStyle      = idStyle
	speedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#F759AB"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#73D13D"))
	accuracyStyle = idStyle
	hintStyle     = lipgloss.NewStyle().Reverse(true)
)

const title = " RETYPE "

func cellStyle(kind cellKind) lipgloss.Style {
	switch kind {
	case cellTyped:
		return typedStyle
	case cellWrong:
		return wrongStyle
	case cellCursor:
		return cursorStyle
	default:
		return pendingStyle
	}
}

// classifyCells styles every reference position: typed text is dimmed, the
// span from the first mismatch to the end of input is red, and the next
// position carries the cursor. Once finished every position that was ever
// mistyped turns red.
func classifyCells(buf *session.Buffer, finished bool) []cellKind {
	ref := buf.Reference()
	typed := len(buf.Typed())
	diff := buf.DiffIndex()
	cells := make([]cellKind, len(ref))
	for i := range ref {
		switch {
		case i < typed && i >= diff:
			cells[i] = cellWrong
		case i < typed:
			cells[i] = cellTyped
		case i == typed && !finished:
			cells[i] = cellCursor
		default:
			cells[i] = cellPending
		}
	}
	if finished {
		for _, pos := range buf.Mistyped() {
			if pos >= 0 && pos < len(cells) {
				cells[pos] = cellWrong
			}
		}
	}
	return cells
}

// renderTextRows splits the wrapped reference into rows of width cells.
func renderTextRows(ref []rune, cells []cellKind, width int) []string {
	if width <= 0 {
		width = len(ref)
	}
	var rows []string
	for start := 0; start < len(ref); start += width {
		end := min(start+width, len(ref))
		rows = append(rows, renderRun(ref[start:end], cells[start:end]))
	}
	return rows
}

func renderRun(ref []rune, cells []cellKind) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(ref); i++ {
		if i < len(ref) && cells[i] == cells[start] {
			continue
		}
		b.WriteString(cellStyle(cells[start]).Render(string(ref[start:i])))
		start = i
	}
	return b.String()
}

// placeRow lays out segments at fixed columns, clipping at width.
func placeRow(width int, segments ...placed) string {
	var b strings.Builder
	col := 0
	for _, seg := range segments {
		if seg.col < col {
			seg.col = col
		}
		segWidth := lipgloss.Width(seg.text)
		if width > 0 && seg.col+segWidth > width {
			continue
		}
		b.WriteString(strings.Repeat(" ", seg.col-col))
		b.WriteString(seg.text)
		col = seg.col + segWidth
	}
	return b.String()
}

type placed struct {
	col  int
	text string
}

func (m *Model) renderHeader(width int) string {
	id := idStyle.Render(fmt.Sprintf(" ID:%s ", runewidth.Truncate(m.sess.Text().Label(), 24, "…")))
	wpm := wpmStyle.Render(fmt.Sprintf(" %.2f ", m.sess.LiveWPM())) + " WPM "
	titleCol := width/2 - runewidth.StringWidth(title)/2
	wpmCol := width - lipgloss.Width(wpm)
	return placeRow(width,
		placed{col: 0, text: id},
		placed{col: titleCol, text: titleStyle.Render(title)},
		placed{col: wpmCol, text: wpm},
	)
}

func (m *Model) renderStatsBar() string {
	res := m.sess.Result()
	return speedStyle.Render(fmt.Sprintf(" WPM: %.2f ", res.WPM)) +
		timeStyle.Render(fmt.Sprintf(" Time: %.2fs ", res.Elapsed.Seconds())) +
		accuracyStyle.Render(fmt.Sprintf(" Accuracy: %.2f%% ", res.Accuracy))
}

func finishedRows(wpm float64) []string {
	return []string{
		" Your typing speed is " + speedStyle.Render(fmt.Sprintf(" %.2f ", wpm)) + " WPM ",
		"",
		" " + hintStyle.Render(" Enter ") + " to see replay, " + hintStyle.Render(" Tab ") + " to retry.",
		" " + hintStyle.Render(" Arrow keys ") + " to change text.",
		" " + hintStyle.Render(" CTRL+T ") + " to share result.",
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.sess.Width()
	if m.width > 0 {
		width = m.width
	}
	buf := m.sess.Buffer()
	finished := m.sess.Mode() == session.Finished
	replaying := m.sess.Replaying()

	rows := []string{m.renderHeader(width), ""}
	rows = append(rows, renderTextRows(buf.Reference(), classifyCells(buf, finished && !replaying), m.sess.Width())...)
	for len(rows) < textTop+m.lines+1 {
		rows = append(rows, "")
	}

	switch {
	case replaying:
		rows = append(rows, buf.CurrentWord(), "", " "+hintStyle.Render(" Esc ")+" to stop replay.")
	case finished:
		rows = append(rows, finishedRows(m.sess.Result().WPM)...)
	default:
		word := buf.CurrentWord()
		if buf.AtLimit() {
			word = wrongStyle.Render(word)
		}
		rows = append(rows, word)
	}

	status := ""
	if m.status != "" {
		status = " " + wrongStyle.Render(m.status)
	}
	if !finished {
		if status != "" {
			rows = append(rows, "", status)
		}
		return strings.Join(rows, "\n")
	}
	bar := m.renderStatsBar()
	if m.height > 0 {
		for len(rows) < m.height-2 {
			rows = append(rows, "")
		}
		if len(rows) > m.height-2 {
			rows = rows[:m.height-2]
		}
	} else {
		rows = append(rows, "")
	}
	rows = append(rows, status, bar)
	return strings.Join(rows, "\n")
}
