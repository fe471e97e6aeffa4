// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/verte-zerg/retype/internal/history"
	"github.com/verte-zerg/retype/internal/stats"
)

const (
	tabRuns = iota
	tabOverview
)

const trendWindow = 5

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	trendStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#36CFC9"))
)

// Model implements the Bubble Tea history browser.
type Model struct {
	records []history.Record
	visible []int

	tabs      []string
	activeTab int
	runs      table.Model
	overview  viewport.Model

	filterMode bool
	filter     textinput.Model

	width  int
	height int
}

// NewModel constructs a browser over records, oldest first.
func NewModel(records []history.Record) *Model {
	m := &Model{
		records:  records,
		tabs:     []string{"Runs", "Overview"},
		overview: viewport.New(0, 0),
	}
	m.filter = textinput.New()
	m.filter.Prompt = "Filter: "
	m.filter.Placeholder = "id, date or time"
	m.filter.Cursor.SetMode(cursor.CursorBlink)
	m.runs = table.New(
		table.WithColumns(runColumns(0)),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	m.runs.SetStyles(runTableStyles())
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "left", "h", "right", "l", "tab":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			return m, nil
		case "/":
			m.filterMode = true
			m.activeTab = tabRuns
			return m, m.filter.Focus()
		case "g", "home":
			m.runs.GotoTop()
			m.overview.GotoTop()
			return m, nil
		case "G", "end":
			m.runs.GotoBottom()
			m.overview.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabRuns {
			m.runs, cmd = m.runs.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filterMode = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filterMode = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	tabs := m.renderTabs()
	footer := m.renderFooter()
	bodyHeight := m.bodyHeight()
	var body string
	if m.activeTab == tabRuns {
		body = m.runs.View()
	} else {
		body = m.overview.View()
	}
	return strings.Join([]string{
		fitLines(tabs, m.width, lipgloss.Height(tabs)),
		fitLines(body, m.width, bodyHeight),
		fitLines(footer, m.width, 1),
	}, "\n")
}

// Visible returns the records that pass the current filter, newest first.
func (m *Model) Visible() []history.Record {
	out := make([]history.Record, 0, len(m.visible))
	for _, idx := range m.visible {
		out = append(out, m.records[idx])
	}
	return out
}

// applyFilter narrows the rows with a fuzzy match on id, date, and time.
func (m *Model) applyFilter() {
	pattern := strings.TrimSpace(m.filter.Value())
	m.visible = m.visible[:0]
	if pattern == "" {
		for i := len(m.records) - 1; i >= 0; i-- {
			m.visible = append(m.visible, i)
		}
	} else {
		matches := fuzzy.Find(pattern, searchKeys(m.records))
		for _, match := range matches {
			m.visible = append(m.visible, match.Index)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(m.visible)))
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, idx := range m.visible {
		r := m.records[idx]
		rows = append(rows, table.Row{r.ID, r.WPM, r.Date, r.Time, r.Accuracy + "%"})
	}
	m.runs.SetRows(rows)
	m.runs.GotoTop()
	m.overview.SetContent(renderOverview(m.Visible(), m.width))
}

func searchKeys(records []history.Record) []string {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.ID + " " + r.Date + " " + r.Time
	}
	return keys
}

func (m *Model) bodyHeight() int {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	return max(1, m.height-tabsHeight-1)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	body := m.bodyHeight()
	m.runs.SetColumns(runColumns(m.width))
	m.runs.SetWidth(m.width)
	m.runs.SetHeight(body)
	m.overview.Width = m.width
	m.overview.Height = body
	m.filter.Width = max(10, m.width-lipgloss.Width(m.filter.Prompt)-2)
	m.overview.SetContent(renderOverview(m.Visible(), m.width))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filter.View()
	}
	help := fmt.Sprintf("%d/%d runs  Tab: switch  Scroll: up/down  Filter: /  Quit: q", len(m.visible), len(m.records))
	if v := m.filter.Value(); v != "" {
		help = fmt.Sprintf("filter %q  ", v) + help
	}
	return headerStyle.Render(runewidth.Truncate(help, m.width, "..."))
}

func runColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: "ID", Width: 12},
		{Title: "WPM", Width: 8},
		{Title: "DATE", Width: 10},
		{Title: "TIME", Width: 8},
		{Title: "ACCURACY", Width: 9},
	}
	used := 0
	for _, c := range cols[1:] {
		used += c.Width + 1
	}
	if width-used > cols[0].Width {
		cols[0].Width = min(width-used-1, 40)
	}
	return cols
}

func runTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func renderOverview(records []history.Record, width int) string {
	if len(records) == 0 {
		return "No runs found."
	}
	sum := stats.Summarize(records)
	cards := []string{
		metricCard("Runs", fmt.Sprintf("%d", sum.Runs)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", sum.AvgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%.1f", sum.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", sum.AvgAccuracy)),
	}
	var top string
	if width > 0 && width < 60 {
		top = strings.Join(cards, "\n")
	} else {
		top = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	// Visible rows are newest first; the trend reads left to right in time.
	series := stats.WPMSeries(records)
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	sparkWidth := width - len("WPM trend: ")
	if width <= 0 {
		sparkWidth = 60
	}
	trend := "WPM trend: " + trendStyle.Render(stats.Sparkline(stats.MovingAverage(series, trendWindow), sparkWidth))
	return top + "\n\n" + trend
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
