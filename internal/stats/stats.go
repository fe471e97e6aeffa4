package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/retype/internal/history"
)

const (
	sparkChars          = " .:-=+*#%@"
	trendWindow         = 5
	terminalWidthBackup = 80
	trendLabel          = "Trend: "
	colorBold           = "\x1b[1m"
	colorCyan           = "\x1b[36m"
	colorReset          = "\x1b[0m"
)

var historyColumns = []column{
	{title: "ID"},
	{title: "WPM", right: true},
	{title: "DATE"},
	{title: "TIME"},
	{title: "ACCURACY", right: true},
}

// Summary aggregates a list of history rows.
type Summary struct {
	Runs        int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
}

// Summarize computes averages over records.
func Summarize(records []history.Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	var sum Summary
	var totalWPM, totalAcc float64
	for _, r := range records {
		wpm := r.WPMValue()
		totalWPM += wpm
		totalAcc += r.AccuracyValue()
		if wpm > sum.BestWPM {
			sum.BestWPM = wpm
		}
	}
	sum.Runs = len(records)
	sum.AvgWPM = totalWPM / float64(len(records))
	sum.AvgAccuracy = totalAcc / float64(len(records))
	return sum
}

// WPMSeries extracts the WPM column.
func WPMSeries(records []history.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.WPMValue()
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := i + 1
		if den > window {
			den = window
		}
		out[i] = sum / float64(den)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
// When width is positive only the last width values are drawn.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderHistory prints records as a table followed by a summary and a WPM trend line.
// width bounds the trend line; useColor enables ANSI styling.
func RenderHistory(w io.Writer, records []history.Record, width int, useColor bool) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "0 records found")
		return err
	}
	if _, err := fmt.Fprintf(w, "Last %d records:\n", len(records)); err != nil {
		return err
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.ID, r.WPM, r.Date, r.Time, r.Accuracy + "%"}
	}
	for i, line := range formatTable(historyColumns, rows) {
		if i == 0 && useColor {
			line = colorBold + line + colorReset
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	sum := Summarize(records)
	if _, err := fmt.Fprintf(w, "\nRuns: %d  Avg WPM: %.2f  Best WPM: %.2f  Avg Accuracy: %.2f%%\n",
		sum.Runs, sum.AvgWPM, sum.BestWPM, sum.AvgAccuracy); err != nil {
		return err
	}
	if len(records) < 2 {
		return nil
	}
	if width <= 0 {
		width = terminalWidthBackup
	}
	spark := Sparkline(MovingAverage(WPMSeries(records), trendWindow), width-len(trendLabel))
	if useColor {
		spark = colorCyan + spark + colorReset
	}
	_, err := fmt.Fprintln(w, trendLabel+spark)
	return err
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
