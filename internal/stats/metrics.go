// Package stats contains typing metrics, history summaries, and reporting.
package stats

import (
	"strings"
	"time"
)

// FirstDifference returns the first index at which typed and reference disagree.
// When one is a prefix of the other it returns the shorter length.
func FirstDifference(typed, reference []rune) int {
	n := len(typed)
	if len(reference) < n {
		n = len(reference)
	}
	for i := 0; i < n; i++ {
		if typed[i] != reference[i] {
			return i
		}
	}
	return n
}

// ElapsedSeconds returns the seconds between start and now.
func ElapsedSeconds(start, now time.Time) float64 {
	return now.Sub(start).Seconds()
}

// ElapsedMinutes returns the minutes between start and now.
func ElapsedMinutes(start, now time.Time) float64 {
	return ElapsedSeconds(start, now) / 60
}

// SpeedWPM returns words per minute for a text of the given token count.
// A non-positive elapsed time yields 0.
func SpeedWPM(tokens int, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return 60 * float64(tokens) / elapsedSeconds
}

// LiveWPM estimates speed from the words typed so far.
func LiveWPM(typed []rune, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	words := len(strings.Fields(string(typed)))
	return float64(words) / (elapsedSeconds / 60)
}

// WrongChars returns how many typed characters exceed the reference length.
func WrongChars(total, referenceLen int) int {
	if total <= referenceLen {
		return 0
	}
	return total - referenceLen
}

// Accuracy returns the percentage of typed characters that were not wrong.
// Zero typed characters yields 0.
func Accuracy(total, wrong int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-wrong) / float64(total) * 100
}

// SpaceRunLength counts consecutive spaces in text starting at index.
func SpaceRunLength(text []rune, index int) int {
	count := 0
	for i := index; i >= 0 && i < len(text) && text[i] == ' '; i++ {
		count++
	}
	return count
}
