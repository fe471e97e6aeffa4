// Package model defines shared data structures.
package model

import (
	"strconv"
	"time"
)

// Config defines practice settings.
type Config struct {
	Difficulty  int
	WordLimit   int
	ShareKey    string
	HistoryPath string
	TextsDBPath string
}

// TextRef identifies where a practice text came from.
// Name is set for file input; otherwise ID is the text table row.
type TextRef struct {
	ID   int
	Name string
}

// Numbered reports whether the text lives in the text table and can be navigated.
func (r TextRef) Numbered() bool {
	return r.Name == "" && r.ID > 0
}

// Label renders the reference as stored in history.
func (r TextRef) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return strconv.Itoa(r.ID)
}

// Result captures a completed typing run.
type Result struct {
	Text       TextRef
	WPM        float64
	Accuracy   float64
	Elapsed    time.Duration
	FinishedAt time.Time
}
