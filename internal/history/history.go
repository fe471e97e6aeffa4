// Package history appends and reads finished runs in a CSV file.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/retype/internal/model"
)

// Header is the first row of every history file.
var Header = []string{"ID", "WPM", "DATE", "TIME", "ACCURACY"}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Record is one row of the history file.
type Record struct {
	ID       string
	WPM      string
	Date     string
	Time     string
	Accuracy string
}

// FromResult formats a finished run as a history row.
func FromResult(res model.Result) Record {
	at := res.FinishedAt.Local()
	return Record{
		ID:       res.Text.Label(),
		WPM:      fmt.Sprintf("%.2f", res.WPM),
		Date:     at.Format(dateLayout),
		Time:     at.Format(timeLayout),
		Accuracy: fmt.Sprintf("%.2f", res.Accuracy),
	}
}

// Row returns the record as CSV fields.
func (r Record) Row() []string {
	return []string{r.ID, r.WPM, r.Date, r.Time, r.Accuracy}
}

// WPMValue parses the WPM column, returning 0 when malformed.
func (r Record) WPMValue() float64 {
	return parseFloat(r.WPM)
}

// AccuracyValue parses the accuracy column, returning 0 when malformed.
func (r Record) AccuracyValue() float64 {
	return parseFloat(strings.TrimSuffix(r.Accuracy, "%"))
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Store reads and appends history rows at a fixed path.
type Store struct {
	path string
}

// New returns a store for the CSV file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// Record appends a finished run.
func (s *Store) Record(res model.Result) error {
	return s.Append(FromResult(res))
}

// Append writes one row, creating the file with a header row first if needed.
func (s *Store) Append(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	info, statErr := os.Stat(s.path)
	needHeader := statErr != nil || info.Size() == 0
	if statErr != nil && !os.IsNotExist(statErr) {
		return fmt.Errorf("failed to stat history: %w", statErr)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	w := csv.NewWriter(file)
	if needHeader {
		if err := w.Write(Header); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to write history header: %w", err)
		}
	}
	if err := w.Write(rec.Row()); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush history: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}
	return nil
}

// Read returns the last n rows, or every row when n <= -1 or n exceeds the total.
// A missing or empty file yields no rows.
func (s *Store) Read(n int) ([]Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only history.
			_ = cerr
		}
	}()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history header: %w", err)
	}
	var records []Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		records = append(records, recordFromRow(row))
	}
	if n <= -1 || n >= len(records) {
		return records, nil
	}
	return records[len(records)-n:], nil
}

func recordFromRow(row []string) Record {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		ID:       field(0),
		WPM:      field(1),
		Date:     field(2),
		Time:     field(3),
		Accuracy: field(4),
	}
}
