// Package textsrc resolves practice texts from files or the text table.
package textsrc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/retype/internal/model"
)

// ErrInvalidSelector reports an id, difficulty, or file that cannot produce a text.
var ErrInvalidSelector = errors.New("invalid text selector")

const (
	// RowCount is the number of snippets addressable by id.
	RowCount = 6000
	// Bands is the number of difficulty levels.
	Bands = 5
	// BandSize is the number of rows per difficulty level.
	BandSize = RowCount / Bands
)

// Lookup fetches a snippet by row id.
type Lookup interface {
	TextByID(ctx context.Context, id int) (string, error)
}

// Selector chooses a text. File wins over ID, ID over Difficulty.
// Difficulty 0 picks a random band.
type Selector struct {
	File       string
	ID         int
	Difficulty int
}

// BandRange returns the inclusive id range for difficulty level k.
func BandRange(k int) (int, int, error) {
	if k < 1 || k > Bands {
		return 0, 0, fmt.Errorf("%w: difficulty must be in range [1,%d], got %d", ErrInvalidSelector, Bands, k)
	}
	upper := k * BandSize
	return upper - BandSize + 1, upper, nil
}

// Source loads texts for practice runs.
type Source struct {
	db  Lookup
	rnd *rand.Rand
}

// New returns a Source seeded with the current time.
func New(db Lookup) *Source {
	return NewWithRand(db, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand returns a Source using rnd for random picks.
func NewWithRand(db Lookup, rnd *rand.Rand) *Source {
	return &Source{db: db, rnd: rnd}
}

// Load resolves sel into the raw text and its reference.
func (s *Source) Load(ctx context.Context, sel Selector) (string, model.TextRef, error) {
	switch {
	case sel.File != "":
		return loadFile(sel.File)
	case sel.ID != 0:
		return s.loadID(ctx, sel.ID)
	default:
		id, err := s.pickID(sel.Difficulty)
		if err != nil {
			return "", model.TextRef{}, err
		}
		return s.loadID(ctx, id)
	}
}

// Adjacent loads the snippet delta rows away from ref.
// It reports false when ref is a file or the target id leaves [1, RowCount].
func (s *Source) Adjacent(ctx context.Context, ref model.TextRef, delta int) (string, model.TextRef, bool, error) {
	if !ref.Numbered() {
		return "", model.TextRef{}, false, nil
	}
	id := ref.ID + delta
	if id < 1 || id > RowCount {
		return "", model.TextRef{}, false, nil
	}
	text, next, err := s.loadID(ctx, id)
	if err != nil {
		return "", model.TextRef{}, false, err
	}
	return text, next, true, nil
}

func (s *Source) pickID(difficulty int) (int, error) {
	if difficulty == 0 {
		difficulty = s.rnd.Intn(Bands) + 1
	}
	lo, hi, err := BandRange(difficulty)
	if err != nil {
		return 0, err
	}
	return lo + s.rnd.Intn(hi-lo+1), nil
}

func (s *Source) loadID(ctx context.Context, id int) (string, model.TextRef, error) {
	if id < 1 || id > RowCount {
		return "", model.TextRef{}, fmt.Errorf("%w: id must be in range [1,%d], got %d", ErrInvalidSelector, RowCount, id)
	}
	if s.db == nil {
		return "", model.TextRef{}, fmt.Errorf("failed to load text %d: no text database", id)
	}
	text, err := s.db.TextByID(ctx, id)
	if err != nil {
		return "", model.TextRef{}, fmt.Errorf("failed to load text %d: %w", id, err)
	}
	return text, model.TextRef{ID: id}, nil
}

func loadFile(path string) (string, model.TextRef, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", model.TextRef{}, fmt.Errorf("%w: cannot open file %s", ErrInvalidSelector, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", model.TextRef{}, fmt.Errorf("%w: cannot open file %s: %v", ErrInvalidSelector, path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", model.TextRef{}, fmt.Errorf("%w: file %s is empty", ErrInvalidSelector, path)
	}
	return string(data), model.TextRef{Name: filepath.Base(path)}, nil
}

// LoadLines reads one snippet per non-blank line from path.
func LoadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("snippet file is empty")
	}
	return lines, nil
}
