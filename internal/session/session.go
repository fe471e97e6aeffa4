// Package session implements the typing-session state machine: it consumes
// classified keys, tracks typed text against the reference, computes final
// statistics, and replays a finished attempt from its keystroke log.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/retype/internal/keys"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/textprep"
)

// ErrEmptyText is returned for practice text without any words.
var ErrEmptyText = errors.New("practice text is empty")

// Mode is the top-level state of a session.
type Mode int

const (
	// Typing means an attempt is in progress or waiting for its first key.
	Typing Mode = iota
	// Finished means stats are computed and replay/retry are available.
	Finished
)

// Effect tells the presentation layer what to do after a key was handled.
type Effect int

const (
	None Effect = iota
	Quit
	Relayout
	Completed
	Replay
	Share
	PrevText
	NextText
)

// Keystroke is one entry of the keystroke log. Time holds unix seconds while
// the attempt runs and the delay since the previous entry once it finished.
type Keystroke struct {
	Time float64
	Key  keys.Key
}

// Delay returns the entry time as a duration.
func (k Keystroke) Delay() time.Duration {
	if k.Time <= 0 {
		return 0
	}
	return time.Duration(k.Time * float64(time.Second))
}

// Recorder persists finished results.
type Recorder interface {
	Record(model.Result) error
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithWordLimit sets the word length cap.
func WithWordLimit(limit int) Option {
	return func(s *Session) { s.wordLimit = limit }
}

// WithRecorder sets where finished results are saved.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// Session is one practice run over a single text.
type Session struct {
	ref       model.TextRef
	text      string
	tokens    []string
	wrapped   string
	width     int
	wordLimit int

	buf     *Buffer
	mode    Mode
	started bool

	startedAt  time.Time
	finishedAt time.Time
	log        []Keystroke

	complete  bool
	result    model.Result
	recordErr error

	replaying bool
	replayPos int
	replayBuf *Buffer

	now      func() time.Time
	recorder Recorder
}

// New builds a session for raw text wrapped at width.
func New(ref model.TextRef, raw string, width int, opts ...Option) (*Session, error) {
	s := &Session{
		wordLimit: DefaultWordLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ref, raw, width); err != nil {
		return nil, err
	}
	s.Reset()
	return s, nil
}

func (s *Session) load(ref model.TextRef, raw string, width int) error {
	text := textprep.Normalize(raw)
	if text == "" {
		return ErrEmptyText
	}
	wrapped, err := textprep.WordWrap(text, width)
	if err != nil {
		return fmt.Errorf("failed to wrap text at width %d: %w", width, err)
	}
	s.ref = ref
	s.text = text
	s.tokens = strings.Fields(text)
	s.wrapped = wrapped
	s.width = width
	return nil
}

// Replace swaps in a different text and starts a fresh attempt.
func (s *Session) Replace(ref model.TextRef, raw string) error {
	if err := s.load(ref, raw, s.width); err != nil {
		return err
	}
	s.Reset()
	return nil
}

// Resize re-wraps the text for a new width, keeping typing progress.
func (s *Session) Resize(width int) error {
	if width == s.width {
		return nil
	}
	wrapped, err := textprep.WordWrap(s.text, width)
	if err != nil {
		return fmt.Errorf("failed to wrap text at width %d: %w", width, err)
	}
	s.wrapped = wrapped
	s.width = width
	s.buf.rewrap(wrapped)
	if s.replayBuf != nil {
		s.replayBuf.rewrap(wrapped)
	}
	return nil
}

// Reset starts a new attempt on the same text.
func (s *Session) Reset() {
	s.buf = s.newBuffer()
	s.mode = Typing
	s.started = false
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.log = nil
	s.complete = false
	s.result = model.Result{}
	s.recordErr = nil
	s.replaying = false
	s.replayPos = 0
	s.replayBuf = nil
}

func (s *Session) newBuffer() *Buffer {
	return NewBuffer(s.wrapped, s.tokens, WordLimitFor(s.tokens, s.wordLimit))
}

// Handle applies one classified key and returns what the caller should do next.
func (s *Session) Handle(k keys.Key) Effect {
	switch k.Kind {
	case keys.Null:
		return None
	case keys.CtrlC:
		return Quit
	case keys.Resize:
		return Relayout
	}
	if s.replaying {
		if k.Kind == keys.Escape {
			s.AbortReplay()
		}
		return None
	}
	if s.mode == Finished {
		return s.handleFinished(k)
	}
	if !s.started {
		switch k.Kind {
		case keys.Escape:
			return Quit
		case keys.ArrowLeft:
			return PrevText
		case keys.ArrowRight:
			return NextText
		}
		if !keys.IsValidInitial(k) {
			return None
		}
		s.started = true
		s.startedAt = s.now()
	}
	if k.Kind == keys.Escape {
		s.Reset()
		return None
	}
	s.log = append(s.log, Keystroke{Time: unixSeconds(s.now()), Key: k})
	if !s.buf.Apply(k) {
		return None
	}
	if s.buf.Complete() {
		s.finish()
		return Completed
	}
	return None
}

func (s *Session) handleFinished(k keys.Key) Effect {
	switch k.Kind {
	case keys.Tab:
		s.Reset()
		return None
	case keys.Enter:
		if s.BeginReplay() {
			return Replay
		}
		return None
	case keys.Share:
		return Share
	case keys.Escape:
		return Quit
	case keys.ArrowLeft:
		return PrevText
	case keys.ArrowRight:
		return NextText
	}
	return None
}

func (s *Session) finish() {
	s.finishedAt = s.now()
	elapsed := stats.ElapsedSeconds(s.startedAt, s.finishedAt)
	total := s.buf.Total()
	wrong := stats.WrongChars(total, len([]rune(s.text)))
	s.result = model.Result{
		Text:       s.ref,
		WPM:        stats.SpeedWPM(len(s.tokens), elapsed),
		Accuracy:   stats.Accuracy(total, wrong),
		Elapsed:    s.finishedAt.Sub(s.startedAt),
		FinishedAt: s.finishedAt,
	}
	DeltaEncode(s.log)
	s.mode = Finished
	s.started = false
	if s.complete {
		return
	}
	s.complete = true
	if s.recorder != nil {
		s.recordErr = s.recorder.Record(s.result)
	}
}

// DeltaEncode rewrites absolute entry times into delays since the previous
// entry. The first entry becomes 0.
func DeltaEncode(log []Keystroke) {
	for k := len(log) - 1; k > 0; k-- {
		log[k].Time -= log[k-1].Time
	}
	if len(log) > 0 {
		log[0].Time = 0
	}
}

// BeginReplay starts replaying the finished attempt on a fresh buffer.
func (s *Session) BeginReplay() bool {
	if s.mode != Finished || len(s.log) == 0 {
		return false
	}
	s.replaying = true
	s.replayPos = 0
	s.replayBuf = s.newBuffer()
	return true
}

// NextReplay returns the next logged keystroke without applying it.
func (s *Session) NextReplay() (Keystroke, bool) {
	if !s.replaying || s.replayPos >= len(s.log) {
		return Keystroke{}, false
	}
	return s.log[s.replayPos], true
}

// StepReplay applies the next logged keystroke and reports whether more remain.
func (s *Session) StepReplay() bool {
	entry, ok := s.NextReplay()
	if !ok {
		s.replaying = false
		return false
	}
	s.replayBuf.Apply(entry.Key)
	s.replayPos++
	if s.replayPos >= len(s.log) {
		s.replaying = false
		return false
	}
	return true
}

// AbortReplay stops a running replay.
func (s *Session) AbortReplay() {
	s.replaying = false
	s.replayBuf = nil
}

// Replaying reports whether a replay is in progress.
func (s *Session) Replaying() bool { return s.replaying }

// Buffer returns the buffer to display: the replay buffer while replaying.
func (s *Session) Buffer() *Buffer {
	if s.replayBuf != nil {
		return s.replayBuf
	}
	return s.buf
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Started reports whether the first valid key has been pressed.
func (s *Session) Started() bool { return s.started }

// Text returns the reference of the practice text.
func (s *Session) Text() model.TextRef { return s.ref }

// Tokens returns the words of the practice text.
func (s *Session) Tokens() []string { return s.tokens }

// Wrapped returns the reference text padded for the current width.
func (s *Session) Wrapped() string { return s.wrapped }

// Width returns the wrap width.
func (s *Session) Width() int { return s.width }

// Result returns the stats of the finished attempt.
func (s *Session) Result() model.Result { return s.result }

// RecordErr returns the error of the last history save, if any.
func (s *Session) RecordErr() error { return s.recordErr }

// Keystrokes returns a copy of the keystroke log.
func (s *Session) Keystrokes() []Keystroke {
	out := make([]Keystroke, len(s.log))
	copy(out, s.log)
	return out
}

// Elapsed returns the time spent on the attempt so far.
func (s *Session) Elapsed() time.Duration {
	switch {
	case s.mode == Finished:
		return s.result.Elapsed
	case s.started:
		return s.now().Sub(s.startedAt)
	default:
		return 0
	}
}

// LiveWPM returns the realtime speed, or the final speed once finished.
func (s *Session) LiveWPM() float64 {
	if s.mode == Finished {
		return s.result.WPM
	}
	if !s.started {
		return 0
	}
	return stats.LiveWPM(s.buf.Typed(), s.Elapsed().Seconds())
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}
