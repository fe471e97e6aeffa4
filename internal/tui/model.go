// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/retype/internal/keys"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/session"
	"github.com/verte-zerg/retype/internal/textprep"
)

// ErrWindowTooSmall reports a terminal that cannot fit the text and its stats rows.
var ErrWindowTooSmall = errors.New("window too small to print given text")

const (
	refreshInterval = 100 * time.Millisecond
	// Rows below the text: gap, current word, gap, help lines, and the stats bar.
	reservedRows = 7
	textTop      = 2
)

// Navigator loads the snippet next to a numbered text.
type Navigator interface {
	Adjacent(ctx context.Context, ref model.TextRef, delta int) (string, model.TextRef, bool, error)
}

// Options wires optional collaborators into the model.
type Options struct {
	Classifier keys.Classifier
	Navigator  Navigator
	// Open launches an external URL; defaults to the platform browser opener.
	Open func(url string) error
	Now  func() time.Time
}

type tickMsg struct{}

type replayStepMsg struct {
	gen int
}

type shareErrMsg struct {
	err error
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	sess       *session.Session
	classifier keys.Classifier
	nav        Navigator
	open       func(string) error
	now        func() time.Time

	width  int
	height int
	lines  int

	ticking        bool
	replayGen      int
	replayDeadline time.Time

	// status is a non-fatal error shown above the stats bar.
	status string
	err    error
}

// NewSession builds a session wrapped at the terminal width. A text that cannot be
// wrapped at that width is reported as ErrWindowTooSmall, like a later resize would be.
func NewSession(ref model.TextRef, text string, width int, opts ...session.Option) (*session.Session, error) {
	sess, err := session.New(ref, text, width, opts...)
	if errors.Is(err, textprep.ErrInvalidWidth) {
		return nil, fmt.Errorf("%w: %v", ErrWindowTooSmall, err)
	}
	return sess, err
}

// NewModel constructs a typing TUI model around sess.
func NewModel(sess *session.Session, opts Options) *Model {
	m := &Model{
		sess:       sess,
		classifier: opts.Classifier,
		nav:        opts.Navigator,
		open:       opts.Open,
		now:        opts.Now,
	}
	if m.classifier == (keys.Classifier{}) {
		m.classifier = keys.DefaultClassifier()
	}
	if m.open == nil {
		m.open = openURL
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.lines = textprep.CountLines(sess.Wrapped(), sess.Width())
	return m
}

// Err returns the error that stopped the program, if any.
func (m *Model) Err() error {
	return m.err
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
		if err := m.relayout(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(m.classifier.ClassifyTea(msg))
	case tickMsg:
		if m.sess.Started() && m.sess.Mode() == session.Typing {
			return m, tick()
		}
		m.ticking = false
		return m, nil
	case replayStepMsg:
		if msg.gen != m.replayGen || !m.sess.Replaying() {
			return m, nil
		}
		if m.sess.StepReplay() {
			return m, m.scheduleReplay()
		}
		return m, nil
	case shareErrMsg:
		m.warnf("failed to share result: %v", msg.err)
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKeys(ks []keys.Key) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, k := range ks {
		switch m.sess.Handle(k) {
		case session.Quit:
			return m, tea.Quit
		case session.Relayout:
			if err := m.relayout(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		case session.Completed:
			if err := m.sess.RecordErr(); err != nil {
				m.warnf("failed to save history: %v", err)
			} else {
				m.status = ""
			}
		case session.Replay:
			m.replayGen++
			m.replayDeadline = m.now()
			cmds = append(cmds, m.scheduleReplay())
		case session.Share:
			cmds = append(cmds, m.share(m.sess.Result()))
		case session.PrevText:
			if err := m.switchText(-1); err != nil {
				m.err = err
				return m, tea.Quit
			}
		case session.NextText:
			if err := m.switchText(1); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	if m.sess.Started() && !m.ticking {
		m.ticking = true
		cmds = append(cmds, tick())
	}
	return m, tea.Batch(cmds...)
}

// relayout re-wraps the text for the current width and checks that it fits.
func (m *Model) relayout() error {
	if m.width <= 0 {
		return nil
	}
	if err := m.sess.Resize(m.width); err != nil {
		return fmt.Errorf("%w: %v", ErrWindowTooSmall, err)
	}
	m.lines = textprep.CountLines(m.sess.Wrapped(), m.sess.Width())
	if m.height > 0 && m.lines+3+reservedRows >= m.height {
		return ErrWindowTooSmall
	}
	return nil
}

func (m *Model) switchText(delta int) error {
	if m.nav == nil {
		return nil
	}
	text, ref, ok, err := m.nav.Adjacent(context.Background(), m.sess.Text(), delta)
	if err != nil {
		m.warnf("failed to load text: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	if err := m.sess.Replace(ref, text); err != nil {
		m.warnf("failed to load text %s: %v", ref.Label(), err)
		return nil
	}
	m.status = ""
	return m.relayout()
}

// scheduleReplay waits until the next logged keystroke is due.
// Deadlines accumulate so rendering time does not stretch the replay.
func (m *Model) scheduleReplay() tea.Cmd {
	entry, ok := m.sess.NextReplay()
	if !ok {
		return nil
	}
	m.replayDeadline = m.replayDeadline.Add(entry.Delay())
	wait := m.replayDeadline.Sub(m.now())
	if wait < 0 {
		wait = 0
	}
	gen := m.replayGen
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return replayStepMsg{gen: gen}
	})
}

func (m *Model) share(res model.Result) tea.Cmd {
	link := ShareURL(res)
	open := m.open
	return func() tea.Msg {
		if err := open(link); err != nil {
			return shareErrMsg{err: err}
		}
		return nil
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// warnf shows a non-fatal failure in the view and in the debug log.
func (m *Model) warnf(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	log.Print(m.status)
}

// Status returns the last non-fatal error shown to the user.
func (m *Model) Status() string {
	return m.status
}
