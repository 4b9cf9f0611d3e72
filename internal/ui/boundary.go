package ui

import (
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Boundary wraps a model and replaces it with a fallback screen when it panics.
//
// Pressing r builds a fresh model; q quits.
type Boundary struct {
	build  func() tea.Model
	inner  tea.Model
	err    error
	size   *tea.WindowSizeMsg
	keys   keyMap
	logger *log.Logger
}

// NewBoundary creates a [Boundary] around the model returned by build.
func NewBoundary(build func() tea.Model, logger *log.Logger) *Boundary {
	if logger == nil {
		logger = log.Default()
	}
	return &Boundary{build: build, inner: build(), keys: newKeyMap(), logger: logger}
}

// Err returns the recovered failure, or nil while the inner model is healthy.
func (b *Boundary) Err() error { return b.err }

func (b *Boundary) recover() {
	if r := recover(); r != nil {
		b.fail(r)
	}
}

func (b *Boundary) fail(r any) {
	b.err = fmt.Errorf("%v", r)
	b.logger.Error("recovered from panic", "error", b.err, "stack", string(debug.Stack()))
}

func (b *Boundary) Init() (cmd tea.Cmd) {
	defer b.recover()
	return b.inner.Init()
}

func (b *Boundary) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		b.size = &size
	}

	if b.err != nil {
		return b.updateFallback(msg)
	}

	model = b
	defer b.recover()

	inner, cmd := b.inner.Update(msg)
	b.inner = inner
	return b, cmd
}

func (b *Boundary) updateFallback(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	switch {
	case key.Matches(keyMsg, b.keys.quit):
		return b, tea.Quit
	case key.Matches(keyMsg, b.keys.restart):
		return b, b.restart()
	}
	return b, nil
}

// restart discards the failed model and starts a new one.
func (b *Boundary) restart() (cmd tea.Cmd) {
	defer b.recover()

	if closer, ok := b.inner.(interface{ Close() }); ok {
		closer.Close()
	}
	b.err = nil
	b.inner = b.build()
	b.logger.Info("rebuilt interface after failure")

	cmds := []tea.Cmd{b.inner.Init()}
	if b.size != nil {
		size := *b.size
		cmds = append(cmds, func() tea.Msg { return size })
	}
	return tea.Batch(cmds...)
}

func (b *Boundary) View() (view string) {
	if b.err != nil {
		return b.fallbackView()
	}
	defer func() {
		if r := recover(); r != nil {
			b.fail(r)
			view = b.fallbackView()
		}
	}()
	return b.inner.View()
}

func (b *Boundary) fallbackView() string {
	return styles.dialog.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.err.Render("Unexpected Error Occurred!"),
		"",
		b.err.Error(),
		"",
		styles.help.Render("r Try again • q quit"),
	))
}
