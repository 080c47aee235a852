package main

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
)

// progressUpdateMsg carries one provider.ProgressFunc tick into the Bubble
// Tea program's Update loop.
type progressUpdateMsg struct {
	provider   string
	filesDone  int
	filesTotal int
}

type progressDoneMsg struct{}

// progressModel is a minimal Bubble Tea program driving a single
// bubbles/progress bar across every provider's Collect pass, the same
// "model holds a widget, Update pushes ticks into it" shape
// internal/tui's dashboard loop uses for its own progress widgets.
type progressModel struct {
	bar     progress.Model
	current string
	done    bool
}

func newProgressModel() progressModel {
	return progressModel{bar: progress.New(progress.WithDefaultGradient())}
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdateMsg:
		m.current = msg.provider
		if msg.filesTotal > 0 {
			cmd := m.bar.SetPercent(float64(msg.filesDone) / float64(msg.filesTotal))
			return m, cmd
		}
		return m, nil
	case progressDoneMsg:
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		newModel, cmd := m.bar.Update(msg)
		m.bar = newModel.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s scanning %s\n", m.bar.View(), m.current)
}

// progressReporter drives a backgrounded Bubble Tea program from
// provider.ProgressFunc callbacks fired concurrently by the worker pool in
// internal/provider/runner.go; Send is safe for concurrent use.
type progressReporter struct {
	program *tea.Program
	once    sync.Once
}

func newProgressReporter() *progressReporter {
	p := tea.NewProgram(newProgressModel())
	return &progressReporter{program: p}
}

// start launches the Bubble Tea program in the background and returns a
// ProgressFunc bound to it.
func (r *progressReporter) start() func(providerName string, filesDone, filesTotal int) {
	go func() {
		_, _ = r.program.Run()
	}()
	return func(providerName string, filesDone, filesTotal int) {
		r.program.Send(progressUpdateMsg{provider: providerName, filesDone: filesDone, filesTotal: filesTotal})
	}
}

func (r *progressReporter) stop() {
	r.once.Do(func() {
		r.program.Send(progressDoneMsg{})
	})
}
