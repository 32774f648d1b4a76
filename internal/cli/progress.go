package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/seamcarve/pkg/seam"
)

const progressWidth = 32

var (
	styleBarFull  = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarEmpty = lipgloss.NewStyle().Foreground(colorDim)
)

// seamMsg reports that done of total seams have been removed.
type seamMsg struct{ done, total int }

// finishedMsg ends the progress program.
type finishedMsg struct{}

// progressModel is the bubbletea model for the seam-removal progress bar.
type progressModel struct {
	label string
	done  int
	total int
	start time.Time
}

func newProgressModel(label string, total int) progressModel {
	return progressModel{label: label, total: total, start: time.Now()}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case seamMsg:
		m.done, m.total = msg.done, msg.total
	case finishedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	filled := 0
	if m.total > 0 {
		filled = m.done * progressWidth / m.total
	}
	bar := styleBarFull.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", progressWidth-filled))
	elapsed := time.Since(m.start).Round(100 * time.Millisecond)
	return fmt.Sprintf("%s %s %s %s\n",
		styleIconSpinner.Render(iconInfo),
		StyleDim.Render(m.label),
		bar,
		StyleDim.Render(fmt.Sprintf("%d/%d seams · %s", m.done, m.total, elapsed)))
}

// seamProgress drives a progress bar on a terminal. A nil *seamProgress is
// valid and reports nothing.
type seamProgress struct {
	program *tea.Program
	stopped chan struct{}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// startProgress starts a progress bar on stderr for removing total seams.
// It returns nil when disabled, when nothing is removed, or when stderr is
// not a terminal; plain log lines are enough there.
func startProgress(ctx context.Context, label string, total int, disabled bool) *seamProgress {
	if disabled || total <= 0 || !isTerminal(os.Stderr) {
		return nil
	}
	p := &seamProgress{
		program: tea.NewProgram(newProgressModel(label, total),
			tea.WithContext(ctx),
			tea.WithOutput(os.Stderr),
			tea.WithInput(nil),
		),
		stopped: make(chan struct{}),
	}
	go func() {
		defer close(p.stopped)
		_, _ = p.program.Run()
	}()
	return p
}

// callback returns the function handed to the carver.
func (p *seamProgress) callback() seam.ProgressFunc {
	if p == nil {
		return nil
	}
	return func(done, total int) {
		p.program.Send(seamMsg{done: done, total: total})
	}
}

// stop ends the progress bar and waits for the terminal to be restored.
func (p *seamProgress) stop() {
	if p == nil {
		return
	}
	p.program.Send(finishedMsg{})
	<-p.stopped
}
