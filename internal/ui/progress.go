package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RenderSuccessBar renders a static bar filled to percent (0.0 - 1.0).
func RenderSuccessBar(percent float64, width int) string {
	if width < 20 {
		width = 20
	}
	if width > 50 {
		width = 50
	}
	bar := progress.New(
		progress.WithGradient(string(ErrorColor), string(SuccessColor)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return fmt.Sprintf("%s  %5.1f%%", bar.ViewAs(percent), percent*100)
}

// FileDone reports one processed file to a running progress display.
type FileDone struct {
	Name    string
	Decoded int
	Failed  int
}

type workDoneMsg struct{ err error }

// progressModel is a Bubble Tea model that shows a progress bar and the
// last processed file while work runs in the background.
type progressModel struct {
	label   string
	total   int
	done    int
	last    FileDone
	decoded int
	failed  int
	bar     progress.Model
	err     error
}

func newProgressModel(label string, total int) progressModel {
	barWidth := GetTerminalWidth() - 30 // Leave room for percentage and file count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	return progressModel{
		label: label,
		total: total,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
		),
	}
}

// Init implements tea.Model
func (m progressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FileDone:
		m.done++
		m.last = msg
		m.decoded += msg.Decoded
		m.failed += msg.Failed
		return m, nil
	case workDoneMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.err = context.Canceled
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model
func (m progressModel) View() string {
	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}

	var b strings.Builder
	b.WriteString(HeaderTitleStyle.Render(m.label))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(
		fmt.Sprintf("%s  %3.0f%%  [%d/%d]", m.bar.ViewAs(percent), percent*100, m.done, m.total)))
	b.WriteString("\n")
	if m.last.Name != "" {
		b.WriteString(HeaderCommandStyle.Render(fmt.Sprintf("%s  %s %d  %s %d",
			m.last.Name, SuccessMarker, m.decoded, FailureMarker, m.failed)))
		b.WriteString("\n")
	}
	return b.String()
}

// RunWithProgress runs work while a live progress display counts total
// files. work reports each finished file through report. The display is
// cleared when work returns.
func RunWithProgress(ctx context.Context, out io.Writer, label string, total int, work func(ctx context.Context, report func(FileDone)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(label, total),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	go func() {
		err := work(ctx, func(f FileDone) { p.Send(f) })
		p.Send(workDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress display: %w", err)
	}
	return final.(progressModel).err
}
