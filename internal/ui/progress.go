package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	defaultBarWidth = 40
	maxNameWidth    = 32
	tailLines       = 6
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TransferResultMsg reports one finished file in a transfer batch.
type TransferResultMsg struct {
	Name string
	Err  error
}

// TransferModel renders a progress bar for a batch of concurrent file
// transfers (uploads or downloads), with a short tail of completed files.
type TransferModel struct {
	title    string
	total    int
	done     int
	failed   int
	tail     []string
	bar      progress.Model
	quitting bool
	canceled bool
}

// NewTransferModel creates a progress model for a batch of total files.
func NewTransferModel(title string, total int) TransferModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultBarWidth
	return TransferModel{
		title: title,
		total: total,
		bar:   bar,
	}
}

func (m TransferModel) Init() tea.Cmd {
	return nil
}

func (m TransferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > defaultBarWidth {
			width = defaultBarWidth
		}
		if width > 0 {
			m.bar.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil

	case TransferResultMsg:
		m.done++
		name := runewidth.Truncate(msg.Name, maxNameWidth, "…")
		var line string
		if msg.Err != nil {
			m.failed++
			line = failStyle.Render("✗") + " " + name + " " + dimStyle.Render(msg.Err.Error())
		} else {
			line = okStyle.Render("✓") + " " + name
		}
		m.tail = append(m.tail, line)
		if len(m.tail) > tailLines {
			m.tail = m.tail[len(m.tail)-tailLines:]
		}
		if m.done >= m.total {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m TransferModel) View() string {
	var b strings.Builder

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(percent))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", m.done, m.total)))
	if m.failed > 0 {
		b.WriteString(failStyle.Render(fmt.Sprintf("  (%d failed)", m.failed)))
	}
	b.WriteString("\n")
	for _, line := range m.tail {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.quitting {
		return b.String()
	}
	b.WriteString(dimStyle.Render("\nctrl+c to abort\n"))
	return b.String()
}

// Canceled reports whether the user aborted the batch with ctrl+c.
// The program runs in raw mode, so the keypress never reaches the
// process as a signal; callers must cancel the transfers themselves.
func (m TransferModel) Canceled() bool {
	return m.canceled
}

// NewTransferProgram wraps a TransferModel in a tea.Program. Callers send
// TransferResultMsg values from transfer goroutines and Run blocks until
// the batch completes.
func NewTransferProgram(model TransferModel) *tea.Program {
	return tea.NewProgram(model)
}
