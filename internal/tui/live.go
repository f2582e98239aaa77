// Package tui shows live render progress while the frame pool works.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// ProgressMsg reports completed frames.
type ProgressMsg struct {
	Done, Total int
}

// DoneMsg ends the view; a non-nil Err means the run failed.
type DoneMsg struct {
	Err error
}

type TickMsg time.Time

type Model struct {
	output      string
	start       time.Time
	done, total int
	err         error
	finished    bool
	canceled    bool
}

func NewModel(output string, total int) Model {
	return Model{output: output, total: total, start: time.Now()}
}

// Err returns the pipeline error, if any, once the view has quit.
func (m Model) Err() error { return m.err }

// Canceled reports whether the user quit before the run finished.
func (m Model) Canceled() bool { return m.canceled }

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.canceled = true
			return m, tea.Quit
		}
	case ProgressMsg:
		m.done, m.total = msg.Done, msg.Total
	case DoneMsg:
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit
	case TickMsg:
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("gbmviz — rendering frames"))
	b.WriteString("\n")

	filled := 0
	if m.total > 0 {
		filled = barWidth * m.done / m.total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	b.WriteString(barStyle.Render(bar))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("frames"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d / %d", m.done, m.total)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("elapsed"))
	b.WriteString(valueStyle.Render(time.Since(m.start).Round(100 * time.Millisecond).String()))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("output"))
	b.WriteString(valueStyle.Render(m.output))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("q to cancel"))
	b.WriteString("\n")

	return b.String()
}
