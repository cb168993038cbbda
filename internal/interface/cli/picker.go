package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/ccrewind/internal/core/models"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	pickerItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("170")).
				Bold(true)
)

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var pickerKeys = pickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "restore"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

type pickerModel struct {
	checkpoints []models.Checkpoint // newest first
	cursor      int
	choice      *models.Checkpoint
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, pickerKeys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, pickerKeys.Down):
		if m.cursor < len(m.checkpoints)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, pickerKeys.Select):
		m.choice = &m.checkpoints[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Select a checkpoint to restore") + "\n\n"
	for i, cp := range m.checkpoints {
		line := fmt.Sprintf("%s  %s  %s",
			shortUUID(cp.MutatingUUID), cp.Operation, humanize.Time(cp.Timestamp))
		if cp.Prompt != "" {
			line += "  " + firstLine(cp.Prompt)
		}
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+line) + "\n"
		} else {
			s += pickerItemStyle.Render(line) + "\n"
		}
	}
	s += "\n" + timestampStyle.Render("↑/↓ move · enter restore · q cancel") + "\n"
	return s
}

// pickCheckpoint runs the interactive picker over a file's checkpoints.
// A nil result without error means the user cancelled.
func pickCheckpoint(cps []models.Checkpoint) (*models.Checkpoint, error) {
	// Newest first for display
	ordered := make([]models.Checkpoint, len(cps))
	for i, cp := range cps {
		ordered[len(cps)-1-i] = cp
	}

	final, err := tea.NewProgram(pickerModel{checkpoints: ordered}).Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}
	return final.(pickerModel).choice, nil
}
