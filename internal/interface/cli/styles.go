package cli

import "github.com/charmbracelet/lipgloss"

// Shared output styles
var (
	pathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	uuidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan"))

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red"))

	hunkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan"))

	modifiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow")).
			Bold(true)

	cleanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))
)

// colorizeDiff applies styles to unified diff lines
func colorizeDiff(diff string) string {
	out := ""
	start := 0
	for i := 0; i <= len(diff); i++ {
		if i == len(diff) || diff[i] == '\n' {
			line := diff[start:i]
			switch {
			case len(line) >= 2 && line[:2] == "@@":
				out += hunkStyle.Render(line)
			case len(line) >= 3 && (line[:3] == "+++" || line[:3] == "---"):
				out += pathStyle.Render(line)
			case len(line) >= 1 && line[0] == '+':
				out += addedStyle.Render(line)
			case len(line) >= 1 && line[0] == '-':
				out += removedStyle.Render(line)
			default:
				out += line
			}
			if i < len(diff) {
				out += "\n"
			}
			start = i + 1
		}
	}
	return out
}
