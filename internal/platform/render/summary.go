// Package render formats run results for the terminal.
package render

import (
	"fmt"
	"mailroom-simulator/internal/domain"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Summary renders a run report as a bordered key/value block.
func Summary(r *domain.RunReport) string {
	status := okStyle.Render("complete")
	if r.FailureKind != "" {
		status = failStyle.Render("failed: " + r.FailureKind)
	}

	rows := [][2]string{
		{"Run", r.RunID},
		{"Seed", fmt.Sprintf("%d", r.Seed)},
		{"Robots", strings.Join(r.Robots, " ")},
		{"Ticks", fmt.Sprintf("%d", r.Ticks)},
		{"Delivered", fmt.Sprintf("%d/%d", r.Delivered, r.Generated)},
		{"Score", fmt.Sprintf("%.2f", r.TotalScore)},
		{"Status", status},
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render("Automail run"))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), row[1]))
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
