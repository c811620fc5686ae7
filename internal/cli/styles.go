package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hourlog/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Underline(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cellStyle = lipgloss.NewStyle().PaddingRight(2)
)

var statusColors = map[service.WeeklyStatus]lipgloss.Color{
	service.StatusMissing:     lipgloss.Color("196"),
	service.StatusUnderTarget: lipgloss.Color("214"),
	service.StatusZeroReason:  lipgloss.Color("111"),
	service.StatusMet:         lipgloss.Color("42"),
}

func statusLabel(status service.WeeklyStatus) string {
	color, ok := statusColors[status]
	if !ok {
		return string(status)
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(status))
}

// table 按列宽对齐渲染，首行为表头
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(header, widths, headerStyle))
	for _, row := range rows {
		lines = append(lines, renderRow(row, widths, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, 0, len(cells))
	for i, cell := range cells {
		parts = append(parts, cellStyle.Width(widths[i]+2).Render(style.Render(cell)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
