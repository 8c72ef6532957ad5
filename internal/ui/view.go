package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"dirscope/internal/domain"
)

type uiStyles struct {
	headerStyle  lipgloss.Style
	mutedStyle   lipgloss.Style
	statusStyle  lipgloss.Style
	warnStyle    lipgloss.Style
	cursorStyle  lipgloss.Style
	dirStyle     lipgloss.Style
	virtualStyle lipgloss.Style
	barStyle     lipgloss.Style
}

func defaultStyles() uiStyles {
	return uiStyles{
		headerStyle:  lipgloss.NewStyle().Bold(true),
		mutedStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statusStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true),
		warnStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		cursorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		dirStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		virtualStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		barStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
	}
}

const barWidth = 20

func (model Model) View() string {
	styles := defaultStyles()
	if model.showHelp {
		return renderHelpView(model, styles)
	}

	lines := []string{
		renderHeader(model, styles),
		renderSpaceLine(model, styles),
	}
	lines = append(lines, renderList(model, styles)...)
	lines = append(lines, renderFooter(model, styles)...)
	return strings.Join(lines, "\n")
}

func renderHeader(model Model, styles uiStyles) string {
	if model.root == "" {
		return styles.headerStyle.Render("dirscope")
	}
	total := humanize.Bytes(uint64(model.node.SizeBytes))
	header := fmt.Sprintf("%s  %s  (%s files, %s dirs)",
		model.focus, total,
		humanize.Comma(model.node.FileCount),
		humanize.Comma(model.node.DirCount))
	return styles.headerStyle.Render(trimLine(header, model.width))
}

func renderSpaceLine(model Model, styles uiStyles) string {
	if model.space.Total == 0 {
		return styles.mutedStyle.Render("")
	}
	line := fmt.Sprintf("volume: %s used of %s, %s free",
		humanize.Bytes(model.space.Used),
		humanize.Bytes(model.space.Total),
		humanize.Bytes(model.space.Available))
	return styles.mutedStyle.Render(trimLine(line, model.width))
}

func renderList(model Model, styles uiStyles) []string {
	height := model.listHeight()
	lines := make([]string, 0, height)

	if model.root == "" {
		for len(lines) < height {
			lines = append(lines, "")
		}
		return lines
	}

	children := model.node.Children
	for i := model.viewTop; i < len(children) && len(lines) < height; i++ {
		lines = append(lines, renderRow(model, styles, children[i], i == model.cursor))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func renderRow(model Model, styles uiStyles, child domain.TreeNode, selected bool) string {
	cursor := "  "
	if selected {
		cursor = styles.cursorStyle.Render("> ")
	}

	bar := sizeBar(child.PercentOfParent)
	size := fmt.Sprintf("%9s", humanize.Bytes(uint64(child.SizeBytes)))
	percent := fmt.Sprintf("%5.1f%%", child.PercentOfParent)

	name := child.Name
	nameStyle := lipgloss.NewStyle()
	switch {
	case child.VirtualDir:
		nameStyle = styles.virtualStyle
	case child.IsDir:
		name += "/"
		nameStyle = styles.dirStyle
	}
	if selected {
		nameStyle = styles.cursorStyle
	}

	row := fmt.Sprintf("%s%s %s %s  %s", cursor, size, percent, styles.barStyle.Render(bar), nameStyle.Render(name))
	return trimLine(row, model.width)
}

func sizeBar(percent float64) string {
	filled := int(percent / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func renderFooter(model Model, styles uiStyles) []string {
	status := model.status
	if model.scanning {
		status = fmt.Sprintf("%s %s  %s entries, %s",
			model.spin.View(), status,
			humanize.Comma(model.entries),
			humanize.Bytes(uint64(model.bytes)))
	}
	statusStyle := styles.statusStyle
	if strings.Contains(strings.ToLower(model.status), "error") {
		statusStyle = styles.warnStyle
	}

	keys := "↑/↓ move  enter open  backspace parent  g root  r rescan  ? help  q quit"
	return []string{
		statusStyle.Render(trimLine(status, model.width)),
		styles.mutedStyle.Render(trimLine(keys, model.width)),
	}
}

func renderHelpView(model Model, styles uiStyles) string {
	rows := []struct{ keys, desc string }{
		{"↑/k, ↓/j", "move the cursor"},
		{"enter, →/l", "open the selected directory"},
		{"backspace, ←/h", "go to the parent directory"},
		{"g", "jump back to the scan root"},
		{"s, r", "rescan"},
		{"?", "close this help"},
		{"q, ctrl+c", "quit"},
	}

	lines := []string{styles.headerStyle.Render("dirscope keys"), ""}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("  %-18s %s", row.keys, styles.mutedStyle.Render(row.desc)))
	}
	return strings.Join(lines, "\n")
}

func trimLine(line string, width int) string {
	if width <= 0 || lipgloss.Width(line) <= width {
		return line
	}
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}
	return string(runes[:width-1]) + "…"
}
