package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Elock-exe/satchel/internal/item"
	"github.com/Elock-exe/satchel/internal/mediator"
)

// gridColumns matches the classic chest layout.
const gridColumns = 9

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cellStyle     = lipgloss.NewStyle().Width(6).Align(lipgloss.Center)
	cursorStyle   = cellStyle.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63"))
	reservedStyle = cellStyle.Foreground(lipgloss.Color("240"))
	dragStyle     = cellStyle.Foreground(lipgloss.Color("212"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	heldStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func (a *App) View() string {
	var b strings.Builder

	if sess, err := a.registry.Get(a.user); err == nil {
		b.WriteString(titleStyle.Render(sess.Title()))
		b.WriteString("\n")
		b.WriteString(paneStyle.Render(a.renderGrid(sess.Grid, sess.Tier.GridSize)))
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("inventory"))
	b.WriteString("\n")
	b.WriteString(paneStyle.Render(a.renderInventory()))
	b.WriteString("\n")

	if !a.held.IsEmpty() {
		b.WriteString(heldStyle.Render("holding: " + label(a.held)))
		b.WriteString("\n")
	}

	if a.commandOpen {
		b.WriteString(":" + a.commandInput + "▌")
		b.WriteString("\n")
	} else if a.status != "" {
		b.WriteString(statusStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(a.footer()))
	return b.String()
}

func (a *App) renderGrid(grid []item.Stack, size int) string {
	sess, err := a.registry.Get(a.user)
	if err != nil {
		return ""
	}
	var rows []string
	for row := 0; row*gridColumns < size; row++ {
		var cells []string
		for col := 0; col < gridColumns; col++ {
			slot := row*gridColumns + col
			if slot >= size {
				break
			}
			text := label(grid[slot])
			style := cellStyle
			switch {
			case a.pane == mediator.ZoneGrid && slot == a.cursor:
				style = cursorStyle
			case a.dragging && a.inDrag(slot):
				style = dragStyle
			case sess.Tier.IsReservedSlot(slot):
				style = reservedStyle
			}
			cells = append(cells, style.Render(text))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (a *App) renderInventory() string {
	var rows []string
	for row := 0; row*gridColumns < len(a.inventory); row++ {
		var cells []string
		for col := 0; col < gridColumns; col++ {
			slot := row*gridColumns + col
			if slot >= len(a.inventory) {
				break
			}
			style := cellStyle
			if a.pane == mediator.ZoneInventory && slot == a.cursor {
				style = cursorStyle
			}
			cells = append(cells, style.Render(label(a.inventory[slot])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (a *App) inDrag(slot int) bool {
	for _, r := range a.dragSlots {
		if r == slot {
			return true
		}
	}
	return false
}

func (a *App) footer() string {
	var parts []string
	for _, binding := range a.keys.ShortHelp() {
		parts = append(parts, binding.Help().Key+" "+binding.Help().Desc)
	}
	return strings.Join(parts, "  ")
}

// label renders a stack into a fixed-width cell text.
func label(s item.Stack) string {
	switch s.ID {
	case "":
		return "·"
	case "ui:filler":
		return "░░░"
	case "ui:nav":
		return "⇄"
	}
	name := s.ID
	if len(name) > 3 {
		name = name[:3]
	}
	if s.Count > 1 {
		return fmt.Sprintf("%s×%d", name, s.Count)
	}
	return name
}
