package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

const nameWidth = 40

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	if m.detail != nil {
		body = m.detailView()
	} else {
		body = m.listView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, "", m.help.View(m.keymap))
}

func (m Model) listView() string {
	state := m.list.State()

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(cli.DocIcon + " Extractions"))
	b.WriteString("\n")

	if state.Loading {
		b.WriteString(m.spinner.View() + m.theme.StatusPending.Render(" Loading extractions..."))
		b.WriteString("\n")
	}
	if state.Error != "" {
		b.WriteString(m.theme.StatusError.Render(cli.ErrorIcon + " " + state.Error))
		b.WriteString("\n")
	}

	if len(state.Items) == 0 && !state.Loading {
		b.WriteString(m.theme.Subtitle.Render("No extractions yet. Upload a PDF with: zentrum upload <file.pdf>"))
		b.WriteString("\n")
	}

	for i, item := range state.Items {
		line := fmt.Sprintf("%-*s  %s  %3d Berufe",
			nameWidth, truncate(item.SourceFileName, nameWidth),
			item.ExtractedAt.Local().Format(cli.TimestampLayout),
			item.BerufeCount)
		if i == m.cursor {
			b.WriteString(m.theme.Selected.Render("> " + line))
		} else {
			b.WriteString(m.theme.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if m.pendingDelete != "" {
		name := m.pendingDelete
		if item, ok := m.selected(); ok && item.ID == m.pendingDelete {
			name = item.SourceFileName
		}
		b.WriteString("\n")
		b.WriteString(m.theme.StatusWarning.Render(fmt.Sprintf("Delete %s? [y/N]", name)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) detailView() string {
	state := m.detail.State()

	var b strings.Builder
	switch {
	case state.Loading:
		b.WriteString(m.spinner.View() + m.theme.StatusPending.Render(" Loading extraction..."))
	case state.Verifying:
		b.WriteString(m.spinner.View() + m.theme.StatusPending.Render(" Verifying..."))
	default:
		b.WriteString(m.theme.Subtitle.Render("Extraction " + state.ID))
	}
	b.WriteString("\n")

	if state.Error != "" {
		b.WriteString(m.theme.StatusError.Render(cli.ErrorIcon + " " + state.Error))
		b.WriteString("\n")
	}

	if state.Data != nil {
		b.WriteString(m.viewport.View())
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
