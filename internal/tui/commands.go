package tui

import (
	"context"

	"github.com/Veraticus/zentrum/internal/controller"
	tea "github.com/charmbracelet/bubbletea"
)

// requestContext bounds a single request made on behalf of the user. A zero
// RequestTimeout leaves the request unbounded.
func (m Model) requestContext() (context.Context, context.CancelFunc) {
	parent := m.ctx
	if parent == nil {
		parent = context.Background()
	}
	if m.config.RequestTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, m.config.RequestTimeout)
}

// refreshList reloads the extraction list.
func (m Model) refreshList() tea.Cmd {
	list := m.list
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		return listUpdatedMsg{err: list.Refresh(ctx)}
	}
}

// removeExtraction deletes id and drops it from the list once confirmed.
func (m Model) removeExtraction(id string) tea.Cmd {
	list := m.list
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		return listUpdatedMsg{err: list.Remove(ctx, id)}
	}
}

// loadDetail fetches id through detail.
func (m Model) loadDetail(detail *controller.DetailController, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		return detailUpdatedMsg{detail: detail, err: detail.Load(ctx, id)}
	}
}

// verifyDetail re-runs verification for the extraction shown by detail.
func (m Model) verifyDetail(detail *controller.DetailController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()

		return detailUpdatedMsg{detail: detail, err: detail.Verify(ctx)}
	}
}
