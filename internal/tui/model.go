// Package tui implements the interactive extraction browser.
package tui

import (
	"context"

	"github.com/Veraticus/zentrum/internal/cli"
	"github.com/Veraticus/zentrum/internal/controller"
	"github.com/Veraticus/zentrum/internal/model"
	"github.com/Veraticus/zentrum/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Rows reserved for the header and footer around the detail viewport.
const chromeHeight = 4

// Model holds the main TUI state. The list view is always alive; a detail
// controller exists only while an extraction is open.
type Model struct {
	ctx           context.Context
	theme         themes.Theme
	list          *controller.ListController
	detail        *controller.DetailController
	keymap        KeyMap
	help          help.Model
	spinner       spinner.Model
	viewport      viewport.Model
	pendingDelete string
	config        Config
	cursor        int
	width         int
	height        int
	quitting      bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(cfg.Theme.StatusPending),
	)

	m := Model{
		ctx:      ctx,
		config:   cfg,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		list:     controller.NewListController(cfg.Client, cfg.Logger),
		help:     help.New(),
		spinner:  s,
		viewport: viewport.New(cfg.Width, max(cfg.Height-chromeHeight, 1)),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.help.Width = cfg.Width
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshList())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listUpdatedMsg:
		m.clampCursor()
		return m, nil

	case detailUpdatedMsg:
		if msg.detail != m.detail {
			return m, nil
		}
		m.syncViewport()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.close()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.detail != nil {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.pendingDelete != "" {
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			id := m.pendingDelete
			m.pendingDelete = ""
			return m, m.removeExtraction(id)
		case key.Matches(msg, m.keymap.Cancel):
			m.pendingDelete = ""
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.list.State().Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.refreshList()
	case key.Matches(msg, m.keymap.Open):
		if item, ok := m.selected(); ok {
			m.detail = controller.NewDetailController(m.config.Client, m.config.Logger)
			m.viewport.SetContent("")
			m.viewport.GotoTop()
			return m, m.loadDetail(m.detail, item.ID)
		}
	case key.Matches(msg, m.keymap.Delete):
		if item, ok := m.selected(); ok {
			m.pendingDelete = item.ID
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Back):
		m.detail.Close()
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keymap.Verify):
		return m, m.verifyDetail(m.detail)
	case key.Matches(msg, m.keymap.Refresh):
		if id := m.detail.State().ID; id != "" {
			return m, m.loadDetail(m.detail, id)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleResize() {
	m.help.Width = m.width
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chromeHeight, 1)
}

func (m *Model) syncViewport() {
	if m.detail == nil {
		return
	}
	m.viewport.SetContent(cli.RenderDetail(m.detail.State().Data))
}

func (m *Model) clampCursor() {
	n := len(m.list.State().Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (model.ExtractionSummary, bool) {
	items := m.list.State().Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.ExtractionSummary{}, false
	}
	return items[m.cursor], true
}

// close disposes of both controllers so late completions are dropped.
func (m Model) close() {
	if m.detail != nil {
		m.detail.Close()
	}
	m.list.Close()
}
