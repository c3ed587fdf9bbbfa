package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/zentrum/internal/model"
	"github.com/Veraticus/zentrum/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

// deliver runs cmd synchronously and feeds its message back into the model.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated
}

func setupModel(t *testing.T, files ...string) (Model, *testutil.StubService) {
	t.Helper()
	svc := testutil.NewStubService(t)
	for _, f := range files {
		svc.Server.Seed(testutil.SampleExtraction(f))
	}

	cfg := defaultConfig()
	cfg.Client = svc.Client
	m := newModel(context.Background(), cfg)
	m = deliver(t, m, m.refreshList())
	return m, svc
}

func TestModel_ListsExtractions(t *testing.T) {
	m, _ := setupModel(t, "Plan-A.pdf", "Plan-B.pdf")

	items := m.list.State().Items
	require.Len(t, items, 2)
	assert.Equal(t, "Plan-A.pdf", items[0].SourceFileName)

	view := m.View()
	assert.Contains(t, view, "Plan-A.pdf")
	assert.Contains(t, view, "Plan-B.pdf")
}

func TestModel_EmptyList(t *testing.T) {
	m, _ := setupModel(t)
	assert.Contains(t, m.View(), "No extractions yet")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, m.detail)
}

func TestModel_RequestContext(t *testing.T) {
	tests := []struct {
		name         string
		timeout      time.Duration
		wantDeadline bool
	}{
		{name: "bounded", timeout: time.Minute, wantDeadline: true},
		{name: "zero leaves requests unbounded", timeout: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.RequestTimeout = tt.timeout
			m := newModel(context.Background(), cfg)

			ctx, cancel := m.requestContext()
			defer cancel()

			_, ok := ctx.Deadline()
			assert.Equal(t, tt.wantDeadline, ok)
			assert.NoError(t, ctx.Err())
		})
	}
}

func TestModel_CursorStaysInBounds(t *testing.T) {
	m, _ := setupModel(t, "a.pdf", "b.pdf")

	m, _ = press(t, m, runeKey('k'))
	assert.Equal(t, 0, m.cursor)

	m, _ = press(t, m, runeKey('j'))
	m, _ = press(t, m, runeKey('j'))
	assert.Equal(t, 1, m.cursor)
}

func TestModel_OpenVerifyAndBack(t *testing.T) {
	m, _ := setupModel(t, "a.pdf", "Plan.pdf")

	m, _ = press(t, m, runeKey('j'))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.detail)
	m = deliver(t, m, cmd)

	state := m.detail.State()
	require.NotNil(t, state.Data)
	assert.Equal(t, "Plan.pdf", state.Data.SourceFileName)
	assert.Equal(t, model.StatusUnverified, state.Data.Status())
	assert.Contains(t, m.View(), "Industriekaufmann/-frau")

	m, cmd = press(t, m, runeKey('v'))
	m = deliver(t, m, cmd)
	assert.Equal(t, model.StatusValid, m.detail.State().Data.Status())
	assert.Empty(t, m.detail.State().Error)

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Nil(t, m.detail)
	assert.Contains(t, m.View(), "Plan.pdf")
}

func TestModel_IgnoresResultsFromClosedDetail(t *testing.T) {
	m, _ := setupModel(t, "Plan.pdf")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	stale := m.detail
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	// The load finishes after the user went back.
	m = deliver(t, m, cmd)
	assert.Nil(t, m.detail)
	assert.Nil(t, stale.State().Data)
}

func TestModel_DetailLoadFailure(t *testing.T) {
	m, svc := setupModel(t, "Plan.pdf")
	id := m.list.State().Items[0].ID
	require.NoError(t, svc.Client.Delete(context.Background(), id))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(t, m, cmd)

	state := m.detail.State()
	assert.Nil(t, state.Data)
	assert.Contains(t, state.Error, "Extraction not found")
	assert.Contains(t, m.View(), "Extraction not found")
}

func TestModel_DeleteFlow(t *testing.T) {
	tests := []struct {
		name      string
		answer    tea.KeyMsg
		wantItems int
		wantCmd   bool
	}{
		{name: "confirmed", answer: runeKey('y'), wantItems: 1, wantCmd: true},
		{name: "declined", answer: runeKey('n'), wantItems: 2},
		{name: "escaped", answer: tea.KeyMsg{Type: tea.KeyEsc}, wantItems: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, svc := setupModel(t, "a.pdf", "b.pdf")

			m, cmd := press(t, m, runeKey('d'))
			assert.Nil(t, cmd)
			assert.NotEmpty(t, m.pendingDelete)
			assert.Contains(t, m.View(), "Delete a.pdf?")

			m, cmd = press(t, m, tt.answer)
			assert.Empty(t, m.pendingDelete)
			if tt.wantCmd {
				m = deliver(t, m, cmd)
			} else {
				assert.Nil(t, cmd)
			}

			assert.Len(t, m.list.State().Items, tt.wantItems)
			remote, err := svc.Client.List(context.Background())
			require.NoError(t, err)
			assert.Len(t, remote, tt.wantItems)
		})
	}
}

func TestModel_DeleteLastItemClampsCursor(t *testing.T) {
	m, _ := setupModel(t, "a.pdf", "b.pdf")

	m, _ = press(t, m, runeKey('j'))
	m, _ = press(t, m, runeKey('d'))
	m, cmd := press(t, m, runeKey('y'))
	m = deliver(t, m, cmd)

	assert.Equal(t, 0, m.cursor)
	item, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "a.pdf", item.SourceFileName)
}

func TestModel_Resize(t *testing.T) {
	m, _ := setupModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 40-chromeHeight, m.viewport.Height)
	assert.Equal(t, 120, m.help.Width)
}

func TestModel_Quit(t *testing.T) {
	m, _ := setupModel(t, "a.pdf")

	m, cmd := press(t, m, runeKey('q'))
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestRun_RequiresClient(t *testing.T) {
	err := Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client is required")
}
