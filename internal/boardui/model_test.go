package boardui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugtrackhq/bugtrack/internal/board"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

type recordingUpdater struct {
	calls []string
	err   error
}

func (r *recordingUpdater) UpdateStatus(ctx context.Context, ticketID string, status models.TicketStatus) error {
	r.calls = append(r.calls, ticketID+":"+string(status))
	return r.err
}

func boardTickets() []models.Ticket {
	return []models.Ticket{
		{ID: "1", TicketKey: "BUG-1", Title: "login fails", Status: models.StatusTodo},
		{ID: "2", TicketKey: "BUG-2", Title: "slow dashboard", Status: models.StatusTodo},
		{ID: "3", TicketKey: "BUG-3", Title: "dark mode", Status: models.StatusInProgress},
	}
}

func newTestModel(updater board.StatusUpdater) Model {
	engine := board.NewEngine(updater)
	engine.Load(boardTickets())
	return NewModel(engine, func(ctx context.Context) ([]models.Ticket, error) {
		return boardTickets(), nil
	})
}

func press(t *testing.T, model Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := model.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNavigationStaysInBounds(t *testing.T) {
	model := newTestModel(&recordingUpdater{})

	model, _ = press(t, model, runeKey('h'))
	assert.Equal(t, 0, model.column)

	model, _ = press(t, model, runeKey('l'))
	model, _ = press(t, model, runeKey('l'))
	model, _ = press(t, model, runeKey('l'))
	assert.Equal(t, 2, model.column)

	model, _ = press(t, model, runeKey('k'))
	assert.Equal(t, 0, model.row)

	// The done column is empty, so the cursor cannot move down.
	model, _ = press(t, model, runeKey('j'))
	assert.Equal(t, 0, model.row)
}

func TestCursorClampsWhenSwitchingToShorterColumn(t *testing.T) {
	model := newTestModel(&recordingUpdater{})

	model, _ = press(t, model, runeKey('j'))
	require.Equal(t, 1, model.row)

	model, _ = press(t, model, runeKey('l'))
	assert.Equal(t, 0, model.row)
}

func TestGrabAndDropMovesTicket(t *testing.T) {
	updater := &recordingUpdater{}
	model := newTestModel(updater)

	model, cmd := press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.NotNil(t, model.carry)
	assert.Equal(t, "BUG-1", model.carryKey)

	model, _ = press(t, model, runeKey('l'))
	model, cmd = press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Nil(t, model.carry)

	result, ok := cmd().(moveResultMsg)
	require.True(t, ok)
	require.NoError(t, result.err)
	require.NotNil(t, result.move)
	assert.True(t, result.move.Persisted)

	columns := model.engine.Columns()
	assert.Equal(t, []string{"2"}, ticketIDs(columns[models.StatusTodo]))
	assert.Equal(t, []string{"1", "3"}, ticketIDs(columns[models.StatusInProgress]))
	assert.Equal(t, []string{"1:in-progress"}, updater.calls)

	model, _ = press(t, model, result)
	assert.Contains(t, model.notice, "BUG-1 moved to In Progress")
	assert.False(t, model.noticeErr)
}

func TestFailedDropShowsErrorAfterRollback(t *testing.T) {
	updater := &recordingUpdater{err: errors.New("backend rejected")}
	model := newTestModel(updater)

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model, _ = press(t, model, runeKey('l'))
	model, cmd := press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	result := cmd().(moveResultMsg)
	require.Error(t, result.err)

	columns := model.engine.Columns()
	assert.Equal(t, []string{"1", "2"}, ticketIDs(columns[models.StatusTodo]))
	assert.Equal(t, []string{"3"}, ticketIDs(columns[models.StatusInProgress]))

	model, _ = press(t, model, result)
	assert.Contains(t, model.notice, "move failed")
	assert.True(t, model.noticeErr)
}

func TestEscCancelsCarry(t *testing.T) {
	updater := &recordingUpdater{}
	model := newTestModel(updater)

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, model.carry)

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, model.carry)
	assert.Empty(t, updater.calls)
}

func TestGrabOnEmptyColumnIsNoop(t *testing.T) {
	model := newTestModel(&recordingUpdater{})

	model, _ = press(t, model, runeKey('l'))
	model, _ = press(t, model, runeKey('l'))
	model, cmd := press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, model.carry)
}

func TestCarryAllowsCursorPastLastTicket(t *testing.T) {
	model := newTestModel(&recordingUpdater{})

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model, _ = press(t, model, runeKey('l'))

	// One ticket in progress, so the insertion point sits at row 1.
	model, _ = press(t, model, runeKey('j'))
	assert.Equal(t, 1, model.row)
	model, _ = press(t, model, runeKey('j'))
	assert.Equal(t, 1, model.row)
}

func TestRefreshReloadsBoard(t *testing.T) {
	engine := board.NewEngine(&recordingUpdater{})
	model := NewModel(engine, func(ctx context.Context) ([]models.Ticket, error) {
		return boardTickets(), nil
	})

	cmd := model.Init()
	require.NotNil(t, cmd)
	model, _ = press(t, model, cmd())

	columns := model.engine.Columns()
	assert.Len(t, columns[models.StatusTodo], 2)
	assert.Len(t, columns[models.StatusInProgress], 1)
}

func TestRefreshFailureKeepsBoard(t *testing.T) {
	engine := board.NewEngine(&recordingUpdater{})
	engine.Load(boardTickets())
	model := NewModel(engine, func(ctx context.Context) ([]models.Ticket, error) {
		return nil, errors.New("backend down")
	})

	model, _ = press(t, model, model.Init()())
	assert.Len(t, model.engine.Columns()[models.StatusTodo], 2)
	assert.Contains(t, model.notice, "refresh failed")
}

func TestViewShowsColumnsAndCounts(t *testing.T) {
	model := newTestModel(&recordingUpdater{})
	model, _ = press(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := model.View()
	assert.True(t, strings.Contains(view, "To Do (2)"))
	assert.True(t, strings.Contains(view, "In Progress (1)"))
	assert.True(t, strings.Contains(view, "Done (0)"))
	assert.True(t, strings.Contains(view, "BUG-1"))
}

func ticketIDs(tickets []models.Ticket) []string {
	ids := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.ID)
	}
	return ids
}
