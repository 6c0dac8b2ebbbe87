// Package boardui renders a project's tickets as a three-column kanban
// board and lets the user move tickets between columns with the
// keyboard. Moves go through the reconciliation engine, so the board
// updates immediately and snaps back if the backend rejects the change.
package boardui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bugtrackhq/bugtrack/internal/board"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// RefreshFunc loads the current ticket list for the board's project.
type RefreshFunc func(ctx context.Context) ([]models.Ticket, error)

// noticeFadeDelay is how long a status bar notice stays visible.
const noticeFadeDelay = 3 * time.Second

// refreshMsg carries the result of a board refresh.
type refreshMsg struct {
	tickets []models.Ticket
	err     error
}

// moveResultMsg carries the outcome of a drop. When err is non-nil the
// engine has already restored the affected columns.
type moveResultMsg struct {
	move *board.Move
	err  error
}

// noticeFadeMsg clears the status bar notice.
type noticeFadeMsg struct{}

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	carryColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("212"))
	columnTitleStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle      = lipgloss.NewStyle().Reverse(true)
	carryStyle       = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the bubbletea model for the interactive board.
type Model struct {
	engine  *board.Engine
	refresh RefreshFunc
	keys    KeyMap

	column   int // index into models.Statuses
	row      int
	carry    *board.Position // set while a ticket is picked up
	carryKey string          // ticket key shown in the status bar

	width  int
	height int

	notice    string
	noticeErr bool
}

// NewModel creates a board model over the engine. The refresh function
// is called on startup and whenever the user asks for a reload.
func NewModel(engine *board.Engine, refresh RefreshFunc) Model {
	return Model{
		engine:  engine,
		refresh: refresh,
		keys:    DefaultKeyMap,
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return model.refreshCmd()
}

func (model Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		tickets, err := model.refresh(context.Background())
		return refreshMsg{tickets: tickets, err: err}
	}
}

// dropCmd performs the move through the engine off the UI goroutine.
// The optimistic splice happens inside Drop before the network call,
// so the next render already shows the ticket in its new column.
func dropCmd(engine *board.Engine, src, dest board.Position) tea.Cmd {
	return func() tea.Msg {
		move, err := engine.Drop(context.Background(), src, &dest)
		return moveResultMsg{move: move, err: err}
	}
}

func noticeFadeCmd() tea.Cmd {
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height

	case refreshMsg:
		if message.err != nil {
			model.setNotice(fmt.Sprintf("refresh failed: %v", message.err), true)
			return model, noticeFadeCmd()
		}
		model.engine.Load(message.tickets)
		model.carry = nil
		model.carryKey = ""
		model.clampCursor()

	case moveResultMsg:
		model.clampCursor()
		if message.err != nil {
			model.setNotice(fmt.Sprintf("move failed: %v", message.err), true)
			return model, noticeFadeCmd()
		}
		if message.move != nil && message.move.Persisted {
			model.setNotice(fmt.Sprintf("%s moved to %s",
				message.move.Ticket.TicketKey, message.move.ColumnTitle), false)
			return model, noticeFadeCmd()
		}

	case noticeFadeMsg:
		model.notice = ""

	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.Refresh):
			return model, model.refreshCmd()

		case key.Matches(message, model.keys.Left):
			if model.column > 0 {
				model.column--
				model.clampCursor()
			}

		case key.Matches(message, model.keys.Right):
			if model.column < len(models.Statuses)-1 {
				model.column++
				model.clampCursor()
			}

		case key.Matches(message, model.keys.Up):
			if model.row > 0 {
				model.row--
			}

		case key.Matches(message, model.keys.Down):
			if model.row < model.maxRow() {
				model.row++
			}

		case key.Matches(message, model.keys.Grab):
			return model.handleGrab()

		case key.Matches(message, model.keys.Cancel):
			model.carry = nil
			model.carryKey = ""
		}
	}
	return model, nil
}

// handleGrab picks up the ticket under the cursor, or drops the
// carried one at the cursor position.
func (model Model) handleGrab() (tea.Model, tea.Cmd) {
	if model.carry == nil {
		ticket, ok := model.ticketAt(model.cursorPosition())
		if !ok {
			return model, nil
		}
		src := model.cursorPosition()
		model.carry = &src
		model.carryKey = ticket.TicketKey
		return model, nil
	}

	src := *model.carry
	dest := model.cursorPosition()
	model.carry = nil
	model.carryKey = ""
	return model, dropCmd(model.engine, src, dest)
}

func (model Model) cursorPosition() board.Position {
	return board.Position{Column: models.Statuses[model.column], Index: model.row}
}

func (model Model) ticketAt(position board.Position) (models.Ticket, bool) {
	tickets := model.engine.Columns()[position.Column]
	if position.Index < 0 || position.Index >= len(tickets) {
		return models.Ticket{}, false
	}
	return tickets[position.Index], true
}

// maxRow is the largest cursor row in the current column. While
// carrying, the cursor may sit one past the last ticket so a drop can
// land at the end of the column.
func (model Model) maxRow() int {
	length := len(model.engine.Columns()[models.Statuses[model.column]])
	if model.carry != nil {
		return length
	}
	if length == 0 {
		return 0
	}
	return length - 1
}

func (model *Model) clampCursor() {
	if max := model.maxRow(); model.row > max {
		model.row = max
	}
	if model.row < 0 {
		model.row = 0
	}
}

func (model *Model) setNotice(text string, isError bool) {
	model.notice = text
	model.noticeErr = isError
}

// View implements tea.Model.
func (model Model) View() string {
	columns := model.engine.Columns()

	columnWidth := 28
	if model.width > 0 {
		if w := model.width/len(models.Statuses) - 4; w > 16 {
			columnWidth = w
		}
	}

	rendered := make([]string, 0, len(models.Statuses))
	for i, status := range models.Statuses {
		rendered = append(rendered, model.renderColumn(i, status, columns[status], columnWidth))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")
	b.WriteString(model.statusBar())
	return b.String()
}

func (model Model) renderColumn(index int, status models.TicketStatus, tickets []models.Ticket, width int) string {
	var lines []string
	lines = append(lines, columnTitleStyle.Render(
		fmt.Sprintf("%s (%d)", board.ColumnTitle(status), len(tickets))))

	for row, ticket := range tickets {
		line := truncate(fmt.Sprintf("%s %s", ticket.TicketKey, ticket.Title), width)
		switch {
		case model.carry != nil && model.carry.Column == status && model.carry.Index == row:
			line = carryStyle.Render(line)
		case index == model.column && row == model.row:
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(tickets) == 0 {
		lines = append(lines, helpStyle.Render("(empty)"))
	}
	// Insertion point past the last ticket, only reachable while
	// carrying.
	if index == model.column && model.row == len(tickets) && model.carry != nil {
		lines = append(lines, cursorStyle.Render(strings.Repeat("·", 3)))
	}

	style := columnStyle
	if model.carry != nil && index == model.column {
		style = carryColumnStyle
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (model Model) statusBar() string {
	if model.notice != "" {
		if model.noticeErr {
			return errorStyle.Render(model.notice)
		}
		return noticeStyle.Render(model.notice)
	}
	if model.carry != nil {
		return carryStyle.Render(fmt.Sprintf("moving %s", model.carryKey)) +
			helpStyle.Render("  Enter drop · Esc cancel")
	}
	return helpStyle.Render("h/l column · j/k row · Enter grab/drop · r refresh · q quit")
}

func truncate(text string, width int) string {
	if width <= 1 || len(text) <= width {
		return text
	}
	return text[:width-1] + "…"
}
