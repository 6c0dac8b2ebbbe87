// Package board implements the Kanban board reconciliation engine: a
// three-column view of a ticket collection that stays locally
// consistent through drag-and-drop moves while the backend update is
// in flight, and recovers cleanly when that update fails.
package board

import (
	"context"
	"sync"

	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// Columns holds the ordered ticket lists of the three board columns.
type Columns map[models.TicketStatus][]models.Ticket

// ColumnTitle returns the display title for a board column.
func ColumnTitle(status models.TicketStatus) string {
	switch status {
	case models.StatusTodo:
		return "To Do"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusDone:
		return "Done"
	}
	return string(status)
}

// OrganizeColumns partitions tickets into the three board columns,
// preserving the relative order of the source collection. The result
// always contains all three columns, empty or not.
//
// Callers must recompute the whole partition whenever the source
// collection changes; merging incrementally drifts from stale partial
// updates.
func OrganizeColumns(tickets []models.Ticket) Columns {
	columns := Columns{
		models.StatusTodo:       {},
		models.StatusInProgress: {},
		models.StatusDone:       {},
	}
	for _, ticket := range tickets {
		columns[ticket.Status] = append(columns[ticket.Status], ticket)
	}
	return columns
}

// Position identifies a slot on the board: a column and an index
// within the column's ordered list.
type Position struct {
	Column models.TicketStatus
	Index  int
}

// Move describes a completed drop for surfacing to the user.
type Move struct {
	// Ticket is the ticket that moved.
	Ticket models.Ticket

	// From and To are the source and destination positions.
	From Position
	To   Position

	// ColumnTitle is the display title of the destination column,
	// for the success notification.
	ColumnTitle string

	// Persisted is true when the move changed the ticket's status
	// on the backend. In-column reordering is local-only; the
	// backend has no concept of intra-column order.
	Persisted bool
}

// StatusUpdater persists a ticket's column change. Implemented by the
// API client and by the ticket store.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, ticketID string, status models.TicketStatus) error
}

// Engine owns the board's column state and applies drops with
// optimistic local mutation and rollback on backend failure.
type Engine struct {
	mu      sync.Mutex
	columns Columns
	updater StatusUpdater
}

// NewEngine creates an engine with empty columns.
func NewEngine(updater StatusUpdater) *Engine {
	return &Engine{
		columns: OrganizeColumns(nil),
		updater: updater,
	}
}

// Load replaces the board state with a fresh partition of tickets.
func (e *Engine) Load(tickets []models.Ticket) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.columns = OrganizeColumns(tickets)
}

// Columns returns a copy of the current column state. The returned
// slices are fresh; mutating them does not affect the board.
func (e *Engine) Columns() Columns {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotAll()
}

func (e *Engine) snapshotAll() Columns {
	copied := make(Columns, len(e.columns))
	for status, tickets := range e.columns {
		copied[status] = append([]models.Ticket(nil), tickets...)
	}
	return copied
}

// Drop moves the ticket at src to dest. A nil dest (dropped outside
// any column) and a dest identical to src are no-ops, as is a src
// index that no longer resolves to a ticket; all three return
// (nil, nil) without touching state or issuing a network call.
//
// The column mutation is applied optimistically before the backend
// call. The pre-mutation state of the two affected columns is captured
// per operation; on backend failure exactly those columns are restored
// from that snapshot, so overlapping drops each roll back relative to
// their own starting point.
func (e *Engine) Drop(ctx context.Context, src Position, dest *Position) (*Move, error) {
	if dest == nil {
		return nil, nil
	}
	if src.Column == dest.Column && src.Index == dest.Index {
		return nil, nil
	}

	e.mu.Lock()

	sourceTickets := e.columns[src.Column]
	if src.Index < 0 || src.Index >= len(sourceTickets) {
		// Concurrent mutation removed the ticket out from under
		// the drag; abort quietly.
		e.mu.Unlock()
		return nil, nil
	}
	ticket := sourceTickets[src.Index]

	// Per-operation snapshot of the affected columns, captured at
	// the moment the drag lands.
	snapshotSource := append([]models.Ticket(nil), e.columns[src.Column]...)
	snapshotDest := append([]models.Ticket(nil), e.columns[dest.Column]...)

	e.applySplice(src, *dest)
	crossColumn := src.Column != dest.Column

	e.mu.Unlock()

	move := &Move{
		Ticket:      ticket,
		From:        src,
		To:          *dest,
		ColumnTitle: ColumnTitle(dest.Column),
		Persisted:   crossColumn,
	}

	if !crossColumn {
		// Pure in-column reordering is not persisted.
		return move, nil
	}

	if err := e.updater.UpdateStatus(ctx, ticket.ID, dest.Column); err != nil {
		logging.Warn("board move rejected by backend, rolling back",
			"ticket", ticket.TicketKey,
			"from", src.Column,
			"to", dest.Column,
			"error", err)

		e.mu.Lock()
		e.columns[src.Column] = snapshotSource
		e.columns[dest.Column] = snapshotDest
		e.mu.Unlock()
		return nil, err
	}

	logging.Debug("board move confirmed",
		"ticket", ticket.TicketKey,
		"to", dest.Column)
	return move, nil
}

// applySplice removes the ticket at src and inserts it at dest,
// reusing one list for in-column moves. Caller holds the lock.
func (e *Engine) applySplice(src, dest Position) {
	sourceTickets := append([]models.Ticket(nil), e.columns[src.Column]...)
	removed := sourceTickets[src.Index]
	sourceTickets = append(sourceTickets[:src.Index], sourceTickets[src.Index+1:]...)

	destTickets := sourceTickets
	if src.Column != dest.Column {
		destTickets = append([]models.Ticket(nil), e.columns[dest.Column]...)
	}

	index := dest.Index
	if index < 0 {
		index = 0
	}
	if index > len(destTickets) {
		index = len(destTickets)
	}
	destTickets = append(destTickets[:index], append([]models.Ticket{removed}, destTickets[index:]...)...)

	if src.Column == dest.Column {
		e.columns[src.Column] = destTickets
		return
	}
	e.columns[src.Column] = sourceTickets
	e.columns[dest.Column] = destTickets
}
