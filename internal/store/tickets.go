package store

import (
	"context"
	"sync"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// TicketAPI is the slice of the backend client the ticket cache needs.
// Satisfied by *api.Client.
type TicketAPI interface {
	ListTickets(ctx context.Context, projectID string) ([]models.Ticket, error)
	CreateTicket(ctx context.Context, projectID string, input api.TicketInput) (*models.Ticket, error)
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, id string, update api.TicketUpdate) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	TicketStats(ctx context.Context, projectID string) (*models.TicketStats, error)
	ListActivity(ctx context.Context, ticketID string) ([]models.Activity, error)
}

// TicketStore caches the tickets of the selected project. Plain CRUD
// paths update the cache only from the backend's response; the
// optimistic mutate-then-confirm path for board moves lives in the
// board package, which drives this store through UpdateStatus.
type TicketStore struct {
	mu      sync.Mutex
	client  TicketAPI
	entries []models.Ticket
	current *models.Ticket
}

// NewTicketStore creates an empty ticket cache over the client.
func NewTicketStore(client TicketAPI) *TicketStore {
	return &TicketStore{client: client}
}

// Fetch replaces the cached collection with the project's tickets.
func (t *TicketStore) Fetch(ctx context.Context, projectID string) error {
	tickets, err := t.client.ListTickets(ctx, projectID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.entries = tickets
	t.mu.Unlock()
	return nil
}

// Get fetches a single ticket and makes it current.
func (t *TicketStore) Get(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := t.client.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.current = ticket
	t.mu.Unlock()
	return ticket, nil
}

// Create files a ticket and prepends the backend's copy.
func (t *TicketStore) Create(ctx context.Context, projectID string, input api.TicketInput) (*models.Ticket, error) {
	ticket, err := t.client.CreateTicket(ctx, projectID, input)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.entries = append([]models.Ticket{*ticket}, t.entries...)
	t.mu.Unlock()
	return ticket, nil
}

// Update applies a partial update and replaces the cached entry (and
// the current ticket if it is the one updated).
func (t *TicketStore) Update(ctx context.Context, id string, update api.TicketUpdate) (*models.Ticket, error) {
	ticket, err := t.client.UpdateTicket(ctx, id, update)
	if err != nil {
		return nil, err
	}
	t.replace(*ticket)
	return ticket, nil
}

// UpdateStatus persists a board move: a partial update carrying only
// the new status. It implements the board engine's StatusUpdater.
func (t *TicketStore) UpdateStatus(ctx context.Context, ticketID string, status models.TicketStatus) error {
	_, err := t.Update(ctx, ticketID, api.TicketUpdate{Status: &status})
	return err
}

// Delete removes a ticket from the backend and the cache.
func (t *TicketStore) Delete(ctx context.Context, id string) error {
	if err := t.client.DeleteTicket(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.entries[:0]
	for _, ticket := range t.entries {
		if ticket.ID != id {
			kept = append(kept, ticket)
		}
	}
	t.entries = kept
	if t.current != nil && t.current.ID == id {
		t.current = nil
	}
	return nil
}

// Duplicate files a copy of an existing ticket in the same project.
// The copy's title is prefixed with "[COPY] " and carries over the
// description, type, priority and tags; status, assignee and comments
// start fresh.
func (t *TicketStore) Duplicate(ctx context.Context, id string) (*models.Ticket, error) {
	original, err := t.client.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Create(ctx, original.ProjectID, api.TicketInput{
		Title:       "[COPY] " + original.Title,
		Description: original.Description,
		Type:        original.Type,
		Priority:    original.Priority,
		Tags:        original.Tags,
	})
}

// Activity fetches a ticket's audit trail.
func (t *TicketStore) Activity(ctx context.Context, ticketID string) ([]models.Activity, error) {
	return t.client.ListActivity(ctx, ticketID)
}

// Stats fetches the project's status/priority breakdown.
func (t *TicketStore) Stats(ctx context.Context, projectID string) (*models.TicketStats, error) {
	return t.client.TicketStats(ctx, projectID)
}

// BulkUpdateStatus moves several tickets to one status. Each success
// is applied to the cache immediately; ids whose update failed are
// returned so the user can retry them.
func (t *TicketStore) BulkUpdateStatus(ctx context.Context, ids []string, status models.TicketStatus) []string {
	var failed []string
	for _, id := range ids {
		if err := t.UpdateStatus(ctx, id, status); err != nil {
			logging.Warn("bulk status update failed for ticket",
				"ticket_id", id,
				"error", err)
			failed = append(failed, id)
		}
	}
	return failed
}

// BulkDelete removes several tickets, returning the ids that failed.
func (t *TicketStore) BulkDelete(ctx context.Context, ids []string) []string {
	var failed []string
	for _, id := range ids {
		if err := t.Delete(ctx, id); err != nil {
			logging.Warn("bulk delete failed for ticket",
				"ticket_id", id,
				"error", err)
			failed = append(failed, id)
		}
	}
	return failed
}

func (t *TicketStore) replace(updated models.Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, ticket := range t.entries {
		if ticket.ID == updated.ID {
			t.entries[i] = updated
		}
	}
	if t.current != nil && t.current.ID == updated.ID {
		t.current = &updated
	}
}

// Tickets returns a copy of the cached collection.
func (t *TicketStore) Tickets() []models.Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Ticket(nil), t.entries...)
}

// Current returns the currently selected ticket, or nil.
func (t *TicketStore) Current() *models.Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	copied := *t.current
	return &copied
}
