package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// fakeTicketAPI scripts the backend for ticket cache tests.
type fakeTicketAPI struct {
	listResult    []models.Ticket
	listErr       error
	updateErr     error
	deleteErr     func(id string) error
	updatedFields []api.TicketUpdate
	deletedIDs    []string
	activities    []models.Activity
}

func (f *fakeTicketAPI) ListTickets(context.Context, string) ([]models.Ticket, error) {
	return f.listResult, f.listErr
}

func (f *fakeTicketAPI) CreateTicket(_ context.Context, _ string, input api.TicketInput) (*models.Ticket, error) {
	return &models.Ticket{
		ID:          "new",
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Priority:    input.Priority,
		Tags:        input.Tags,
		Status:      models.StatusTodo,
	}, nil
}

func (f *fakeTicketAPI) GetTicket(_ context.Context, id string) (*models.Ticket, error) {
	for _, ticket := range f.listResult {
		if ticket.ID == id {
			found := ticket
			return &found, nil
		}
	}
	return &models.Ticket{ID: id}, nil
}

func (f *fakeTicketAPI) UpdateTicket(_ context.Context, id string, update api.TicketUpdate) (*models.Ticket, error) {
	f.updatedFields = append(f.updatedFields, update)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	ticket := models.Ticket{ID: id, Title: "Updated"}
	if update.Status != nil {
		ticket.Status = *update.Status
	}
	return &ticket, nil
}

func (f *fakeTicketAPI) DeleteTicket(_ context.Context, id string) error {
	if f.deleteErr != nil {
		if err := f.deleteErr(id); err != nil {
			return err
		}
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeTicketAPI) TicketStats(context.Context, string) (*models.TicketStats, error) {
	return &models.TicketStats{Total: len(f.listResult)}, nil
}

func (f *fakeTicketAPI) ListActivity(context.Context, string) ([]models.Activity, error) {
	return f.activities, nil
}

func TestTicketFetchReplacesCache(t *testing.T) {
	client := &fakeTicketAPI{listResult: []models.Ticket{{ID: "1"}, {ID: "2"}}}
	tickets := NewTicketStore(client)

	require.NoError(t, tickets.Fetch(context.Background(), "p1"))
	assert.Len(t, tickets.Tickets(), 2)

	// A second fetch replaces wholesale, it does not merge.
	client.listResult = []models.Ticket{{ID: "3"}}
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))

	cached := tickets.Tickets()
	require.Len(t, cached, 1)
	assert.Equal(t, "3", cached[0].ID)
}

func TestTicketFetchFailureLeavesCache(t *testing.T) {
	client := &fakeTicketAPI{listResult: []models.Ticket{{ID: "1"}}}
	tickets := NewTicketStore(client)
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))

	client.listErr = errors.New("network down")
	assert.Error(t, tickets.Fetch(context.Background(), "p1"))

	// Stale-but-consistent beats wrong-and-inconsistent.
	assert.Len(t, tickets.Tickets(), 1)
}

func TestTicketCreatePrepends(t *testing.T) {
	client := &fakeTicketAPI{listResult: []models.Ticket{{ID: "1"}}}
	tickets := NewTicketStore(client)
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))

	created, err := tickets.Create(context.Background(), "p1", api.TicketInput{Title: "Fresh"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)

	cached := tickets.Tickets()
	require.Len(t, cached, 2)
	assert.Equal(t, "new", cached[0].ID)
}

func TestTicketUpdateReplacesEntryAndCurrent(t *testing.T) {
	client := &fakeTicketAPI{listResult: []models.Ticket{{ID: "1", Title: "Old"}}}
	tickets := NewTicketStore(client)
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))
	_, err := tickets.Get(context.Background(), "1")
	require.NoError(t, err)

	_, err = tickets.Update(context.Background(), "1", api.TicketUpdate{})
	require.NoError(t, err)

	assert.Equal(t, "Updated", tickets.Tickets()[0].Title)
	assert.Equal(t, "Updated", tickets.Current().Title)
}

func TestUpdateStatusSendsOnlyStatus(t *testing.T) {
	client := &fakeTicketAPI{}
	tickets := NewTicketStore(client)

	require.NoError(t, tickets.UpdateStatus(context.Background(), "1", models.StatusDone))

	require.Len(t, client.updatedFields, 1)
	update := client.updatedFields[0]
	require.NotNil(t, update.Status)
	assert.Equal(t, models.StatusDone, *update.Status)
	assert.Nil(t, update.Title)
	assert.Nil(t, update.Priority)
	assert.Nil(t, update.Assignee)
}

func TestTicketDeleteClearsCurrent(t *testing.T) {
	client := &fakeTicketAPI{listResult: []models.Ticket{{ID: "1"}, {ID: "2"}}}
	tickets := NewTicketStore(client)
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))
	_, err := tickets.Get(context.Background(), "1")
	require.NoError(t, err)

	require.NoError(t, tickets.Delete(context.Background(), "1"))

	cached := tickets.Tickets()
	require.Len(t, cached, 1)
	assert.Equal(t, "2", cached[0].ID)
	assert.Nil(t, tickets.Current())
}

func TestBulkUpdateStatusReportsFailures(t *testing.T) {
	inner := &fakeTicketAPI{listResult: []models.Ticket{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	client := &flakyTicketAPI{inner: inner, failOn: map[string]bool{"2": true}}
	tickets := NewTicketStore(client)
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))

	failed := tickets.BulkUpdateStatus(context.Background(), []string{"1", "2", "3"}, models.StatusDone)
	assert.Equal(t, []string{"2"}, failed)

	// Successes landed in the cache, the failure did not.
	byID := map[string]models.Ticket{}
	for _, ticket := range tickets.Tickets() {
		byID[ticket.ID] = ticket
	}
	assert.Equal(t, models.StatusDone, byID["1"].Status)
	assert.Equal(t, models.TicketStatus(""), byID["2"].Status)
	assert.Equal(t, models.StatusDone, byID["3"].Status)
}

func TestDuplicateCreatesPrefixedCopy(t *testing.T) {
	client := &fakeTicketAPI{listResult: []models.Ticket{{
		ID:          "1",
		ProjectID:   "p1",
		Title:       "Login fails",
		Description: "500 on submit",
		Type:        models.TypeBug,
		Priority:    models.PriorityHigh,
		Status:      models.StatusDone,
		Tags:        []string{"auth"},
	}}}
	tickets := NewTicketStore(client)
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))

	copyTicket, err := tickets.Duplicate(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "[COPY] Login fails", copyTicket.Title)
	assert.Equal(t, "500 on submit", copyTicket.Description)
	assert.Equal(t, models.TypeBug, copyTicket.Type)
	assert.Equal(t, models.PriorityHigh, copyTicket.Priority)
	assert.Equal(t, []string{"auth"}, copyTicket.Tags)
	// The copy starts its own lifecycle in the first column.
	assert.Equal(t, models.StatusTodo, copyTicket.Status)

	cached := tickets.Tickets()
	require.Len(t, cached, 2)
	assert.Equal(t, "[COPY] Login fails", cached[0].Title)
}

func TestActivityPassesThrough(t *testing.T) {
	client := &fakeTicketAPI{activities: []models.Activity{
		{ID: "a1", Action: "created", Description: "created this ticket"},
		{ID: "a2", Action: "status_changed", OldValue: "todo", NewValue: "done"},
	}}
	tickets := NewTicketStore(client)

	activities, err := tickets.Activity(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "status_changed", activities[1].Action)
}

func TestBulkDeleteReportsFailures(t *testing.T) {
	inner := &fakeTicketAPI{listResult: []models.Ticket{{ID: "1"}, {ID: "2"}}}
	client := &flakyTicketAPI{inner: inner, failOn: map[string]bool{"1": true}}
	tickets := NewTicketStore(client)
	require.NoError(t, tickets.Fetch(context.Background(), "p1"))

	failed := tickets.BulkDelete(context.Background(), []string{"1", "2"})
	assert.Equal(t, []string{"1"}, failed)

	cached := tickets.Tickets()
	require.Len(t, cached, 1)
	assert.Equal(t, "1", cached[0].ID)
}

// flakyTicketAPI fails mutations for scripted ids and delegates the
// rest to the inner fake.
type flakyTicketAPI struct {
	inner  *fakeTicketAPI
	failOn map[string]bool
}

func (f *flakyTicketAPI) ListTickets(ctx context.Context, projectID string) ([]models.Ticket, error) {
	return f.inner.ListTickets(ctx, projectID)
}

func (f *flakyTicketAPI) CreateTicket(ctx context.Context, projectID string, input api.TicketInput) (*models.Ticket, error) {
	return f.inner.CreateTicket(ctx, projectID, input)
}

func (f *flakyTicketAPI) ListActivity(ctx context.Context, ticketID string) ([]models.Activity, error) {
	return f.inner.ListActivity(ctx, ticketID)
}

func (f *flakyTicketAPI) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return f.inner.GetTicket(ctx, id)
}

func (f *flakyTicketAPI) UpdateTicket(ctx context.Context, id string, update api.TicketUpdate) (*models.Ticket, error) {
	if f.failOn[id] {
		return nil, errors.New("scripted failure")
	}
	return f.inner.UpdateTicket(ctx, id, update)
}

func (f *flakyTicketAPI) DeleteTicket(ctx context.Context, id string) error {
	if f.failOn[id] {
		return errors.New("scripted failure")
	}
	return f.inner.DeleteTicket(ctx, id)
}

func (f *flakyTicketAPI) TicketStats(ctx context.Context, projectID string) (*models.TicketStats, error) {
	return f.inner.TicketStats(ctx, projectID)
}
