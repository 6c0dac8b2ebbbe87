// Package filter derives display lists from ticket collections: a
// pure, deterministic filter/sort pipeline plus saved presets and
// recent-search bookkeeping.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// All is the wildcard value meaning "no constraint" for the enum
// fields of a Spec.
const All = "all"

// Unassigned matches tickets with no assignee.
const Unassigned = "unassigned"

// SortField selects the ticket attribute to order by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortPriority  SortField = "priority"
	SortTitle     SortField = "title"
)

// SortOrder is the direction of the sort.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Spec is a filter/sort specification. Empty or "all" fields impose
// no constraint. Search is a case-insensitive substring match against
// title, ticket key, and description; all set fields combine with
// logical AND.
type Spec struct {
	Search   string    `json:"search,omitempty"`
	Status   string    `json:"status,omitempty"`
	Priority string    `json:"priority,omitempty"`
	Type     string    `json:"type,omitempty"`
	Assignee string    `json:"assignee,omitempty"`
	Project  string    `json:"project,omitempty"`
	SortBy   SortField `json:"sortBy,omitempty"`
	Order    SortOrder `json:"order,omitempty"`
}

// DefaultSpec is the unconstrained spec with the default sort:
// newest created first.
func DefaultSpec() Spec {
	return Spec{
		Status:   All,
		Priority: All,
		Type:     All,
		Assignee: All,
		Project:  All,
		SortBy:   SortCreatedAt,
		Order:    Descending,
	}
}

// constrains reports whether a field value imposes a constraint.
func constrains(value string) bool {
	return value != "" && value != All
}

// HasActiveFilters reports whether any narrowing filter is set
// (sort settings alone do not count).
func (s Spec) HasActiveFilters() bool {
	return s.Search != "" ||
		constrains(s.Status) ||
		constrains(s.Priority) ||
		constrains(s.Type) ||
		constrains(s.Assignee) ||
		constrains(s.Project)
}

// priorityRank fixes the priority ordering: critical > high > medium > low.
var priorityRank = map[models.TicketPriority]int{
	models.PriorityCritical: 4,
	models.PriorityHigh:     3,
	models.PriorityMedium:   2,
	models.PriorityLow:      1,
}

// matches reports whether a single ticket passes every constraint of
// the spec.
func (s Spec) matches(ticket models.Ticket) bool {
	if s.Search != "" {
		query := strings.ToLower(s.Search)
		if !strings.Contains(strings.ToLower(ticket.Title), query) &&
			!strings.Contains(strings.ToLower(ticket.TicketKey), query) &&
			!strings.Contains(strings.ToLower(ticket.Description), query) {
			return false
		}
	}

	if constrains(s.Status) && string(ticket.Status) != s.Status {
		return false
	}
	if constrains(s.Priority) && string(ticket.Priority) != s.Priority {
		return false
	}
	if constrains(s.Type) && string(ticket.Type) != s.Type {
		return false
	}

	if constrains(s.Assignee) {
		if s.Assignee == Unassigned {
			if ticket.Assignee != nil {
				return false
			}
		} else if ticket.Assignee == nil || ticket.Assignee.ID != s.Assignee {
			return false
		}
	}

	if constrains(s.Project) && ticket.ProjectID != s.Project {
		return false
	}

	return true
}

// Apply runs the pipeline: filter tickets by the spec, then stable-sort
// by its sort settings. The input is never mutated; the result is a
// fresh slice sharing the input's elements, so identical inputs yield
// identical outputs.
func Apply(tickets []models.Ticket, spec Spec) []models.Ticket {
	result := make([]models.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if spec.matches(ticket) {
			result = append(result, ticket)
		}
	}

	sortBy := spec.SortBy
	if sortBy == "" {
		sortBy = SortCreatedAt
	}
	order := spec.Order
	if order == "" {
		order = Descending
	}

	var titles *collate.Collator
	if sortBy == SortTitle {
		titles = collate.New(language.Und)
	}

	sort.SliceStable(result, func(i, j int) bool {
		comparison := compareTickets(result[i], result[j], sortBy, titles)
		if order == Descending {
			comparison = -comparison
		}
		return comparison < 0
	})

	return result
}

// compareTickets orders two tickets by the given field, ascending.
func compareTickets(a, b models.Ticket, sortBy SortField, titles *collate.Collator) int {
	switch sortBy {
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortPriority:
		return priorityRank[a.Priority] - priorityRank[b.Priority]
	case SortTitle:
		return titles.CompareString(a.Title, b.Title)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Stats summarizes a filtered view against the full collection.
type Stats struct {
	// Total is the size of the unfiltered collection.
	Total int

	// Filtered is the size of the filtered view.
	Filtered int

	// Percentage is Filtered/Total rounded to whole percent
	// (0 when the collection is empty).
	Percentage int

	// ByStatus and ByPriority break down the filtered view.
	ByStatus   map[models.TicketStatus]int
	ByPriority map[models.TicketPriority]int
}

// ComputeStats builds the filter-result summary shown alongside a
// filtered ticket list.
func ComputeStats(all, filtered []models.Ticket) Stats {
	stats := Stats{
		Total:      len(all),
		Filtered:   len(filtered),
		ByStatus:   make(map[models.TicketStatus]int),
		ByPriority: make(map[models.TicketPriority]int),
	}
	if stats.Total > 0 {
		stats.Percentage = int(float64(stats.Filtered)/float64(stats.Total)*100 + 0.5)
	}
	for _, ticket := range filtered {
		stats.ByStatus[ticket.Status]++
		stats.ByPriority[ticket.Priority]++
	}
	return stats
}
