// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"regexp"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectOnHold   ProjectStatus = "on-hold"
	ProjectArchived ProjectStatus = "archived"
)

// MemberRole is a team member's role within a project.
type MemberRole string

const (
	RoleViewer    MemberRole = "viewer"
	RoleDeveloper MemberRole = "developer"
	RoleAdmin     MemberRole = "admin"
)

// TicketType categorizes a ticket.
type TicketType string

const (
	TypeBug         TicketType = "bug"
	TypeFeature     TicketType = "feature"
	TypeImprovement TicketType = "improvement"
	TypeTask        TicketType = "task"
)

// TicketPriority is the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// TicketStatus is the board column a ticket belongs to. Every ticket
// is always in exactly one of the three columns.
type TicketStatus string

const (
	StatusTodo       TicketStatus = "todo"
	StatusInProgress TicketStatus = "in-progress"
	StatusDone       TicketStatus = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []TicketStatus{StatusTodo, StatusInProgress, StatusDone}

// ValidStatus reports whether s names one of the three board columns.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// User represents an authenticated BugTracker user.
type User struct {
	// ID is the backend's identifier for the user.
	ID string `json:"id"`

	// Name is the user's display name.
	Name string `json:"name"`

	// Email is the address the user registered with.
	Email string `json:"email"`
}

// TeamMember pairs a user with their role on a project.
type TeamMember struct {
	User User       `json:"user"`
	Role MemberRole `json:"role"`
}

// Project represents a BugTracker project.
type Project struct {
	// ID is the backend's identifier for the project.
	ID string `json:"id"`

	// Title is the project's display name.
	Title string `json:"title"`

	// Key is the short uppercase code used to build ticket keys
	// (e.g. "BUG" in "BUG-42"). Unique across projects.
	Key string `json:"key"`

	// Description is the free-form project summary.
	Description string `json:"description"`

	// Color is the accent color shown in clients.
	Color string `json:"color"`

	// Icon is the emoji or icon identifier for the project.
	Icon string `json:"icon"`

	// Status is the project lifecycle state.
	Status ProjectStatus `json:"status"`

	// Owner is the user id of the project owner. The owner is
	// always treated as an admin member, whether or not they
	// appear in TeamMembers.
	Owner string `json:"owner"`

	// TeamMembers lists the users invited to the project.
	TeamMembers []TeamMember `json:"teamMembers"`

	// CreatedAt is when the project was created.
	CreatedAt time.Time `json:"createdAt"`
}

// projectKeyPattern matches valid project keys: 1-10 uppercase
// alphanumerics.
var projectKeyPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// ValidateProjectKey checks that key satisfies the project key
// invariant: at most 10 characters, uppercase letters and digits only.
func ValidateProjectKey(key string) error {
	if !projectKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid project key %q: must be 1-10 uppercase alphanumeric characters", key)
	}
	return nil
}

// Ticket represents a single tracked issue.
type Ticket struct {
	// ID is the backend's identifier for the ticket.
	ID string `json:"id"`

	// TicketKey is the human-readable key derived from the project
	// key and a per-project sequence (e.g. "BUG-42"). Immutable
	// once assigned.
	TicketKey string `json:"ticketKey"`

	// ProjectID references the owning project.
	ProjectID string `json:"project"`

	// Title is the ticket's summary line.
	Title string `json:"title"`

	// Description is the full body text of the ticket.
	Description string `json:"description"`

	// Type categorizes the ticket.
	Type TicketType `json:"type"`

	// Priority is the ticket's urgency.
	Priority TicketPriority `json:"priority"`

	// Status is the board column the ticket is in.
	Status TicketStatus `json:"status"`

	// Assignee is the user working the ticket, if anyone.
	Assignee *User `json:"assignee,omitempty"`

	// Reporter is the user who filed the ticket.
	Reporter User `json:"reporter"`

	// Tags is the ordered list of free-form labels.
	Tags []string `json:"tags"`

	// DueDate is the optional deadline.
	DueDate *time.Time `json:"dueDate,omitempty"`

	// CreatedAt is when the ticket was filed.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the ticket was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a remark on a ticket. Threading is one level deep: a
// comment may reply to a top-level comment, never to another reply.
type Comment struct {
	// ID is the backend's identifier for the comment.
	ID string `json:"id"`

	// TicketID references the ticket the comment is on.
	TicketID string `json:"ticket"`

	// User is the comment's author.
	User User `json:"user"`

	// Text is the comment body.
	Text string `json:"text"`

	// ParentComment, when set, references the top-level comment
	// this one replies to.
	ParentComment *string `json:"parentComment,omitempty"`

	// Edited indicates the text has been changed since posting.
	Edited bool `json:"edited"`

	// CreatedAt is when the comment was posted.
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is an event delivered to a user. Notifications are
// created by backend-side events; clients only flip read state or
// delete them.
type Notification struct {
	// ID is the backend's identifier for the notification.
	ID string `json:"id"`

	// Type is the event kind (e.g. "ticket_assigned").
	Type string `json:"type"`

	// Title is the short headline.
	Title string `json:"title"`

	// Message is the full notification text.
	Message string `json:"message"`

	// Link is an optional deep link into the application.
	Link string `json:"link,omitempty"`

	// Read indicates the user has seen the notification.
	Read bool `json:"read"`

	// ActionBy is the user whose action triggered the event, if any.
	ActionBy *User `json:"actionBy,omitempty"`

	// CreatedAt is when the event occurred.
	CreatedAt time.Time `json:"createdAt"`
}

// Activity is one entry in a ticket's audit trail, written by the
// backend whenever the ticket is created or changed.
type Activity struct {
	// ID is the backend's identifier for the entry.
	ID string `json:"id"`

	// User is who performed the action.
	User User `json:"user"`

	// Action is the event kind (e.g. "created", "status_changed").
	Action string `json:"action"`

	// Description is the human-readable summary.
	Description string `json:"description"`

	// OldValue and NewValue carry the before/after of a field change,
	// empty for actions that are not field changes.
	OldValue string `json:"oldValue,omitempty"`
	NewValue string `json:"newValue,omitempty"`

	// CreatedAt is when the action happened.
	CreatedAt time.Time `json:"createdAt"`
}

// TicketStats summarizes a project's tickets by status and priority.
type TicketStats struct {
	Total      int                    `json:"total"`
	ByStatus   map[TicketStatus]int   `json:"byStatus"`
	ByPriority map[TicketPriority]int `json:"byPriority"`
}
