// Package api provides the client for the BugTracker REST backend.
//
// All entities are owned by the backend; this package only moves them
// over the wire. Authenticated calls carry the session bearer token in
// the Authorization header via an oauth2 token-source transport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/bugtrackhq/bugtrack/internal/config"
	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// requestTimeout bounds every backend call.
const requestTimeout = 15 * time.Second

// Client encapsulates access to the BugTracker REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client using configuration from environment
// variables. The token is the session bearer token; an empty token
// yields an unauthenticated client, which is sufficient for register
// and login. BUGTRACK_TOKEN, when set, overrides the supplied token.
func NewClient(token string) (*Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.API.Token != "" {
		token = cfg.API.Token
	}

	logging.Debug("bugtracker api configuration",
		"base_url", cfg.API.URL,
		"token", logging.MaskSensitive(token))

	return New(cfg.API.URL, token), nil
}

// New creates a client against the given base URL. When token is
// non-empty, requests are sent through an oauth2 transport that adds
// the bearer Authorization header.
func New(baseURL, token string) *Client {
	httpClient := &http.Client{Timeout: requestTimeout}

	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = requestTimeout
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// do issues a single JSON request and decodes the response into out
// (when out is non-nil). Non-2xx responses are returned as *Error with
// the backend's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to backend failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an *Error, preferring the
// backend's {message} body over the bare status text.
func decodeError(resp *http.Response) error {
	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}

	logging.Debug("backend error response",
		"status_code", apiErr.StatusCode,
		"message", apiErr.Message)
	return apiErr
}

// AuthResponse is the backend's answer to register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates a new account and returns the session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	payload := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates an existing account and returns the session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProjectInput carries the writable fields of a project.
type ProjectInput struct {
	Title       string               `json:"title"`
	Key         string               `json:"key,omitempty"`
	Description string               `json:"description,omitempty"`
	Color       string               `json:"color,omitempty"`
	Icon        string               `json:"icon,omitempty"`
	Status      models.ProjectStatus `json:"status,omitempty"`
}

// ListProjects returns every project visible to the current user.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project and returns the backend's copy.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject fetches a single project by id.
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+id, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject applies input to a project and returns the updated copy.
func (c *Client) UpdateProject(ctx context.Context, id string, input ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+id, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil)
}

// MemberInput identifies a user to invite and the role to grant.
type MemberInput struct {
	Email string            `json:"email"`
	Role  models.MemberRole `json:"role"`
}

// AddMember invites a user to a project. The backend answers with the
// updated project.
func (c *Client) AddMember(ctx context.Context, projectID string, input MemberInput) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/members", input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// RemoveMember removes a team member from a project and returns the
// updated project.
func (c *Client) RemoveMember(ctx context.Context, projectID, memberID string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodDelete, "/projects/"+projectID+"/members/"+memberID, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// TicketInput carries the fields for creating a ticket.
type TicketInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Type        models.TicketType     `json:"type,omitempty"`
	Priority    models.TicketPriority `json:"priority,omitempty"`
	Status      models.TicketStatus   `json:"status,omitempty"`
	Assignee    *string               `json:"assignee,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	DueDate     *time.Time            `json:"dueDate,omitempty"`
}

// TicketUpdate is a partial update; nil fields are left untouched by
// the backend.
type TicketUpdate struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Type        *models.TicketType     `json:"type,omitempty"`
	Priority    *models.TicketPriority `json:"priority,omitempty"`
	Status      *models.TicketStatus   `json:"status,omitempty"`
	Assignee    *string                `json:"assignee,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	DueDate     *time.Time             `json:"dueDate,omitempty"`
}

// ListTickets returns all tickets of a project.
func (c *Client) ListTickets(ctx context.Context, projectID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// CreateTicket files a ticket in a project.
func (c *Client) CreateTicket(ctx context.Context, projectID string, input TicketInput) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/tickets", input, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicket fetches a single ticket by id.
func (c *Client) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/"+id, nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket applies a partial update and returns the backend's copy.
func (c *Client) UpdateTicket(ctx context.Context, id string, update TicketUpdate) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.do(ctx, http.MethodPut, "/tickets/"+id, update, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tickets/"+id, nil, nil)
}

// TicketStats returns the status/priority breakdown for a project.
func (c *Client) TicketStats(ctx context.Context, projectID string) (*models.TicketStats, error) {
	var stats models.TicketStats
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/tickets/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListActivity returns a ticket's audit trail, newest first.
func (c *Client) ListActivity(ctx context.Context, ticketID string) ([]models.Activity, error) {
	var activities []models.Activity
	if err := c.do(ctx, http.MethodGet, "/tickets/"+ticketID+"/activity", nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// CommentInput carries the fields for posting a comment.
type CommentInput struct {
	Text          string  `json:"text"`
	ParentComment *string `json:"parentComment,omitempty"`
}

// ListComments returns all comments on a ticket.
func (c *Client) ListComments(ctx context.Context, ticketID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, http.MethodGet, "/tickets/"+ticketID+"/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment posts a comment on a ticket.
func (c *Client) CreateComment(ctx context.Context, ticketID string, input CommentInput) (*models.Comment, error) {
	var comment models.Comment
	if err := c.do(ctx, http.MethodPost, "/tickets/"+ticketID+"/comments", input, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment replaces a comment's text; the backend marks it edited.
func (c *Client) UpdateComment(ctx context.Context, id, text string) (*models.Comment, error) {
	payload := map[string]string{"text": text}
	var comment models.Comment
	if err := c.do(ctx, http.MethodPut, "/comments/"+id, payload, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+id, nil, nil)
}

// NotificationList is the backend's notification listing, including
// the authoritative unread count.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// ListNotifications returns the user's notifications and unread count.
func (c *Client) ListNotifications(ctx context.Context) (*NotificationList, error) {
	var list NotificationList
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// MarkNotificationRead flips a single notification to read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+id+"/read", nil, nil)
}

// MarkAllNotificationsRead flips every notification to read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}

// DeleteNotification removes a single notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+id, nil, nil)
}

// ClearReadNotifications prunes every notification already read.
func (c *Client) ClearReadNotifications(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/notifications/clear-read", nil, nil)
}
