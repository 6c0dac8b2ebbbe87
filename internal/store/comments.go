package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// CommentAPI is the slice of the backend client the comment cache
// needs. Satisfied by *api.Client.
type CommentAPI interface {
	ListComments(ctx context.Context, ticketID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, ticketID string, input api.CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, id, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// CommentStore caches the comments of the viewed ticket.
type CommentStore struct {
	mu      sync.Mutex
	client  CommentAPI
	entries []models.Comment
}

// NewCommentStore creates an empty comment cache over the client.
func NewCommentStore(client CommentAPI) *CommentStore {
	return &CommentStore{client: client}
}

// Fetch replaces the cached collection with the ticket's comments.
func (c *CommentStore) Fetch(ctx context.Context, ticketID string) error {
	comments, err := c.client.ListComments(ctx, ticketID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries = comments
	c.mu.Unlock()
	return nil
}

// Create posts a comment and appends the backend's copy. Threading is
// one level deep: replying to a comment that is itself a reply is
// rejected before any network call.
func (c *CommentStore) Create(ctx context.Context, ticketID string, input api.CommentInput) (*models.Comment, error) {
	if input.ParentComment != nil {
		if err := c.checkParent(*input.ParentComment); err != nil {
			return nil, err
		}
	}

	comment, err := c.client.CreateComment(ctx, ticketID, input)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries = append(c.entries, *comment)
	c.mu.Unlock()
	return comment, nil
}

// checkParent enforces the one-level threading invariant against the
// cached comments.
func (c *CommentStore) checkParent(parentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, comment := range c.entries {
		if comment.ID == parentID {
			if comment.ParentComment != nil {
				return fmt.Errorf("cannot reply to a reply: comment %s is not top-level", parentID)
			}
			return nil
		}
	}
	return fmt.Errorf("parent comment %s not found", parentID)
}

// Update replaces a comment's text; the backend's copy (marked
// edited) replaces the cached entry.
func (c *CommentStore) Update(ctx context.Context, id, text string) (*models.Comment, error) {
	comment, err := c.client.UpdateComment(ctx, id, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i, existing := range c.entries {
		if existing.ID == id {
			c.entries[i] = *comment
		}
	}
	c.mu.Unlock()
	return comment, nil
}

// Delete removes a comment from the backend and the cache.
func (c *CommentStore) Delete(ctx context.Context, id string) error {
	if err := c.client.DeleteComment(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.entries[:0]
	for _, comment := range c.entries {
		if comment.ID != id {
			kept = append(kept, comment)
		}
	}
	c.entries = kept
	return nil
}

// Comments returns a copy of the cached collection.
func (c *CommentStore) Comments() []models.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Comment(nil), c.entries...)
}
