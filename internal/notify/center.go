// Package notify keeps a local notification list and unread counter
// approximately consistent with server state by polling, without a
// push channel.
//
// Mutations are optimistic and deliberately not rolled back on backend
// failure: a stale read flag is cosmetic, not consistency-critical,
// and the next fetch is authoritative anyway. Fetches are the
// opposite: a failed fetch leaves the previous list and counter
// untouched, stale-but-consistent over wrong-and-inconsistent.
package notify

import (
	"context"
	"sync"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// API is the slice of the backend client the notification center
// needs. Satisfied by *api.Client.
type API interface {
	ListNotifications(ctx context.Context) (*api.NotificationList, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	ClearReadNotifications(ctx context.Context) error
}

// Center is the local notification cache.
type Center struct {
	mu      sync.Mutex
	client  API
	entries []models.Notification
	unread  int
}

// NewCenter creates an empty notification cache over the client.
func NewCenter(client API) *Center {
	return &Center{client: client}
}

// Fetch replaces the entire local list and unread counter with the
// server's response. Full replace, not merge: merging would diverge
// from missed partial updates. On error the previous state is kept.
func (c *Center) Fetch(ctx context.Context) error {
	list, err := c.client.ListNotifications(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries = list.Notifications
	c.unread = list.UnreadCount
	c.mu.Unlock()
	return nil
}

// MarkRead optimistically flips the local read flag and decrements the
// unread counter, then issues the backend call. A backend failure is
// logged, never rolled back.
func (c *Center) MarkRead(ctx context.Context, id string) {
	c.mu.Lock()
	for i, notification := range c.entries {
		if notification.ID == id {
			if !notification.Read {
				c.entries[i].Read = true
				c.decrementUnread()
			}
			break
		}
	}
	c.mu.Unlock()

	if err := c.client.MarkNotificationRead(ctx, id); err != nil {
		logging.Warn("failed to mark notification read on backend",
			"notification_id", id,
			"error", err)
	}
}

// MarkAllRead optimistically sets every local entry read and zeroes
// the counter, then issues the backend call.
func (c *Center) MarkAllRead(ctx context.Context) {
	c.mu.Lock()
	for i := range c.entries {
		c.entries[i].Read = true
	}
	c.unread = 0
	c.mu.Unlock()

	if err := c.client.MarkAllNotificationsRead(ctx); err != nil {
		logging.Warn("failed to mark all notifications read on backend",
			"error", err)
	}
}

// Delete removes the entry locally, decrementing the counter when it
// was unread, then issues the backend call.
func (c *Center) Delete(ctx context.Context, id string) {
	c.mu.Lock()
	kept := c.entries[:0]
	for _, notification := range c.entries {
		if notification.ID == id {
			if !notification.Read {
				c.decrementUnread()
			}
			continue
		}
		kept = append(kept, notification)
	}
	c.entries = kept
	c.mu.Unlock()

	if err := c.client.DeleteNotification(ctx, id); err != nil {
		logging.Warn("failed to delete notification on backend",
			"notification_id", id,
			"error", err)
	}
}

// ClearRead removes every locally-read entry. The counter is untouched;
// read entries contribute nothing to it by definition.
func (c *Center) ClearRead(ctx context.Context) {
	c.mu.Lock()
	kept := c.entries[:0]
	for _, notification := range c.entries {
		if !notification.Read {
			kept = append(kept, notification)
		}
	}
	c.entries = kept
	c.mu.Unlock()

	if err := c.client.ClearReadNotifications(ctx); err != nil {
		logging.Warn("failed to clear read notifications on backend",
			"error", err)
	}
}

// decrementUnread floors the counter at zero. Caller holds the lock.
func (c *Center) decrementUnread() {
	if c.unread > 0 {
		c.unread--
	}
}

// Notifications returns a copy of the local list.
func (c *Center) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Notification(nil), c.entries...)
}

// UnreadCount returns the local unread counter.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}
