package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/internal/notify"
)

// notificationsCmd groups notification commands.
var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Manage notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications with the unread count",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		center := notify.NewCenter(client)
		if err := center.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch notifications: %w", err)
		}

		entries := center.Notifications()
		fmt.Printf("%d notifications, %d unread\n\n", len(entries), center.UnreadCount())
		for _, notification := range entries {
			marker := " "
			if !notification.Read {
				marker = "*"
			}
			fmt.Printf("%s [%s] %s  %s\n",
				marker, notification.ID, notification.CreatedAt.Format("2006-01-02 15:04"), notification.Message)
		}
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark a notification read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		center := notify.NewCenter(client)
		if err := center.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch notifications: %w", err)
		}
		center.MarkRead(cmd.Context(), args[0])
		fmt.Printf("%d unread\n", center.UnreadCount())
		return nil
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification read",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		center := notify.NewCenter(client)
		if err := center.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch notifications: %w", err)
		}
		center.MarkAllRead(cmd.Context())
		fmt.Println("All notifications marked read")
		return nil
	},
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete [notification-id]",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		center := notify.NewCenter(client)
		if err := center.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch notifications: %w", err)
		}
		center.Delete(cmd.Context(), args[0])
		fmt.Println("Notification deleted")
		return nil
	},
}

var notificationsClearReadCmd = &cobra.Command{
	Use:   "clear-read",
	Short: "Delete every read notification",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		center := notify.NewCenter(client)
		if err := center.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch notifications: %w", err)
		}
		center.ClearRead(cmd.Context())
		fmt.Println("Read notifications cleared")
		return nil
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for notifications until interrupted",
	Long: `Poll the backend on an interval and print the unread count whenever it
changes. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, err := cmd.Flags().GetDuration("interval")
		if err != nil {
			return err
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		center := notify.NewCenter(client)
		poller := notify.NewPoller(center, interval)

		logging.Info("watching notifications", "interval", interval)
		poller.Start(cmd.Context())
		defer poller.Stop()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		lastUnread := -1
		for {
			select {
			case <-interrupt:
				fmt.Println()
				return nil
			case <-ticker.C:
				if unread := center.UnreadCount(); unread != lastUnread {
					lastUnread = unread
					fmt.Printf("%s  %d unread\n", time.Now().Format("15:04:05"), unread)
				}
			}
		}
	},
}

func init() {
	notificationsWatchCmd.Flags().Duration("interval", notify.DefaultInterval, "Poll interval")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
	notificationsCmd.AddCommand(notificationsDeleteCmd)
	notificationsCmd.AddCommand(notificationsClearReadCmd)
	notificationsCmd.AddCommand(notificationsWatchCmd)
}
