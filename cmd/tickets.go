package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/internal/filter"
	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/internal/store"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// ticketsCmd groups ticket commands.
var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Manage tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's tickets, filtered and sorted locally",
	Long: `List tickets in a project. Filtering and sorting happen client-side over
the fetched list, so repeated queries with different filters need no
extra requests.

Filters combine with AND. --search matches title, ticket key and
description case-insensitively. --assignee accepts a user id,
'unassigned', or 'me'.

Presets:
  --preset NAME        apply a built-in quick filter (my-open,
                       high-priority, recent, bugs) or a saved preset
                       by name or id
  --save-preset NAME   save the filters given on this invocation for
                       later use with --preset

Example:
  bugtrack tickets list -p 64f1 --status in-progress --priority critical
  bugtrack tickets list -p 64f1 --preset my-open --stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireProject(cmd)
		if err != nil {
			return err
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		spec := filter.DefaultSpec()
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			spec.Status = status
		}
		if priority, _ := cmd.Flags().GetString("priority"); priority != "" {
			spec.Priority = priority
		}
		if ticketType, _ := cmd.Flags().GetString("type"); ticketType != "" {
			spec.Type = ticketType
		}
		if assignee, _ := cmd.Flags().GetString("assignee"); assignee != "" {
			spec.Assignee = assignee
		}
		if search, _ := cmd.Flags().GetString("search"); search != "" {
			spec.Search = search
		}
		if sortBy, _ := cmd.Flags().GetString("sort"); sortBy != "" {
			spec.SortBy = filter.SortField(sortBy)
		}
		if order, _ := cmd.Flags().GetString("order"); order != "" {
			spec.Order = filter.SortOrder(order)
		}

		presets := filter.NewPresetStore(local)

		presetName, _ := cmd.Flags().GetString("preset")
		if presetName != "" {
			spec, err = resolvePreset(cmd, client, presets, presetName, spec)
			if err != nil {
				return err
			}
		}

		if saveAs, _ := cmd.Flags().GetString("save-preset"); saveAs != "" {
			saved, err := presets.Save(saveAs, spec, projectID)
			if err != nil {
				return fmt.Errorf("failed to save preset: %w", err)
			}
			fmt.Printf("Saved preset %q (id %s)\n", saved.Name, saved.ID)
		}

		if spec.Assignee == "me" {
			user, err := currentUser(cmd.Context(), client)
			if err != nil {
				return err
			}
			spec.Assignee = user.ID
		}

		if spec.Search != "" {
			if err := presets.RecordSearch(spec.Search); err != nil {
				logging.Warn("failed to record recent search", "error", err)
			}
		}

		tickets := store.NewTicketStore(client)
		if err := tickets.Fetch(cmd.Context(), projectID); err != nil {
			return fmt.Errorf("failed to list tickets: %w", err)
		}

		all := tickets.Tickets()
		visible := filter.Apply(all, spec)
		printTicketTable(visible)

		if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
			printFilterStats(filter.ComputeStats(all, visible))
		}
		return nil
	},
}

// resolvePreset looks up a quick preset by id first, then the saved
// presets by name or id. Quick presets overlay the flags already
// parsed into spec; a saved preset replaces them wholesale.
func resolvePreset(cmd *cobra.Command, client *api.Client, presets *filter.PresetStore, name string, spec filter.Spec) (filter.Spec, error) {
	if quick, ok := filter.QuickPresetByID(name); ok {
		userID := ""
		if quick.Assignee == "me" {
			user, err := currentUser(cmd.Context(), client)
			if err != nil {
				return spec, err
			}
			userID = user.ID
		}
		return quick.ApplyTo(spec, userID), nil
	}

	saved, err := presets.Get(name)
	if err != nil {
		return spec, fmt.Errorf("no preset named %q: %w", name, err)
	}
	return saved.Filters, nil
}

func printTicketTable(tickets []models.Ticket) {
	if len(tickets) == 0 {
		fmt.Println("No tickets match")
		return
	}
	for _, ticket := range tickets {
		assignee := "unassigned"
		if ticket.Assignee != nil {
			assignee = ticket.Assignee.Name
		}
		fmt.Printf("%-10s %-12s %-9s %-8s %-20s %s\n",
			ticket.TicketKey, ticket.Status, ticket.Priority, ticket.Type, assignee, ticket.Title)
	}
}

func printFilterStats(stats filter.Stats) {
	fmt.Printf("\nShowing %d of %d tickets (%d%%)\n", stats.Filtered, stats.Total, stats.Percentage)
	for _, status := range models.Statuses {
		if count := stats.ByStatus[status]; count > 0 {
			fmt.Printf("  %-12s %d\n", status, count)
		}
	}
	for _, priority := range []models.TicketPriority{
		models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow,
	} {
		if count := stats.ByPriority[priority]; count > 0 {
			fmt.Printf("  %-12s %d\n", priority, count)
		}
	}
}

var ticketsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ticket in a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireProject(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			return fmt.Errorf("title flag is required")
		}
		description, _ := cmd.Flags().GetString("description")
		ticketType, _ := cmd.Flags().GetString("type")
		priority, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetString("assignee")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		input := api.TicketInput{
			Title:       title,
			Description: description,
			Type:        models.TicketType(ticketType),
			Priority:    models.TicketPriority(priority),
			Tags:        tags,
		}
		if assignee != "" {
			input.Assignee = &assignee
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		ticket, err := tickets.Create(cmd.Context(), projectID, input)
		if err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
		fmt.Printf("Created %s: %s\n", ticket.TicketKey, ticket.Title)
		return nil
	},
}

var ticketsViewCmd = &cobra.Command{
	Use:   "view [ticket-id]",
	Short: "Show a ticket with its comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		ticket, err := tickets.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch ticket: %w", err)
		}

		fmt.Printf("%s  %s\n", ticket.TicketKey, ticket.Title)
		fmt.Printf("Status: %s  Priority: %s  Type: %s\n", ticket.Status, ticket.Priority, ticket.Type)
		if ticket.Assignee != nil {
			fmt.Printf("Assignee: %s\n", ticket.Assignee.Name)
		}
		if len(ticket.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(ticket.Tags, ", "))
		}
		if ticket.Description != "" {
			fmt.Printf("\n%s\n", ticket.Description)
		}

		comments := store.NewCommentStore(client)
		if err := comments.Fetch(cmd.Context(), ticket.ID); err != nil {
			return fmt.Errorf("failed to fetch comments: %w", err)
		}
		printCommentThread(comments.Comments())
		return nil
	},
}

// printCommentThread renders top-level comments with their replies
// indented one level. Replies to replies do not exist.
func printCommentThread(comments []models.Comment) {
	if len(comments) == 0 {
		return
	}
	fmt.Printf("\nComments (%d):\n", len(comments))
	for _, comment := range comments {
		if comment.ParentComment != nil {
			continue
		}
		fmt.Printf("  [%s] %s: %s\n", comment.ID, comment.User.Name, comment.Text)
		for _, reply := range comments {
			if reply.ParentComment != nil && *reply.ParentComment == comment.ID {
				fmt.Printf("      [%s] %s: %s\n", reply.ID, reply.User.Name, reply.Text)
			}
		}
	}
}

var ticketsUpdateCmd = &cobra.Command{
	Use:   "update [ticket-id]",
	Short: "Update fields on a ticket",
	Long: `Update a ticket. Only the flags you pass are sent; everything else is
left untouched on the backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update := api.TicketUpdate{}
		changed := false
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			update.Title = &title
			changed = true
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			update.Description = &description
			changed = true
		}
		if cmd.Flags().Changed("status") {
			status := models.TicketStatus(mustString(cmd, "status"))
			if !models.ValidStatus(status) {
				return fmt.Errorf("invalid status %q (todo, in-progress, done)", status)
			}
			update.Status = &status
			changed = true
		}
		if cmd.Flags().Changed("priority") {
			priority := models.TicketPriority(mustString(cmd, "priority"))
			update.Priority = &priority
			changed = true
		}
		if cmd.Flags().Changed("type") {
			ticketType := models.TicketType(mustString(cmd, "type"))
			update.Type = &ticketType
			changed = true
		}
		if cmd.Flags().Changed("assignee") {
			assignee := mustString(cmd, "assignee")
			update.Assignee = &assignee
			changed = true
		}
		if !changed {
			return fmt.Errorf("nothing to update, pass at least one field flag")
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		ticket, err := tickets.Update(cmd.Context(), args[0], update)
		if err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		fmt.Printf("Updated %s\n", ticket.TicketKey)
		return nil
	},
}

var ticketsDeleteCmd = &cobra.Command{
	Use:   "delete [ticket-id]",
	Short: "Delete a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		if err := tickets.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete ticket: %w", err)
		}
		fmt.Println("Ticket deleted")
		return nil
	},
}

var ticketsDuplicateCmd = &cobra.Command{
	Use:   "duplicate [ticket-id]",
	Short: "File a copy of a ticket",
	Long: `Create a new ticket in the same project carrying over the original's
description, type, priority and tags. The copy's title is prefixed with
[COPY] and it starts unassigned in To Do with no comments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		ticket, err := tickets.Duplicate(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to duplicate ticket: %w", err)
		}
		fmt.Printf("Created %s: %s\n", ticket.TicketKey, ticket.Title)
		return nil
	},
}

var ticketsActivityCmd = &cobra.Command{
	Use:   "activity [ticket-id]",
	Short: "Show a ticket's audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		activities, err := tickets.Activity(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch activity: %w", err)
		}
		if len(activities) == 0 {
			fmt.Println("No activity yet")
			return nil
		}
		for _, activity := range activities {
			fmt.Printf("%s  %-16s %s %s",
				activity.CreatedAt.Format("2006-01-02 15:04"),
				activity.Action, activity.User.Name, activity.Description)
			if activity.OldValue != "" && activity.NewValue != "" {
				fmt.Printf("  (%s -> %s)", activity.OldValue, activity.NewValue)
			}
			fmt.Println()
		}
		return nil
	},
}

var ticketsBulkStatusCmd = &cobra.Command{
	Use:   "bulk-status [status] [ticket-id...]",
	Short: "Move several tickets to a status in one pass",
	Long: `Apply a status to each listed ticket. Tickets are updated one at a
time; a failure on one does not stop the rest, and the ids that failed
are reported at the end.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.TicketStatus(args[0])
		if !models.ValidStatus(status) {
			return fmt.Errorf("invalid status %q (todo, in-progress, done)", args[0])
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		failed := tickets.BulkUpdateStatus(cmd.Context(), args[1:], status)
		fmt.Printf("Updated %d of %d tickets\n", len(args[1:])-len(failed), len(args[1:]))
		if len(failed) > 0 {
			return fmt.Errorf("failed to update: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

var ticketsBulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete [ticket-id...]",
	Short: "Delete several tickets in one pass",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		failed := tickets.BulkDelete(cmd.Context(), args)
		fmt.Printf("Deleted %d of %d tickets\n", len(args)-len(failed), len(args))
		if len(failed) > 0 {
			return fmt.Errorf("failed to delete: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

var ticketsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ticket counts for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireProject(cmd)
		if err != nil {
			return err
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		stats, err := tickets.Stats(cmd.Context(), projectID)
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}

		fmt.Printf("Total: %d\n", stats.Total)
		for _, status := range models.Statuses {
			fmt.Printf("  %-12s %d\n", status, stats.ByStatus[status])
		}
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage ticket comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add [ticket-id] [text]",
	Short: "Add a comment, or a reply with --reply-to",
	Long: `Add a comment to a ticket. With --reply-to the comment becomes a reply
to an existing top-level comment; replies cannot themselves be replied
to, so threads stay one level deep.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		input := api.CommentInput{Text: args[1]}
		if replyTo, _ := cmd.Flags().GetString("reply-to"); replyTo != "" {
			input.ParentComment = &replyTo
		}

		comments := store.NewCommentStore(client)
		if err := comments.Fetch(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to fetch comments: %w", err)
		}
		comment, err := comments.Create(cmd.Context(), args[0], input)
		if err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}
		fmt.Printf("Added comment %s\n", comment.ID)
		return nil
	},
}

var commentListCmd = &cobra.Command{
	Use:   "list [ticket-id]",
	Short: "List a ticket's comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		comments := store.NewCommentStore(client)
		if err := comments.Fetch(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to fetch comments: %w", err)
		}
		all := comments.Comments()
		if len(all) == 0 {
			fmt.Println("No comments")
			return nil
		}
		printCommentThread(all)
		return nil
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit [comment-id] [text]",
	Short: "Edit a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		comments := store.NewCommentStore(client)
		if _, err := comments.Update(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to edit comment: %w", err)
		}
		fmt.Println("Comment updated")
		return nil
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete [comment-id]",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		comments := store.NewCommentStore(client)
		if err := comments.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		fmt.Println("Comment deleted")
		return nil
	},
}

// mustString reads a string flag that was registered in init. The
// error path only fires on a typo in the flag name.
func mustString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return value
}

func init() {
	ticketsListCmd.Flags().String("status", "", "Filter by status (todo, in-progress, done)")
	ticketsListCmd.Flags().String("priority", "", "Filter by priority (low, medium, high, critical)")
	ticketsListCmd.Flags().String("type", "", "Filter by type (bug, feature, task, improvement)")
	ticketsListCmd.Flags().String("assignee", "", "Filter by assignee user id, 'unassigned' or 'me'")
	ticketsListCmd.Flags().String("search", "", "Substring match on title, key and description")
	ticketsListCmd.Flags().String("sort", "", "Sort field (createdAt, updatedAt, priority, title)")
	ticketsListCmd.Flags().String("order", "", "Sort order (asc, desc)")
	ticketsListCmd.Flags().String("preset", "", "Apply a quick or saved filter preset")
	ticketsListCmd.Flags().String("save-preset", "", "Save these filters under a name")
	ticketsListCmd.Flags().Bool("stats", false, "Print filter statistics after the list")

	ticketsCreateCmd.Flags().String("title", "", "Ticket title")
	ticketsCreateCmd.Flags().String("description", "", "Ticket description")
	ticketsCreateCmd.Flags().String("type", "task", "Ticket type")
	ticketsCreateCmd.Flags().String("priority", "medium", "Ticket priority")
	ticketsCreateCmd.Flags().String("assignee", "", "Assignee user id")
	ticketsCreateCmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")

	ticketsUpdateCmd.Flags().String("title", "", "New title")
	ticketsUpdateCmd.Flags().String("description", "", "New description")
	ticketsUpdateCmd.Flags().String("status", "", "New status")
	ticketsUpdateCmd.Flags().String("priority", "", "New priority")
	ticketsUpdateCmd.Flags().String("type", "", "New type")
	ticketsUpdateCmd.Flags().String("assignee", "", "New assignee user id (empty to unassign)")

	commentAddCmd.Flags().String("reply-to", "", "Parent comment id")

	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)

	ticketsCmd.AddCommand(ticketsListCmd)
	ticketsCmd.AddCommand(ticketsCreateCmd)
	ticketsCmd.AddCommand(ticketsViewCmd)
	ticketsCmd.AddCommand(ticketsUpdateCmd)
	ticketsCmd.AddCommand(ticketsDeleteCmd)
	ticketsCmd.AddCommand(ticketsDuplicateCmd)
	ticketsCmd.AddCommand(ticketsActivityCmd)
	ticketsCmd.AddCommand(ticketsBulkStatusCmd)
	ticketsCmd.AddCommand(ticketsBulkDeleteCmd)
	ticketsCmd.AddCommand(ticketsStatsCmd)
	ticketsCmd.AddCommand(commentCmd)
}
