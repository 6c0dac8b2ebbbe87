package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bugtrackhq/bugtrack/internal/filter"
	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/internal/store"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// searchCmd finds tickets across every project the user can see.
var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search tickets across all projects",
	Long: `Search every visible project's tickets for a term. The match is a
case-insensitive substring check against title, ticket key and
description. Searches are remembered locally; 'bugtrack search recent'
lists the last five.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := args[0]

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		presets := filter.NewPresetStore(local)
		if err := presets.RecordSearch(term); err != nil {
			logging.Warn("failed to record recent search", "error", err)
		}

		projects := store.NewProjectStore(client)
		if err := projects.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		spec := filter.DefaultSpec()
		spec.Search = term

		found := 0
		for _, project := range projects.Projects() {
			tickets := store.NewTicketStore(client)
			if err := tickets.Fetch(cmd.Context(), project.ID); err != nil {
				logging.Warn("skipping project, ticket fetch failed",
					"project_id", project.ID,
					"error", err)
				continue
			}
			matches := filter.Apply(tickets.Tickets(), spec)
			if len(matches) == 0 {
				continue
			}
			fmt.Printf("%s (%s):\n", project.Title, project.Key)
			printSearchMatches(matches)
			found += len(matches)
		}

		if found == 0 {
			fmt.Println("No tickets match")
		}
		return nil
	},
}

func printSearchMatches(tickets []models.Ticket) {
	for _, ticket := range tickets {
		fmt.Printf("  %-10s %-12s %s\n", ticket.TicketKey, ticket.Status, ticket.Title)
	}
}

var searchRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the last five search terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		local, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		presets := filter.NewPresetStore(local)
		recent, err := presets.RecentSearches()
		if err != nil {
			return fmt.Errorf("failed to read recent searches: %w", err)
		}
		if len(recent) == 0 {
			fmt.Println("No recent searches")
			return nil
		}
		for _, term := range recent {
			fmt.Println(term)
		}
		return nil
	},
}

func init() {
	searchCmd.AddCommand(searchRecentCmd)
}
