package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bugtrackhq/bugtrack/internal/board"
	"github.com/bugtrackhq/bugtrack/internal/boardui"
	"github.com/bugtrackhq/bugtrack/internal/store"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// boardCmd shows a project's tickets as a three-column kanban board.
var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show a project's kanban board",
	Long: `Show the project's tickets grouped into To Do, In Progress and Done
columns, preserving the backend's ordering within each column.

With --interactive the board opens as a terminal UI where tickets can
be picked up and dropped between columns. A cross-column drop updates
the ticket's status on the backend; when the backend rejects the move,
the affected columns snap back to their previous state.`,
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
		if err := tickets.Fetch(cmd.Context(), projectID); err != nil {
			return fmt.Errorf("failed to list tickets: %w", err)
		}

		interactive, _ := cmd.Flags().GetBool("interactive")
		if !interactive {
			printBoard(board.OrganizeColumns(tickets.Tickets()))
			return nil
		}

		engine := board.NewEngine(tickets)
		model := boardui.NewModel(engine, func(ctx context.Context) ([]models.Ticket, error) {
			if err := tickets.Fetch(ctx, projectID); err != nil {
				return nil, err
			}
			return tickets.Tickets(), nil
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("board UI failed: %w", err)
		}
		return nil
	},
}

// boardMoveCmd moves one ticket to a column from the command line,
// using the same engine the interactive board uses.
var boardMoveCmd = &cobra.Command{
	Use:   "move [ticket-id] [status]",
	Short: "Move a ticket to a column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireProject(cmd)
		if err != nil {
			return err
		}

		status := models.TicketStatus(args[1])
		if !models.ValidStatus(status) {
			return fmt.Errorf("invalid status %q (todo, in-progress, done)", args[1])
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		tickets := store.NewTicketStore(client)
		if err := tickets.Fetch(cmd.Context(), projectID); err != nil {
			return fmt.Errorf("failed to list tickets: %w", err)
		}

		columns := board.OrganizeColumns(tickets.Tickets())
		src, ok := findTicket(columns, args[0])
		if !ok {
			return fmt.Errorf("ticket %s is not on this board", args[0])
		}

		index, _ := cmd.Flags().GetInt("index")
		if index < 0 {
			index = len(columns[status])
		}

		engine := board.NewEngine(tickets)
		engine.Load(tickets.Tickets())
		move, err := engine.Drop(cmd.Context(), src, &board.Position{Column: status, Index: index})
		if err != nil {
			return fmt.Errorf("failed to move ticket: %w", err)
		}
		if move == nil {
			fmt.Println("Nothing to do")
			return nil
		}
		fmt.Printf("%s moved to %s\n", move.Ticket.TicketKey, move.ColumnTitle)
		return nil
	},
}

func findTicket(columns board.Columns, ticketID string) (board.Position, bool) {
	for _, status := range models.Statuses {
		for index, ticket := range columns[status] {
			if ticket.ID == ticketID {
				return board.Position{Column: status, Index: index}, true
			}
		}
	}
	return board.Position{}, false
}

func printBoard(columns board.Columns) {
	for _, status := range models.Statuses {
		tickets := columns[status]
		fmt.Printf("%s (%d)\n", board.ColumnTitle(status), len(tickets))
		for _, ticket := range tickets {
			fmt.Printf("  %-10s [%s] %s\n", ticket.TicketKey, ticket.Priority, ticket.Title)
		}
		fmt.Println()
	}
}

func init() {
	boardCmd.Flags().Bool("interactive", false, "Open the board as a terminal UI")
	boardMoveCmd.Flags().Int("index", -1, "Position inside the target column (default: end)")
	boardCmd.AddCommand(boardMoveCmd)
}
