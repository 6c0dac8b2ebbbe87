// Package cmd provides the command-line interface for the BugTracker client.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/internal/config"
	"github.com/bugtrackhq/bugtrack/internal/localstore"
	"github.com/bugtrackhq/bugtrack/internal/store"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

var rootCmd = &cobra.Command{
	Use:   "bugtrack",
	Short: "Bugtrack is a terminal client for the BugTracker issue tracker",
	Long: `Bugtrack is a CLI client for a BugTracker backend. It manages projects,
tickets, comments and notifications over the REST API, keeps your session
token and saved filter presets on disk, and renders a project's tickets as
an interactive kanban board.

Configuration comes from environment variables:
  BUGTRACK_API_URL    base URL of the backend (required)
  BUGTRACK_TOKEN      bearer token override (optional, 'bugtrack login' persists one)
  BUGTRACK_DATA_DIR   client state directory (default ~/.bugtrack)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return withLoginHint(rootCmd.Execute())
}

// withLoginHint appends a login reminder to authentication failures so
// every command surfaces the same recovery step on an expired session.
func withLoginHint(err error) error {
	if err != nil && api.IsUnauthorized(err) {
		return fmt.Errorf("%v (session expired, run 'bugtrack auth login')", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringP("project", "p", "", "Project ID to operate on")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(searchCmd)
}

// openLocalStore opens the client-local state database under the
// configured data directory.
func openLocalStore() (*localstore.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return localstore.Open(cfg.Storage.DataDir)
}

// newAPIClient builds an authenticated backend client using the saved
// session token. BUGTRACK_TOKEN, when set, takes precedence inside
// api.NewClient. The returned local store is open; the caller owns
// closing it.
func newAPIClient() (*api.Client, *localstore.Store, error) {
	local, err := openLocalStore()
	if err != nil {
		return nil, nil, err
	}
	token, err := store.LoadToken(local)
	if err != nil {
		local.Close()
		return nil, nil, fmt.Errorf("failed to read saved session: %w", err)
	}
	client, err := api.NewClient(token)
	if err != nil {
		local.Close()
		return nil, nil, err
	}
	return client, local, nil
}

// requireProject resolves the project id from the persistent --project
// flag.
func requireProject(cmd *cobra.Command) (string, error) {
	projectID, err := cmd.Flags().GetString("project")
	if err != nil {
		return "", err
	}
	if projectID == "" {
		return "", fmt.Errorf("project flag is required (use --project)")
	}
	return projectID, nil
}

// currentUser fetches the authenticated user, used for session display
// and resolving the 'me' assignee shorthand.
func currentUser(ctx context.Context, client *api.Client) (*models.User, error) {
	user, err := client.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil, fmt.Errorf("not logged in (run 'bugtrack auth login')")
		}
		return nil, err
	}
	return user, nil
}
