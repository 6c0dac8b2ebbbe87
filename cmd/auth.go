package cmd

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/internal/logging"
	"github.com/bugtrackhq/bugtrack/internal/store"
)

// authCmd groups the session commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend and save the session token",
	Long: `Authenticate with an email and password. On success the bearer token is
saved in the local data directory and used by every other command until
'bugtrack auth logout'.

The password is read from the terminal without echo. Use --password only
in non-interactive environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := cmd.Flags().GetString("email")
		if err != nil {
			return err
		}
		if email == "" {
			return fmt.Errorf("email flag is required")
		}

		password, err := cmd.Flags().GetString("password")
		if err != nil {
			return err
		}
		if password == "" {
			fmt.Print("Password: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(raw)
		}

		local, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		// Login needs no token, the endpoint is unauthenticated.
		client, err := api.NewClient("")
		if err != nil {
			return err
		}

		auth, err := client.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := store.SaveToken(local, auth.Token); err != nil {
			return fmt.Errorf("failed to save session token: %w", err)
		}

		logging.Info("session established", "user_id", auth.User.ID)
		fmt.Printf("Logged in as %s <%s>\n", auth.User.Name, auth.User.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a backend account and save the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}
		email, err := cmd.Flags().GetString("email")
		if err != nil {
			return err
		}
		password, err := cmd.Flags().GetString("password")
		if err != nil {
			return err
		}
		if name == "" || email == "" || password == "" {
			return fmt.Errorf("name, email and password flags are required")
		}

		local, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		client, err := api.NewClient("")
		if err != nil {
			return err
		}

		auth, err := client.Register(cmd.Context(), name, email, password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		if err := store.SaveToken(local, auth.Token); err != nil {
			return fmt.Errorf("failed to save session token: %w", err)
		}

		fmt.Printf("Account created, logged in as %s <%s>\n", auth.User.Name, auth.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the saved session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		local, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		if err := store.ClearToken(local); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		user, err := currentUser(cmd.Context(), client)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> (id %s)\n", user.Name, user.Email, user.ID)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("password", "", "Account password")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
}
