package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/internal/store"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// projectsCmd groups project management commands.
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project visible to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		projects := store.NewProjectStore(client)
		if err := projects.Fetch(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		all := projects.Projects()
		if len(all) == 0 {
			fmt.Println("No projects")
			return nil
		}
		for _, project := range all {
			fmt.Printf("%-8s %-30s %-10s %d members  (id %s)\n",
				project.Key, project.Title, project.Status, len(project.TeamMembers), project.ID)
		}
		return nil
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Long: `Create a project. The key must be 1-10 uppercase letters or digits; it
prefixes every ticket key in the project (e.g. key BUG yields BUG-1).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		key, _ := cmd.Flags().GetString("key")
		description, _ := cmd.Flags().GetString("description")
		if title == "" || key == "" {
			return fmt.Errorf("title and key flags are required")
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		projects := store.NewProjectStore(client)
		project, err := projects.Create(cmd.Context(), api.ProjectInput{
			Title:       title,
			Key:         key,
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		fmt.Printf("Created project %s (%s), id %s\n", project.Title, project.Key, project.ID)
		return nil
	},
}

var projectsViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show a project's details and members",
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

		projects := store.NewProjectStore(client)
		project, err := projects.Get(cmd.Context(), projectID)
		if err != nil {
			return fmt.Errorf("failed to fetch project: %w", err)
		}

		fmt.Printf("%s (%s)\n", project.Title, project.Key)
		fmt.Printf("Status: %s\n", project.Status)
		if project.Description != "" {
			fmt.Printf("\n%s\n", project.Description)
		}
		fmt.Printf("\nMembers (%d):\n", len(project.TeamMembers))
		for _, member := range project.TeamMembers {
			fmt.Printf("  %-24s %s\n", member.User.Name, member.Role)
		}
		return nil
	},
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a project's title, description or status",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireProject(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		if title == "" {
			return fmt.Errorf("title flag is required")
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		projects := store.NewProjectStore(client)
		project, err := projects.Update(cmd.Context(), projectID, api.ProjectInput{
			Title:       title,
			Description: description,
			Status:      models.ProjectStatus(status),
		})
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		fmt.Printf("Updated project %s\n", project.Title)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a project and all its tickets",
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

		projects := store.NewProjectStore(client)
		if err := projects.Delete(cmd.Context(), projectID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		fmt.Println("Project deleted")
		return nil
	},
}

var projectsAddMemberCmd = &cobra.Command{
	Use:   "add-member",
	Short: "Invite a user to a project by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := requireProject(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		if email == "" {
			return fmt.Errorf("email flag is required")
		}

		client, local, err := newAPIClient()
		if err != nil {
			return err
		}
		defer local.Close()

		projects := store.NewProjectStore(client)
		project, err := projects.AddMember(cmd.Context(), projectID, api.MemberInput{
			Email: email,
			Role:  models.MemberRole(role),
		})
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		fmt.Printf("Added %s to %s\n", email, project.Title)
		return nil
	},
}

var projectsRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member [user-id]",
	Short: "Remove a member from a project",
	Args:  cobra.ExactArgs(1),
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

		projects := store.NewProjectStore(client)
		project, err := projects.RemoveMember(cmd.Context(), projectID, args[0])
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		fmt.Printf("Removed member from %s\n", project.Title)
		return nil
	},
}

func init() {
	projectsCreateCmd.Flags().String("title", "", "Project title")
	projectsCreateCmd.Flags().String("key", "", "Project key (1-10 uppercase letters or digits)")
	projectsCreateCmd.Flags().String("description", "", "Project description")

	projectsUpdateCmd.Flags().String("title", "", "New title")
	projectsUpdateCmd.Flags().String("description", "", "New description")
	projectsUpdateCmd.Flags().String("status", "", "New status (active, on-hold, archived)")

	projectsAddMemberCmd.Flags().String("email", "", "User email to invite")
	projectsAddMemberCmd.Flags().String("role", "developer", "Role to grant (viewer, developer, admin)")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsViewCmd)
	projectsCmd.AddCommand(projectsUpdateCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsAddMemberCmd)
	projectsCmd.AddCommand(projectsRemoveMemberCmd)
}
