package users

import (
	"fmt"

	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/client"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/output"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin)",
	}
	usersCmd.AddCommand(listUsersCmd(), createUserCmd(), deleteUserCmd())
	rootCmd.AddCommand(usersCmd)
}

type userList struct {
	Items []models.User `json:"items"`
	Total int           `json:"total"`
}

// ==========================
// LIST
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var list userList
			if err := client.AuthCall("GET", fmt.Sprintf("/users?limit=%d", limit), nil, &list); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(list.Items)
			}

			rows := make([][]interface{}, 0, len(list.Items))
			for _, u := range list.Items {
				rows = append(rows, []interface{}{u.ID, u.Username, u.Role})
			}
			output.RenderTable([]string{"ID", "Username", "Role"}, rows)
			fmt.Printf("%d of %d users\n", len(list.Items), list.Total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of users")
	return cmd
}

// ==========================
// CREATE
// ==========================
func createUserCmd() *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !models.ValidRole(role) {
				return fmt.Errorf("role must be %s or %s", models.RoleAdmin, models.RoleCleaner)
			}
			payload := map[string]string{"username": username, "password": password, "role": role}
			var u models.User
			if err := client.AuthCall("POST", "/users", payload, &u); err != nil {
				return err
			}
			fmt.Printf("Created %s %s (id %d)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required for admins)")
	cmd.Flags().StringVar(&role, "role", models.RoleCleaner, "admin or cleaner")
	cmd.MarkFlagRequired("username")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.AuthCall("DELETE", "/users/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Println("User deleted")
			return nil
		},
	}
}
