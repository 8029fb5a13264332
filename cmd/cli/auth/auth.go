package auth

import (
	"fmt"

	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/client"
	"github.com/andrei-iacobb/neatplan-sub001/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers login, register and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), registerCmd(), logoutCmd())
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// promptPassword asks on stdin when --password was not given.
func promptPassword(password string) string {
	if password != "" {
		return password
	}
	fmt.Print("Password: ")
	fmt.Scanln(&password)
	return password
}

// loginCmd creates a command that logs in a user and stores the JWT token locally.
func loginCmd() *cobra.Command {
	var username, password string
	var register bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the NeatPlan API",
		Long:  "Authenticate with the NeatPlan API and store a JWT token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("username is required")
			}
			creds := credentials{Username: username, Password: promptPassword(password)}

			// Optionally register the user first
			if register {
				if err := client.Call("POST", "/auth/register", creds, nil); err != nil {
					return fmt.Errorf("failed to register user: %w", err)
				}
			}

			var loginResp struct {
				Token string `json:"token"`
				User  struct {
					Role string `json:"role"`
				} `json:"user"`
			}
			if err := client.Call("POST", "/auth/login", creds, &loginResp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if loginResp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(loginResp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Login successful (%s). Token stored in %s\n", loginResp.User.Role, config.TokenPath())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to authenticate as")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&register, "register", false, "Register the user before logging in")

	return cmd
}

func registerCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new cleaner account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("username is required")
			}
			var user struct {
				ID   int    `json:"id"`
				Role string `json:"role"`
			}
			creds := credentials{Username: username, Password: promptPassword(password)}
			if err := client.Call("POST", "/auth/register", creds, &user); err != nil {
				return err
			}
			fmt.Printf("User %s registered (id %d, %s). You can now login.\n", username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to register")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.RemoveToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Println("No user logged in.")
				return nil
			}
			fmt.Println("Logged out successfully.")
			return nil
		},
	}
}
