package auth

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/microblog/cmd/cli/client"
	"github.com/crucial707/microblog/cmd/cli/config"
)

// InitAuth registers auth-related CLI commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd(), registerCmd(), resetPasswordCmd())
}

// loginCmd creates a command that logs in a user and stores the JWT token locally.
func loginCmd() *cobra.Command {
	var username, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Microblog",
		Long:  "Authenticate with the Microblog API and store a JWT token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				username = prompt(in, "Username: ")
			}
			if password == "" {
				password = prompt(in, "Password: ")
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			var resp struct {
				Token string `json:"token"`
			}
			payload := map[string]any{"username": username, "password": password, "remember_me": remember}
			if err := client.Call("POST", "/auth/login", payload, &resp, false); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if resp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(resp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Request a long-lived token")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.ClearToken()
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

func registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if password == "" {
				password = prompt(in, "Password: ")
			}
			payload := map[string]string{
				"username":  username,
				"email":     email,
				"password":  password,
				"password2": password,
			}
			if err := client.Call("POST", "/auth/register", payload, nil, false); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			fmt.Println("Congratulations, you are now a registered user! Run `microblog login` to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

// resetPasswordCmd covers both halves of the reset flow: with --email it asks
// for a reset link, with --token it sets the new password.
func resetPasswordCmd() *cobra.Command {
	var email, token, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email, or complete a reset with --token",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case email != "" && token != "":
				return fmt.Errorf("use either --email or --token, not both")
			case email != "":
				var resp struct {
					Message string `json:"message"`
				}
				if err := client.Call("POST", "/auth/reset-password-request", map[string]string{"email": email}, &resp, false); err != nil {
					return err
				}
				fmt.Println(resp.Message)
				return nil
			case token != "":
				if password == "" {
					password = prompt(bufio.NewReader(cmd.InOrStdin()), "New password: ")
				}
				payload := map[string]string{"token": token, "password": password, "password2": password}
				var resp struct {
					Message string `json:"message"`
				}
				if err := client.Call("POST", "/auth/reset-password", payload, &resp, false); err != nil {
					return err
				}
				fmt.Println(resp.Message)
				return nil
			default:
				return fmt.Errorf("--email or --token is required")
			}
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address to send the reset link to")
	cmd.Flags().StringVar(&token, "token", "", "Reset token from the email link")
	cmd.Flags().StringVar(&password, "password", "", "New password (prompted when omitted)")
	return cmd
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimSpace(line)
}
