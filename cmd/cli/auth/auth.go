package auth

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/reminders/cmd/cli/client"
	"github.com/crucial707/reminders/cmd/cli/config"
)

// InitAuth registers login, logout and whoami on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd(), whoamiCmd())
}

// loginCmd logs in and stores the bearer token locally.
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Reminders API",
		Long: `Authenticate with the Reminders API and store a bearer token for later commands.
The password is read from the first line of stdin when --password is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("username is required")
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			res, err := client.New(config.APIURL(), "").Login(username, password)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if err := config.SaveToken(res.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Token stored locally (expires %s).\n",
				res.User.Username, res.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

// logoutCmd ends the server session and removes the stored token.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			if token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			// the local token goes away even if the server already forgot the session
			logoutErr := client.New(config.APIURL(), token).Logout()
			if _, err := config.RemoveToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			if logoutErr != nil {
				return fmt.Errorf("server logout: %w", logoutErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user behind the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("not logged in; run 'reminders login'")
			}
			u, err := client.New(config.APIURL(), token).Me()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
}
