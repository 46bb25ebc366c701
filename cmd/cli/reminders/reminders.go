package reminders

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/reminders/cmd/cli/client"
	"github.com/crucial707/reminders/cmd/cli/config"
	"github.com/crucial707/reminders/cmd/cli/output"
	"github.com/crucial707/reminders/internal/models"
)

// InitReminders registers the reminders command group on the root command.
func InitReminders(rootCmd *cobra.Command) {
	rootCmd.AddCommand(NewRemindersCmd())
}

func NewRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List, create and show reminders",
	}
	cmd.AddCommand(listCmd(), createCmd(), getCmd())
	return cmd
}

func newClient() (*client.Client, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return client.New(config.APIURL(), token), nil
}

// ==========================
// List
// ==========================
func listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.ListReminders()
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reminders.")
				return nil
			}

			rows := make([][]interface{}, 0, len(items))
			for _, r := range items {
				rows = append(rows, []interface{}{r.ID, r.Title, r.Description, r.CreatedAt.Format("2006-01-02 15:04")})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Title", "Description", "Created"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// ==========================
// Create
// ==========================
func createCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			r, err := c.CreateReminder(models.ReminderInput{Title: title, Description: description})
			if err != nil {
				return fmt.Errorf("create reminder: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created reminder %d: %s\n", r.ID, r.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "reminder title")
	cmd.Flags().StringVar(&description, "description", "", "reminder description")
	return cmd
}

// ==========================
// Get
// ==========================
func getCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid reminder id %q", args[0])
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			r, err := c.GetReminder(id)
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), r)
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]interface{}{
				{"ID", r.ID},
				{"Title", r.Title},
				{"Description", r.Description},
				{"Created", r.CreatedAt.Format("2006-01-02 15:04:05")},
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
