package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Reminders CLI",
	Long: `Command line interface for the Reminders service.

API commands (reminders, login, logout, whoami) talk to API_URL.
Admin commands (migrate, seed, sessions, audit) use the same DB_* / STORAGE
environment as the server.`,
	SilenceUsage: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
