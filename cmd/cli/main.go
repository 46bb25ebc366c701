package main

import (
	"fmt"
	"os"

	"github.com/crucial707/reminders/cmd/cli/admin"
	"github.com/crucial707/reminders/cmd/cli/auth"
	"github.com/crucial707/reminders/cmd/cli/reminders"
	"github.com/crucial707/reminders/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	reminders.InitReminders(rootCmd)
	auth.InitAuth(rootCmd)
	admin.InitAdmin(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
