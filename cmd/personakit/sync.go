package main

import (
	"fmt"
	"log/slog"

	"github.com/personakit/personakit"
	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write the rendered context for the bot process",
	Long: `Render the active profiles and write the text to the context file, with a
status record naming the profiles and the context length. A bot that does not
open the profile store reads these files instead.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		cf := contextFile()
		status, err := personakit.Sync(svc, cf)
		if err != nil {
			fatal("Failed to write context file", err)
		}
		slog.Debug("context synced", "path", cf.ContextPath, "status", cf.StatusPath)

		fmt.Printf("Context written to %s (%d chars, profiles %v).\n", cf.ContextPath, status.ContextLength, status.Profiles)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
