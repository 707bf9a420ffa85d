package main

import (
	"github.com/personakit/personakit/pkg/adapters/fs"
	"github.com/spf13/cobra"
)

type statusReport struct {
	Document  string         `json:"document"`
	Component string         `json:"component"`
	Store     any            `json:"store"`
	Sync      *fs.SyncStatus `json:"sync,omitempty"`
	SyncError string         `json:"sync_error,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print store state and the last context sync as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		report := statusReport{
			Document:  documentPath(),
			Component: svc.ComponentType(),
			Store:     svc.State(),
		}
		sync, err := contextFile().Status()
		if err != nil {
			report.SyncError = err.Error()
		}
		report.Sync = sync

		printJSON(report)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
