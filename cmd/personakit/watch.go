package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/personakit/personakit"
	"github.com/personakit/personakit/pkg/adapters/lifecycle"
	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-sync the context file whenever the profile document changes",
	Long: `Watch the profile document and rewrite the context file after every change,
for example an edit made by another process or by hand. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc := openStore()
		defer svc.Close()
		cf := contextFile()

		sync := func(reason string) {
			status, err := personakit.Sync(svc, cf)
			if err != nil {
				slog.Error("context sync failed", "error", err)
				return
			}
			slog.Info("context synced", "reason", reason, "profiles", status.Profiles, "length", status.ContextLength)
		}

		events, err := svc.Watch(ctx)
		if err != nil {
			fatal("Failed to watch profile document", err)
		}
		source := lifecycle.NewSource(events, svc)
		if err := source.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		sync("startup")
		fmt.Printf("Watching %s, context at %s.\n", documentPath(), cf.ContextPath)

		for e := range source.Events() {
			if change, ok := e.(lifecycle.ChangeEvent); ok && !change.ContextChanged {
				slog.Debug("context unchanged, sync skipped", "event", change.String())
				continue
			}
			sync(e.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
