package main

import (
	"fmt"

	"github.com/personakit/personakit"
	"github.com/spf13/cobra"
)

var historyLimit int

type historian interface {
	History(n int) ([]string, error)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the latest change reasons of a versioned document",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo, err := personakit.Init(documentPath(), storeOptions()...)
		if err != nil {
			fatal("Failed to open profile store", err)
		}
		h, ok := repo.(historian)
		if !ok {
			fatal("Failed to read history", fmt.Errorf("the %T store keeps no history", repo))
		}

		entries, err := h.History(historyLimit)
		if err != nil {
			fatal("Failed to read history", err)
		}
		if len(entries) == 0 {
			fmt.Println("No history (versioning is off or nothing was committed yet).")
			return
		}
		for _, e := range entries {
			fmt.Println(e)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of entries")
}
