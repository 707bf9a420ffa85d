package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	renderMulti  bool
	renderStored bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the context text of the active profile",
	Long: `Print the context text of the active profile. With --multi, render every
profile of the prioritized active set instead. With --stored, print what a
bot reading the context file sees, rendering live only when no sync has
written it yet.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		if renderStored {
			text, err := contextFile().Resolve(svc.RenderMultiContext)
			if err != nil {
				fatal("Failed to read context file", err)
			}
			fmt.Println(text)
			return
		}
		if renderMulti {
			fmt.Println(svc.RenderMultiContext())
			return
		}
		fmt.Println(svc.RenderContext())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().BoolVar(&renderMulti, "multi", false, "Render all prioritized active profiles")
	renderCmd.Flags().BoolVar(&renderStored, "stored", false, "Print the synced context file")
}
