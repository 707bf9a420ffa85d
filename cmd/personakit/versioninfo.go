package main

import (
	"fmt"
	"strings"

	"github.com/personakit/personakit"
	"github.com/spf13/cobra"
)

var versionInfoCmd = &cobra.Command{
	Use:   "version-info",
	Short: "Print the version number of personakit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("personakit version %s\n", strings.TrimSpace(personakit.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionInfoCmd)
}
