package main

import (
	"fmt"
	"io"
	"time"

	"github.com/personakit/personakit"
	"github.com/personakit/personakit/pkg/core"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the profile document",
	Long: `Create the directory of the profile document and, with --versioning,
a git repository around it. An existing document is left as it is.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		repo, err := personakit.Init(documentPath(), storeOptions(personakit.WithAutoInit(true))...)
		if err != nil {
			fatal("Failed to initialize profile store", err)
		}
		if c, ok := repo.(io.Closer); ok {
			defer c.Close()
		}

		ctx := changeContext()
		doc, err := repo.Load(ctx)
		if err != nil {
			fatal("Failed to read profile document", err)
		}
		if doc == nil {
			ctx = personakit.WithChangeReason(ctx, core.ChangeReason(ctx, "chore(profiles): initialize document"))
			if err := repo.Save(ctx, core.NewDocument(time.Now())); err != nil {
				fatal("Failed to write profile document", err)
			}
		}

		fmt.Println("Initialized profile store at", documentPath())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
