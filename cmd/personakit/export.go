package main

import (
	"fmt"
	"io"
	"os"

	"github.com/personakit/personakit/pkg/core"
	"github.com/personakit/personakit/pkg/exchange"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportStrict bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write profiles as JSON or CSV",
}

var exportJSONCmd = &cobra.Command{
	Use:   "json PROFILE",
	Short: "Export one profile with all its versions as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		p := mustProfile(svc, args[0])
		withOutput(func(w io.Writer) error { return exchange.ExportProfileJSON(w, p) })
	},
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv PROFILE",
	Short: "Export the active version of one profile as a field,value sheet",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		p := mustProfile(svc, args[0])
		opts := exchange.Options{Strict: exportStrict, Logger: svc.Logger()}
		withOutput(func(w io.Writer) error { return exchange.WriteProfileCSV(w, p, opts) })
	},
}

var exportAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Export the active version of every profile, one row each",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		opts := exchange.Options{Strict: exportStrict, Logger: svc.Logger()}
		withOutput(func(w io.Writer) error { return exchange.WriteProfilesCSV(w, svc.Profiles(), opts) })
	},
}

func mustProfile(svc *core.Service, name string) *core.Profile {
	p, ok := svc.Profile(name)
	if !ok {
		fatal("Failed to export profile", fmt.Errorf("%w: %s", core.ErrProfileNotFound, name))
	}
	return p
}

// withOutput writes to --output, or stdout when it is empty.
func withOutput(write func(io.Writer) error) {
	if exportOutput == "" {
		if err := write(os.Stdout); err != nil {
			fatal("Failed to export", err)
		}
		return
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		fatal("Failed to create output file", err)
	}
	if err := write(f); err != nil {
		f.Close()
		fatal("Failed to export", err)
	}
	if err := f.Close(); err != nil {
		fatal("Failed to write output file", err)
	}
	fmt.Fprintf(os.Stderr, "Exported to %s.\n", exportOutput)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportJSONCmd, exportCSVCmd, exportAllCmd)

	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.PersistentFlags().BoolVar(&exportStrict, "strict", false, "Fail when a value contains a CSV list delimiter")
}
