package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/personakit/personakit/pkg/exchange"
	"github.com/spf13/cobra"
)

var (
	catalogName        string
	catalogDescription string
	catalogGroupBy     string
	catalogIndexBy     []string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Add profiles from JSON, CSV or product catalog files",
	Long: `Imported profiles never overwrite existing ones: a taken name is stored as
NAME_1, NAME_2 and so on. Files that cannot be read are reported and skipped.`,
}

var importJSONCmd = &cobra.Command{
	Use:   "json FILE",
	Short: "Import one profile exported as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		importOne(args[0], exchange.ImportProfileJSON)
	},
}

var importCSVCmd = &cobra.Command{
	Use:   "csv FILE",
	Short: "Import one profile from a field,value sheet",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		importOne(args[0], exchange.ImportProfileCSV)
	},
}

var importAllCmd = &cobra.Command{
	Use:   "all FILE",
	Short: "Import every row of an all-profiles sheet",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		f := openInput(args[0])
		defer f.Close()

		names := exchange.ImportProfilesCSV(changeContext(), svc, f)
		reportImported(names)
	},
}

var importCatalogCmd = &cobra.Command{
	Use:   "catalog FILE",
	Short: "Build a sales profile from a product catalog sheet",
	Long: `Build a sales profile from a product sheet with columns such as code, name,
category, subcategory, brand, price, stock and description. Each product
becomes a knowledge entry; a summary and a cross index become documents.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := exchange.CatalogOptions{
			ProfileName: catalogName,
			Description: catalogDescription,
			GroupBy:     catalogGroupBy,
		}
		if len(catalogIndexBy) > 0 {
			if len(catalogIndexBy) != 2 {
				fatal("Invalid --index-by", fmt.Errorf("want two columns, got %d", len(catalogIndexBy)))
			}
			opts.IndexBy = [2]string{catalogIndexBy[0], catalogIndexBy[1]}
		}

		importOne(args[0], func(ctx context.Context, store exchange.Store, r io.Reader) (string, bool) {
			return exchange.ImportCatalogCSV(ctx, store, r, opts)
		})
	},
}

var importGlobCmd = &cobra.Command{
	Use:   "glob PATTERN",
	Short: "Import every .json and .csv file matching PATTERN",
	Long:  `Import every .json and .csv file matching PATTERN. Quote the pattern so ** reaches the program: 'profiles/**/*.json'.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		names, err := exchange.ImportGlob(changeContext(), svc, args[0])
		if err != nil {
			fatal("Failed to import", err)
		}
		reportImported(names)
	},
}

type importFunc func(ctx context.Context, store exchange.Store, r io.Reader) (string, bool)

func importOne(path string, fn importFunc) {
	svc := openStore()
	defer svc.Close()

	f := openInput(path)
	defer f.Close()

	name, ok := fn(changeContext(), svc, f)
	if !ok {
		fatal("Failed to import "+path, fmt.Errorf("no profile stored, see log"))
	}
	fmt.Printf("Imported profile '%s'.\n", name)
}

func openInput(path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		fatal("Failed to open input", err)
	}
	return f
}

func reportImported(names []string) {
	if len(names) == 0 {
		fatal("Failed to import", fmt.Errorf("no profile stored, see log"))
	}
	fmt.Printf("Imported %d profiles: %s.\n", len(names), strings.Join(names, ", "))
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importJSONCmd, importCSVCmd, importAllCmd, importCatalogCmd, importGlobCmd)

	f := importCatalogCmd.Flags()
	f.StringVar(&catalogName, "name", "", "Profile name (default Product Catalog)")
	f.StringVar(&catalogDescription, "description", "", "Profile description")
	f.StringVar(&catalogGroupBy, "group-by", "", "Column the summary groups by (default category)")
	f.StringSliceVar(&catalogIndexBy, "index-by", nil, "Two columns of the cross index (default subcategory,brand)")
}
