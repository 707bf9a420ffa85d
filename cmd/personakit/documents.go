package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	docName     string
	docContent  string
	docFromFile string
	docType     string
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage reference documents of a version",
}

var docAddCmd = &cobra.Command{
	Use:   "add PROFILE N",
	Short: "Append a reference document",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		n := parseInt("version", args[1])

		content := docContent
		if docFromFile != "" {
			data, err := os.ReadFile(docFromFile)
			if err != nil {
				fatal("Failed to read document", err)
			}
			content = string(data)
		}

		svc := openStore()
		defer svc.Close()

		ok, err := svc.AddDocument(changeContext(), args[0], n, docName, content, docType)
		check("Failed to add document", ok, err)
		fmt.Printf("Document '%s' added to %s v%d.\n", docName, args[0], n)
	},
}

var docRmCmd = &cobra.Command{
	Use:   "rm PROFILE N INDEX",
	Short: "Remove the reference document at INDEX (0-based)",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		n := parseInt("version", args[1])
		index := parseInt("index", args[2])

		svc := openStore()
		defer svc.Close()

		ok, err := svc.RemoveDocument(changeContext(), args[0], n, index)
		check("Failed to remove document", ok, err)
		fmt.Printf("Document %d removed from %s v%d.\n", index, args[0], n)
	},
}

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the knowledge base of a version",
}

var kbSetCmd = &cobra.Command{
	Use:   "set PROFILE N KEY VALUE",
	Short: "Add or replace a knowledge entry",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		n := parseInt("version", args[1])
		svc := openStore()
		defer svc.Close()

		ok, err := svc.AddKnowledge(changeContext(), args[0], n, args[2], args[3])
		check("Failed to set knowledge", ok, err)
		fmt.Printf("Knowledge '%s' set on %s v%d.\n", args[2], args[0], n)
	},
}

var kbRmCmd = &cobra.Command{
	Use:   "rm PROFILE N KEY",
	Short: "Remove a knowledge entry",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		n := parseInt("version", args[1])
		svc := openStore()
		defer svc.Close()

		ok, err := svc.RemoveKnowledge(changeContext(), args[0], n, args[2])
		check("Failed to remove knowledge", ok, err)
		fmt.Printf("Knowledge '%s' removed from %s v%d.\n", args[2], args[0], n)
	},
}

func init() {
	rootCmd.AddCommand(docCmd, kbCmd)
	docCmd.AddCommand(docAddCmd, docRmCmd)
	kbCmd.AddCommand(kbSetCmd, kbRmCmd)

	docAddCmd.Flags().StringVar(&docName, "name", "", "Document name")
	docAddCmd.Flags().StringVar(&docContent, "content", "", "Document content")
	docAddCmd.Flags().StringVar(&docFromFile, "from", "", "Read content from a file")
	docAddCmd.Flags().StringVar(&docType, "type", "", "Document type (default text)")
	docAddCmd.MarkFlagRequired("name")
	docAddCmd.MarkFlagsMutuallyExclusive("content", "from")
}
