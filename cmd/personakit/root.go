package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/personakit/personakit"
	"github.com/personakit/personakit/internal/platform"
	"github.com/personakit/personakit/pkg/core"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	docFile      string
	configFile   string
	adapter      string
	versioning   bool
	readOnly     bool
	changeReason string
	changeType   string
	locale       string

	cfg *personakit.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "personakit",
	Short: "Versioned persona profiles for chat bots",
	Long: `personakit manages the personality of a chat bot: named profiles with
numbered versions of prompt, instructions, examples, restrictions, knowledge
and reference documents. It activates profiles by priority and renders them
into the context text handed to the language model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configFile != "" {
			cfg, err = personakit.LoadConfig(configFile)
		} else {
			var wd string
			if wd, err = os.Getwd(); err == nil {
				cfg, err = platform.DiscoverConfig(wd)
			}
		}
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if cfg != nil {
			level, _ = platform.ParseLogLevel(cfg.LogLevel)
		}
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&docFile, "file", "f", "", "Profile document (default $"+personakit.EnvDocument+" or "+personakit.DefaultDocument+")")
	flags.StringVarP(&configFile, "config", "c", "", "Config file (default: nearest "+personakit.DefaultConfigFile+")")
	flags.StringVar(&adapter, "adapter", "", "Storage adapter: fs or sqlite (default: by file extension)")
	flags.BoolVar(&versioning, "versioning", false, "Commit every change to git")
	flags.BoolVar(&readOnly, "read-only", false, "Reject every change")
	flags.StringVarP(&changeReason, "message", "m", "", "Change reason recorded with the commit")
	flags.StringVar(&changeType, "change-type", "", "Conventional commit type for --message (feat, fix, docs, refactor, chore)")
	flags.StringVar(&locale, "locale", "", "Labels of the rendered context: en or es (default en)")
}

// documentPath resolves the document from flag, environment and config.
func documentPath() string {
	return personakit.ResolveDocument(docFile, cfg)
}

// storeOptions merges config file settings with the command line; flags
// that were set explicitly win.
func storeOptions(extra ...personakit.Option) []personakit.Option {
	opts := cfg.Options()
	opts = append(opts, personakit.WithLogger(slog.Default()))
	if adapter != "" {
		opts = append(opts, personakit.WithAdapter(adapter))
	}
	if rootCmd.PersistentFlags().Changed("versioning") {
		opts = append(opts, personakit.WithVersioning(versioning))
	}
	if readOnly {
		opts = append(opts, personakit.WithReadOnly(true))
	}
	if locale != "" {
		opts = append(opts, personakit.WithLocale(locale))
	}
	return append(opts, extra...)
}

// openStore opens the profile store. The caller closes it.
func openStore() *core.Service {
	svc, err := personakit.New(documentPath(), storeOptions()...)
	if err != nil {
		fatal("Failed to open profile store", err)
	}
	return svc
}

func contextFile() personakit.ContextFile {
	return personakit.OpenContextFile(documentPath(), storeOptions()...)
}

// changeContext carries the --message reason, if any. With --change-type
// the message becomes the subject of a conventional commit.
func changeContext() context.Context {
	ctx := context.Background()
	switch {
	case changeReason != "" && changeType != "":
		ctx = personakit.WithChangeReason(ctx, personakit.FormatChangeReason(changeType, "profiles", changeReason, ""))
	case changeReason != "":
		ctx = personakit.WithChangeReason(ctx, changeReason)
	}
	return ctx
}

func parseInt(what, s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fatal("Invalid "+what, err)
	}
	return n
}
