package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	versionBase int
	versionJSON bool

	setSystemPrompt string
	setContext      string
	setInstructions []string
	setExamples     []string
	setRestrictions []string
	setTone         string
	setLanguage     string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Manage the numbered versions of a profile",
}

var versionCreateCmd = &cobra.Command{
	Use:   "create PROFILE",
	Short: "Copy a version into a new one",
	Long:  `Copy --base (default: the active version) into a new version numbered one past the highest.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		n, err := svc.CreateVersion(changeContext(), args[0], versionBase)
		if err != nil {
			fatal("Failed to create version", err)
		}
		fmt.Printf("Version %d of '%s' created.\n", n, args[0])
	},
}

var versionActivateCmd = &cobra.Command{
	Use:   "activate PROFILE N",
	Short: "Make version N the active version of a profile",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		n := parseInt("version", args[1])
		svc := openStore()
		defer svc.Close()

		ok, err := svc.ActivateVersion(changeContext(), args[0], n)
		check("Failed to activate version", ok, err)
		fmt.Printf("Version %d of '%s' is now active.\n", n, args[0])
	},
}

var versionDeleteCmd = &cobra.Command{
	Use:   "delete PROFILE N",
	Short: "Delete a version that is neither active nor the only one",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		n := parseInt("version", args[1])
		svc := openStore()
		defer svc.Close()

		ok, err := svc.DeleteVersion(changeContext(), args[0], n)
		check("Failed to delete version", ok, err)
		fmt.Printf("Version %d of '%s' deleted.\n", n, args[0])
	},
}

var versionSetCmd = &cobra.Command{
	Use:   "set PROFILE N",
	Short: "Overwrite content fields of a version",
	Long: `Overwrite the fields given as flags. List flags replace the whole list
and may be repeated: --instruction "Greet" --instruction "Offer help".`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		n := parseInt("version", args[1])

		fields := make(map[string]any)
		flags := cmd.Flags()
		if flags.Changed("system-prompt") {
			fields["system_prompt"] = setSystemPrompt
		}
		if flags.Changed("context") {
			fields["context"] = setContext
		}
		if flags.Changed("instruction") {
			fields["instructions"] = setInstructions
		}
		if flags.Changed("example") {
			fields["examples"] = setExamples
		}
		if flags.Changed("restriction") {
			fields["restrictions"] = setRestrictions
		}
		if flags.Changed("tone") {
			fields["tone"] = setTone
		}
		if flags.Changed("language") {
			fields["language"] = setLanguage
		}
		if len(fields) == 0 {
			fatal("Failed to update version", fmt.Errorf("no fields given"))
		}

		svc := openStore()
		defer svc.Close()

		ok, err := svc.UpdateVersionContent(changeContext(), args[0], n, fields)
		check("Failed to update version", ok, err)
		fmt.Printf("Version %d of '%s' updated (%d fields).\n", n, args[0], len(fields))
	},
}

var versionShowCmd = &cobra.Command{
	Use:   "show PROFILE [N]",
	Short: "Print a version, the active one by default",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		p, ok := svc.Profile(args[0])
		if !ok {
			fatal("Failed to show version", errNoChange)
		}
		n := p.ActiveVersion
		if len(args) == 2 {
			n = parseInt("version", args[1])
		}
		v, ok := svc.Version(args[0], n)
		if !ok {
			fatal("Failed to show version", fmt.Errorf("version %d of '%s' not found", n, args[0]))
		}
		if versionJSON {
			printJSON(v)
			return
		}

		active := ""
		if n == p.ActiveVersion {
			active = " (active)"
		}
		fmt.Printf("%s v%d%s, created %s\n", p.Name, v.Version, active, v.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("versions: %v\n", p.VersionNumbers())
		fmt.Printf("tone: %s, language: %s\n", v.Tone, v.Language)
		if v.SystemPrompt != "" {
			fmt.Printf("system prompt: %s\n", v.SystemPrompt)
		}
		if v.Context != "" {
			fmt.Printf("context: %s\n", v.Context)
		}
		fmt.Printf("instructions: %d, examples: %d, restrictions: %d\n", len(v.Instructions), len(v.Examples), len(v.Restrictions))
		if keys := v.KnowledgeKeys(); len(keys) > 0 {
			fmt.Printf("knowledge: %s\n", strings.Join(keys, ", "))
		}
		for i, d := range v.Documents {
			fmt.Printf("document %d: %s (%s, %d chars)\n", i, d.Name, d.Type, len([]rune(d.Content)))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.AddCommand(versionCreateCmd, versionActivateCmd, versionDeleteCmd, versionSetCmd, versionShowCmd)

	versionCreateCmd.Flags().IntVar(&versionBase, "base", 0, "Version to copy (default: active)")
	versionShowCmd.Flags().BoolVar(&versionJSON, "json", false, "Output in JSON format")

	f := versionSetCmd.Flags()
	f.StringVar(&setSystemPrompt, "system-prompt", "", "System prompt")
	f.StringVar(&setContext, "context", "", "Context")
	f.StringArrayVar(&setInstructions, "instruction", nil, "Instruction (repeatable)")
	f.StringArrayVar(&setExamples, "example", nil, "Example (repeatable)")
	f.StringArrayVar(&setRestrictions, "restriction", nil, "Restriction (repeatable)")
	f.StringVar(&setTone, "tone", "", "Tone (professional, friendly, formal, casual, technical)")
	f.StringVar(&setLanguage, "language", "", "Language (spanish, english, portuguese)")
}
