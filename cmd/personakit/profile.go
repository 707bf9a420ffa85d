package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/personakit/personakit/pkg/core"
	"github.com/personakit/personakit/pkg/exchange"
	"github.com/spf13/cobra"
)

var (
	profileDescription string
	profileType        string
	profileTags        []string
	profileJSON        bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create, inspect and edit profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a profile with an empty first version",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		warnUnknownType(profileType)
		svc := openStore()
		defer svc.Close()

		p, err := svc.CreateProfile(changeContext(), args[0], profileDescription, profileType)
		if err != nil {
			fatal("Failed to create profile", err)
		}
		fmt.Printf("Profile '%s' created (%s, id %s).\n", p.Name, p.Type, p.ID)
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		profiles := svc.Profiles()
		if profileJSON {
			printJSON(profiles)
			return
		}

		active := make(map[string]bool)
		for _, name := range svc.Stats().ActiveProfiles {
			active[name] = true
		}
		if p, ok := svc.ActiveProfile(); ok {
			active[p.Name] = true
		}

		for _, p := range profiles {
			marker := " "
			if active[p.Name] {
				marker = "*"
			}
			fmt.Printf("%s %s [%s] v%d/%d %s\n", marker, p.Name, p.Type, p.ActiveVersion, len(p.Versions), p.Description)
		}
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a profile as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		p, ok := svc.Profile(args[0])
		if !ok {
			fatal("Failed to show profile", fmt.Errorf("%w: %s", core.ErrProfileNotFound, args[0]))
		}
		if err := exchange.ExportProfileJSON(os.Stdout, p); err != nil {
			fatal("Failed to encode profile", err)
		}
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a profile and all its versions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		ok, err := svc.DeleteProfile(changeContext(), args[0])
		check("Failed to delete profile", ok, err)
		fmt.Printf("Profile '%s' deleted.\n", args[0])
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update NAME",
	Short: "Change description, type or tags of a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var u core.ProfileUpdate
		if cmd.Flags().Changed("description") {
			u.Description = &profileDescription
		}
		if cmd.Flags().Changed("type") {
			warnUnknownType(profileType)
			u.Type = &profileType
		}
		if cmd.Flags().Changed("tags") {
			tags := make([]string, 0, len(profileTags))
			for _, t := range profileTags {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
			u.Tags = &tags
		}
		if u.Description == nil && u.Type == nil && u.Tags == nil {
			fatal("Failed to update profile", fmt.Errorf("pass --description, --type or --tags"))
		}

		svc := openStore()
		defer svc.Close()

		ok, err := svc.UpdateProfile(changeContext(), args[0], u)
		check("Failed to update profile", ok, err)
		fmt.Printf("Profile '%s' updated.\n", args[0])
	},
}

// warnUnknownType flags a type outside the known set. The store keeps it
// as given.
func warnUnknownType(t string) {
	if t == "" || core.ValidTypes[t] {
		return
	}
	slog.Warn("unknown profile type, stored as given", "type", t, "known", strings.Join(core.KnownTypes(), ","))
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileCreateCmd, profileListCmd, profileShowCmd, profileDeleteCmd, profileUpdateCmd)

	for _, c := range []*cobra.Command{profileCreateCmd, profileUpdateCmd} {
		c.Flags().StringVarP(&profileDescription, "description", "d", "", "Profile description")
		c.Flags().StringVarP(&profileType, "type", "t", core.TypeGeneral, "Profile type (general, assistant, support, sales, catalog, custom)")
	}
	profileUpdateCmd.Flags().StringSliceVar(&profileTags, "tags", nil, "Comma separated tags")
	profileListCmd.Flags().BoolVar(&profileJSON, "json", false, "Output in JSON format")
}
