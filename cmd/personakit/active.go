package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	activePriority int
	activeJSON     bool
)

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Choose which profiles shape the rendered context",
	Long: `Profiles are active either alone (set) or as a prioritized set (add).
Lower priority numbers take precedence; the first profile of the set supplies
the system prompt, tone and language of the multi-profile context.`,
}

var activeSetCmd = &cobra.Command{
	Use:   "set PROFILE",
	Short: "Make PROFILE the only active profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		ok, err := svc.SetActiveProfile(changeContext(), args[0])
		check("Failed to activate profile", ok, err)
		fmt.Printf("Profile '%s' is now active.\n", args[0])
	},
}

var activeAddCmd = &cobra.Command{
	Use:   "add PROFILE",
	Short: "Add PROFILE to the prioritized active set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		ok, err := svc.AddActiveProfile(changeContext(), args[0], activePriority)
		check("Failed to add active profile", ok, err)
		fmt.Printf("Profile '%s' active at priority %d.\n", args[0], activePriority)
	},
}

var activeRmCmd = &cobra.Command{
	Use:   "rm PROFILE",
	Short: "Remove PROFILE from the active set",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		ok, err := svc.RemoveActiveProfile(changeContext(), args[0])
		check("Failed to remove active profile", ok, err)
		fmt.Printf("Profile '%s' is no longer active.\n", args[0])
	},
}

var activePriorityCmd = &cobra.Command{
	Use:   "priority PROFILE P",
	Short: "Change the priority of an active profile",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		priority := parseInt("priority", args[1])
		svc := openStore()
		defer svc.Close()

		ok, err := svc.SetProfilePriority(changeContext(), args[0], priority)
		check("Failed to change priority", ok, err)
		fmt.Printf("Profile '%s' now at priority %d.\n", args[0], priority)
	},
}

var activeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deactivate every profile",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		ok, err := svc.ClearActiveProfiles(changeContext())
		check("Failed to clear active profiles", ok, err)
		fmt.Println("No profile is active.")
	},
}

var activeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active profiles, highest precedence first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openStore()
		defer svc.Close()

		refs := svc.ActiveProfiles()
		if activeJSON {
			printJSON(refs)
			return
		}
		if len(refs) == 0 {
			if p, ok := svc.ActiveProfile(); ok {
				fmt.Printf("%s (single)\n", p.Name)
			}
			return
		}
		for _, ref := range refs {
			fmt.Printf("%d\t%s\t%s\n", ref.Priority, ref.Name, ref.ActivatedAt.Format("2006-01-02 15:04"))
		}
	},
}

func init() {
	rootCmd.AddCommand(activeCmd)
	activeCmd.AddCommand(activeSetCmd, activeAddCmd, activeRmCmd, activePriorityCmd, activeClearCmd, activeListCmd)

	activeAddCmd.Flags().IntVarP(&activePriority, "priority", "p", 1, "Priority (lower wins)")
	activeListCmd.Flags().BoolVar(&activeJSON, "json", false, "Output in JSON format")
}
