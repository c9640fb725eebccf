package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wyd-tools/gamevault/internal/model"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect or persist role permission documents",
}

var policyShowCmd = &cobra.Command{
	Use:   "show <role>",
	Short: "Print the configured policy document for a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		role := model.ParseRole(args[0])
		if role == model.RoleUnknown {
			return fmt.Errorf("unknown role %q", args[0])
		}
		doc, ok := a.facade.PolicyDocument(role)
		if !ok {
			fmt.Println(color.YellowString("no document configured for %s", role))
			return nil
		}
		fmt.Printf("role: %s\n", role)
		fmt.Printf("  allowedRoots: %s\n", strings.Join(doc.AllowedRoots, ", "))
		fmt.Printf("  deniedRoots: %s\n", strings.Join(doc.DeniedRoots, ", "))
		fmt.Printf("  allowedExtensions: %s\n", strings.Join(doc.AllowedExtensions, ", "))
		fmt.Printf("  deniedExtensions: %s\n", strings.Join(doc.DeniedExtensions, ", "))
		fmt.Printf("  includeSubdirectories: %v\n", doc.IncludeSubdirectories)
		fmt.Printf("  defaultAllow: %v\n", doc.DefaultAllow)
		return nil
	},
}

var policySaveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Persist every configured role document to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.facade.SavePolicy(args[0]); err != nil {
			return err
		}
		fmt.Println(color.GreenString("saved policy to %s", args[0]))
		return nil
	},
}

var policyLoadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Replace configured role documents with ones read from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.facade.LoadPolicy(args[0]); err != nil {
			return err
		}
		fmt.Println(color.GreenString("loaded policy from %s", args[0]))
		return nil
	},
}

func init() {
	policyCmd.AddCommand(policyShowCmd, policySaveCmd, policyLoadCmd)
	rootCmd.AddCommand(policyCmd)
}
