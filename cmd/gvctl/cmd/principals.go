package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wyd-tools/gamevault/internal/model"
)

var principalsCmd = &cobra.Command{
	Use:   "principals",
	Short: "Manage declared callers of the authority",
}

var principalsAddCmd = &cobra.Command{
	Use:   "add <role> <display-name>",
	Short: "Register a new principal and print its handle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		role := model.ParseRole(args[0])
		if role == model.RoleUnknown {
			return fmt.Errorf("unknown role %q", args[0])
		}
		p := a.facade.RegisterPrincipal(role, args[1])
		fmt.Println(color.GreenString("%s", string(p.Handle)))
		return nil
	},
}

func init() {
	principalsCmd.AddCommand(principalsAddCmd)
	rootCmd.AddCommand(principalsCmd)
}
