package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <json-path> <binary-dst>",
	Short: "Compile a decompiled JSON document back into its binary format",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		outcome := a.facade.CompileJSONToBinary(context.Background(), a.console, args[0], args[1])
		if !outcome.Success {
			printOutcomeErr("compile", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("compiled %s -> %s", outcome.OriginPath, outcome.NewPath))
		return nil
	},
}

var decompileCmd = &cobra.Command{
	Use:   "decompile <binary-path> <json-dst>",
	Short: "Decompile a recognized binary file into an editable JSON document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		outcome := a.facade.DecompileBinaryToJSON(context.Background(), a.console, args[0], args[1])
		if !outcome.Success {
			printOutcomeErr("decompile", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("decompiled %s -> %s", outcome.OriginPath, outcome.NewPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compileCmd, decompileCmd)
}
