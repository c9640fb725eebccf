package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func printOutcomeErr(action, path string, err error) {
	fmt.Fprintln(os.Stderr, color.RedString("%s %s failed: %v", action, path, err))
	os.Exit(1)
}

var createCmd = &cobra.Command{
	Use:   "create <path> <content-file>",
	Short: "Create a new file under the game root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		outcome := a.facade.Create(context.Background(), a.console, args[0], content)
		if !outcome.Success {
			printOutcomeErr("create", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("created %s", outcome.OriginPath))
		return nil
	},
}

var modifyCmd = &cobra.Command{
	Use:   "modify <path> <content-file>",
	Short: "Overwrite an existing file, backing up its prior content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		outcome := a.facade.Modify(context.Background(), a.console, args[0], content)
		if !outcome.Success {
			printOutcomeErr("modify", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("modified %s (backup: %s)", outcome.OriginPath, outcome.BackupPath))
		return nil
	},
}

var modifyPartCmd = &cobra.Command{
	Use:   "modify-part <path> <old> <new>",
	Short: "Replace the first literal occurrence of old with new",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		outcome := a.facade.ModifyPart(context.Background(), a.console, args[0], args[1], args[2])
		if !outcome.Success {
			printOutcomeErr("modify-part", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("modified %s", outcome.OriginPath))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Delete a file, backing up its content first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		outcome := a.facade.Delete(context.Background(), a.console, args[0])
		if !outcome.Success {
			printOutcomeErr("delete", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("deleted %s (backup: %s)", outcome.OriginPath, outcome.BackupPath))
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <src> <dst>",
	Short: "Move a file within the game root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		outcome := a.facade.Move(context.Background(), a.console, args[0], args[1])
		if !outcome.Success {
			printOutcomeErr("move", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("moved %s -> %s", outcome.OriginPath, outcome.NewPath))
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <src> <dst>",
	Short: "Copy a file within the game root",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		outcome := a.facade.Copy(context.Background(), a.console, args[0], args[1])
		if !outcome.Success {
			printOutcomeErr("copy", args[0], fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("copied %s -> %s", outcome.OriginPath, outcome.NewPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd, modifyCmd, modifyPartCmd, deleteCmd, moveCmd, copyCmd)
}
