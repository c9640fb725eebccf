package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncStateCmd = &cobra.Command{
	Use:   "sync-state <path>",
	Short: "Report the watcher's last known server-sync state for a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		state := a.facade.ServerSyncState(args[0])
		fmt.Println(color.CyanString(state.String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncStateCmd)
}
