package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wyd-tools/gamevault/internal/model"
)

var backupsForPath string

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List tracked backups",
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if backupsForPath != "" {
			printBackupList(a.facade.ListBackupsFor(backupsForPath))
			return nil
		}

		grouped := a.facade.ListAllBackups()
		hashes := make([]string, 0, len(grouped))
		for h := range grouped {
			hashes = append(hashes, h)
		}
		sort.Strings(hashes)
		for _, h := range hashes {
			printBackupList(grouped[h])
		}
		return nil
	},
}

func printBackupList(entries []model.BackupEntry) {
	for _, e := range entries {
		fmt.Printf("%s  %-10s  %s  %s\n",
			humanize.Time(e.CreatedAt), e.OperationName, e.OriginPath, e.BackupPath)
	}
}

var pruneKeepCount int
var pruneOlderThan time.Duration

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove backups beyond the retention policy",
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		cutoff := time.Time{}
		if pruneOlderThan > 0 {
			cutoff = time.Now().Add(-pruneOlderThan)
		}
		removed := a.facade.Prune(pruneKeepCount, cutoff)
		fmt.Println(color.YellowString("pruned %d backup(s)", removed))
		return nil
	},
}

var restoreTargetAlt string
var restoreToOriginal bool

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-path> <origin-path>",
	Short: "Restore a file's content from a tracked backup",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		backupPath, originPath := args[0], args[1]

		var entry model.BackupEntry
		found := false
		for _, e := range a.facade.ListBackupsFor(originPath) {
			if e.BackupPath == backupPath {
				entry = e
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no tracked backup %q for %q", backupPath, originPath)
		}

		toOriginal := restoreToOriginal && restoreTargetAlt == ""
		outcome := a.facade.RestoreFromBackup(context.Background(), a.console, backupPath, entry, toOriginal, restoreTargetAlt)
		if !outcome.Success {
			printOutcomeErr("restore", backupPath, fmt.Errorf("%s", outcome.Message))
		}
		fmt.Println(color.GreenString("restored %s", outcome.OriginPath))
		return nil
	},
}

func init() {
	backupsCmd.Flags().StringVar(&backupsForPath, "for", "", "restrict listing to backups of this origin path")
	pruneCmd.Flags().IntVar(&pruneKeepCount, "keep", 0, "keep at most this many backups per origin file (0 = unbounded)")
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "also remove backups older than this duration")
	restoreCmd.Flags().BoolVar(&restoreToOriginal, "to-original", true, "restore content back to the original path")
	restoreCmd.Flags().StringVar(&restoreTargetAlt, "to", "", "restore content to an alternate path instead")

	rootCmd.AddCommand(backupsCmd, pruneCmd, restoreCmd)
}
