package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var auditRoleFilter string
var auditMaxEntries int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the mutation event stream",
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		for _, rec := range a.facade.History(auditRoleFilter, auditMaxEntries) {
			status := color.GreenString("ok")
			if !rec.Success {
				status = color.RedString("denied")
			}
			fmt.Printf("%s  %-5s  %-10s  %-10s  %s  %s\n",
				humanize.Time(rec.Timestamp), status, rec.Role, rec.Operation, rec.TargetPath, rec.DenialReason)
		}
		return nil
	},
}

var auditFlushCmd = &cobra.Command{
	Use:   "audit-flush",
	Short: "Force an immediate audit log flush to disk",
	RunE: func(cmdline *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.facade.FlushAudit(); err != nil {
			return err
		}
		fmt.Println(color.GreenString("flushed audit log"))
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditRoleFilter, "role", "", "restrict history to this role name")
	auditCmd.Flags().IntVar(&auditMaxEntries, "limit", 0, "limit the number of records returned (0 = unbounded)")
	rootCmd.AddCommand(auditCmd, auditFlushCmd)
}
