package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wyd-tools/gamevault/internal/audit"
	"github.com/wyd-tools/gamevault/internal/authority"
	"github.com/wyd-tools/gamevault/internal/backupstore"
	"github.com/wyd-tools/gamevault/internal/binaryfmt"
	"github.com/wyd-tools/gamevault/internal/config"
	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/mutation"
	"github.com/wyd-tools/gamevault/internal/policy"
	"github.com/wyd-tools/gamevault/internal/principal"
	"github.com/wyd-tools/gamevault/internal/registry"
	"github.com/wyd-tools/gamevault/internal/reporter"
	"github.com/wyd-tools/gamevault/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "gvctl",
	Short:   "Mediated access to a game server's file tree",
	Version: version.Get().String(),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a gvctl config file")
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

// app bundles every wired component a subcommand needs.
type app struct {
	cfg     config.Config
	facade  *authority.Facade
	console model.PrincipalHandle
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	log := logrus.New()
	report := reporter.NewLogrus(log)

	backups, err := backupstore.New(fs, cfg.BackupRoot, cfg.MaxBackupsPerFile, report)
	if err != nil {
		return nil, err
	}

	formats := registry.New()

	analyzer := binaryfmt.New(binaryfmt.Config{
		MinStringLength:      cfg.MinStringExtractionLength,
		RecordSizeCandidates: cfg.RecordSizeCandidates,
		HexDumpWindow:        cfg.HexDumpWindow,
		Formats:              formats,
	})
	if err := analyzer.RegisterLayout(model.BinaryItemList, registry.ItemListLayout); err != nil {
		return nil, err
	}
	if err := analyzer.RegisterLayout(model.BinaryServerList, registry.ServerListLayout); err != nil {
		return nil, err
	}
	if err := analyzer.RegisterLayout(model.BinarySkillData, registry.SkillDataLayout); err != nil {
		return nil, err
	}

	mutEngine := mutation.New(fs, backups, analyzer, mutation.Config{
		ServerPathPatterns: cfg.ServerPathPatterns,
		ServerExtensions:   cfg.ServerExtensions,
		SyncEnabled:        cfg.ServerSyncEnabled,
	})

	pol := policy.New()
	if exists, _ := afero.Exists(fs, cfg.PolicyPath); exists {
		if err := pol.Load(cfg.PolicyPath); err != nil {
			return nil, err
		}
	} else {
		pol.LoadDefaults(cfg.GameRoot)
	}

	auditLog := audit.New(audit.Config{
		Path:        cfg.AuditLogPath,
		MaxEntries:  cfg.MaxAuditEntries,
		FlushEveryN: cfg.FlushEveryNRecords,
	}, report)

	principals := principal.New()
	facade := authority.New(cfg.GameRoot, fs, pol, mutEngine, backups, analyzer, auditLog, principals, report)

	if cfg.WatchEnabled {
		if watcher, err := authority.NewWatcher(cfg.GameRoot, report); err != nil {
			report.Warn("gvctl: failed to start server-sync watcher", reporter.Fields{"error": err})
		} else {
			facade.AttachWatcher(watcher)
		}
	}

	console := facade.RegisterPrincipal(model.RoleAdmin, "gvctl-console")

	return &app{cfg: cfg, facade: facade, console: console}, nil
}
