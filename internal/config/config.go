// Package config loads and validates the mediated file authority's
// construction-time configuration: a plain struct with a Default()
// constructor and a Validate() method that fills in defaults and rejects
// inconsistent values, loaded through github.com/spf13/viper so a host
// process can layer a config file, environment variables and CLI flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config controls the authority's behavior at construction time.
type Config struct {
	// GameRoot is the absolute path used as the base for relative inputs
	// and the confinement boundary.
	GameRoot string `mapstructure:"game_root"`

	// BackupRoot is the directory tree for backup storage; created if
	// missing.
	BackupRoot string `mapstructure:"backup_root"`

	// MaxBackupsPerFile is the per-origin retention cap (default 10).
	MaxBackupsPerFile int `mapstructure:"max_backups_per_file"`

	// AuditLogPath is the destination file for audit flushes.
	AuditLogPath string `mapstructure:"audit_log_path"`

	// MaxAuditEntries is the in-memory cap (default 10000).
	MaxAuditEntries int `mapstructure:"max_audit_entries"`

	// PolicyPath is the destination file for the persisted policy
	// document set.
	PolicyPath string `mapstructure:"policy_path"`

	// ServerPathPatterns are substrings (or glob patterns, if they
	// contain glob metacharacters) that mark a path as server-relevant.
	ServerPathPatterns []string `mapstructure:"server_path_patterns"`

	// ServerExtensions are extensions that always mark a path as
	// server-relevant.
	ServerExtensions []string `mapstructure:"server_extensions"`

	// ServerSyncEnabled, when false, forces requires_server_resync to
	// always be false.
	ServerSyncEnabled bool `mapstructure:"server_sync_enabled"`

	// MinStringExtractionLength is the minimum printable-ASCII run length
	// the binary analyzer emits as an extracted string.
	MinStringExtractionLength int `mapstructure:"min_string_extraction_length"`

	// RecordSizeCandidates is the order, by record size, in which the
	// binary analyzer tries its registered record layouts when the format
	// registry supplies none. Sizes with no registered layout are skipped.
	RecordSizeCandidates []int `mapstructure:"record_size_candidates"`

	// HexDumpWindow bounds how many leading bytes the analyzer includes
	// in a diagnostic hex dump.
	HexDumpWindow int `mapstructure:"hex_dump_window"`

	// FlushEveryNRecords controls how often the audit log flushes its
	// in-memory records to disk.
	FlushEveryNRecords int `mapstructure:"flush_every_n_records"`

	// WatchEnabled starts the external-modification watcher over
	// GameRoot, letting the Facade report ModifiedOnServer/Conflict for
	// paths a collaborator process rewrites outside the Facade.
	WatchEnabled bool `mapstructure:"watch_enabled"`
}

// Default returns the configuration the authority ships with before any
// file/env/flag overlay is applied.
func Default() Config {
	return Config{
		GameRoot:                  "./gamedata",
		BackupRoot:                "./gamedata-backups",
		MaxBackupsPerFile:         10,
		AuditLogPath:              "./audit-log.json",
		MaxAuditEntries:           10000,
		PolicyPath:                "./policy.json",
		ServerPathPatterns:        []string{"server", "Server", "TMSrv", "DBSrv", "Common"},
		ServerExtensions:          []string{".npc", ".mob", ".item", ".skill", ".quest", ".map"},
		ServerSyncEnabled:         true,
		MinStringExtractionLength: 4,
		RecordSizeCandidates:      []int{128, 256, 64},
		HexDumpWindow:             256,
		FlushEveryNRecords:        50,
		WatchEnabled:              false,
	}
}

// Load reads configuration from path (JSON or YAML, chosen by viper from
// the extension) layered over Default(), then overlays environment
// variables prefixed GAMEVAULT_ (e.g. GAMEVAULT_GAME_ROOT). path == ""
// returns Default() with only the environment overlay applied.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GAMEVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("game_root", def.GameRoot)
	v.SetDefault("backup_root", def.BackupRoot)
	v.SetDefault("max_backups_per_file", def.MaxBackupsPerFile)
	v.SetDefault("audit_log_path", def.AuditLogPath)
	v.SetDefault("max_audit_entries", def.MaxAuditEntries)
	v.SetDefault("policy_path", def.PolicyPath)
	v.SetDefault("server_path_patterns", def.ServerPathPatterns)
	v.SetDefault("server_extensions", def.ServerExtensions)
	v.SetDefault("server_sync_enabled", def.ServerSyncEnabled)
	v.SetDefault("min_string_extraction_length", def.MinStringExtractionLength)
	v.SetDefault("record_size_candidates", def.RecordSizeCandidates)
	v.SetDefault("hex_dump_window", def.HexDumpWindow)
	v.SetDefault("flush_every_n_records", def.FlushEveryNRecords)
	v.SetDefault("watch_enabled", def.WatchEnabled)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills in defaults for zero-valued optional fields and rejects
// inconsistent configuration.
func (c *Config) Validate() error {
	if c.GameRoot == "" {
		return fmt.Errorf("config: game_root is required")
	}
	if c.BackupRoot == "" {
		c.BackupRoot = c.GameRoot + "-backups"
	}
	if c.MaxBackupsPerFile <= 0 {
		c.MaxBackupsPerFile = 10
	}
	if c.AuditLogPath == "" {
		c.AuditLogPath = "./audit-log.json"
	}
	if c.MaxAuditEntries <= 0 {
		c.MaxAuditEntries = 10000
	}
	if c.PolicyPath == "" {
		c.PolicyPath = "./policy.json"
	}
	if c.MinStringExtractionLength <= 0 {
		c.MinStringExtractionLength = 4
	}
	if len(c.RecordSizeCandidates) == 0 {
		c.RecordSizeCandidates = []int{128, 256, 64}
	}
	if c.HexDumpWindow <= 0 {
		c.HexDumpWindow = 256
	}
	if c.FlushEveryNRecords <= 0 {
		c.FlushEveryNRecords = 50
	}
	return nil
}
