package contentsync

import "pcadmin/core/utils"

// Config holds the content section of the configuration.
type Config struct {
	// Bucket is the storage bucket holding the images.
	Bucket string `mapstructure:"bucket" default:""`
	// Prefix limits the listing to keys starting with it.
	Prefix string `mapstructure:"prefix" default:""`
	// Library is the target content library, by name or ID.
	Library string `mapstructure:"library" default:""`
	// AutoGrant grants public read on private objects for a direct transfer.
	AutoGrant bool `mapstructure:"auto_grant" default:"false"`
	// AlwaysRevoke revokes public read after a direct transfer even when the
	// object was public before.
	AlwaysRevoke bool `mapstructure:"always_revoke" default:"false"`
	// LeavePublic keeps any public read grant in place after the transfer.
	LeavePublic bool `mapstructure:"leave_public" default:"false"`
	// StageLocally downloads each object and uploads it instead of letting
	// the catalog fetch it by URL.
	StageLocally bool `mapstructure:"stage_locally" default:"false"`
	// StageDir is the parent of the per-object stage directories. Empty
	// means the system temp directory.
	StageDir string `mapstructure:"stage_dir" default:""`
	// Suffixes is the comma separated list of file types to import.
	Suffixes string `mapstructure:"suffixes" default:"ova,iso"`
	// DryRun reports what would be imported without transferring.
	DryRun bool `mapstructure:"dry_run" default:"false"`
}

// Options converts the configuration into sync options.
func (c Config) Options() Options {
	strategy := StrategyDirect
	if c.StageLocally {
		strategy = StrategyStaged
	}
	return Options{
		Bucket:       c.Bucket,
		Prefix:       c.Prefix,
		Suffixes:     utils.SplitList(c.Suffixes),
		Strategy:     strategy,
		AutoGrant:    c.AutoGrant,
		AlwaysRevoke: c.AlwaysRevoke,
		LeavePublic:  c.LeavePublic,
		StageDir:     c.StageDir,
		DryRun:       c.DryRun,
	}
}
