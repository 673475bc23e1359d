package cmd

import (
	"context"
	"errors"
	"strings"

	"pcadmin/core/catalog"
	"pcadmin/core/metrics"
	"pcadmin/core/storage"
	"pcadmin/feature/contentsync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// contentCmd is the parent command for content library operations.
var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the content library",
}

// contentSyncCmd imports storage objects into the content library.
var contentSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import OVA and ISO objects from a bucket into a content library",
	Long: `Import every OVA and ISO object of a bucket into a vCenter content library.

Objects whose base name already exists as a library item are skipped, so the
command can be re-run safely. By default the library fetches each object by
its public URL; --auto-grant makes private objects readable for the duration
of the import. Use --stage-locally for buckets that cannot grant per-object
access.

Examples:
  # Preview what would be imported
  content sync --bucket images --library templates --dry-run

  # Import private objects, revoking the grant afterwards
  content sync --bucket images --library templates --auto-grant

  # Copy through a local directory instead
  content sync --bucket images --library templates --stage-locally --stage-dir /var/tmp`,
	RunE: runContentSync,
}

func init() {
	flags := contentSyncCmd.Flags()
	flags.String("bucket", "", "Bucket holding the images")
	flags.String("prefix", "", "Only import objects whose key starts with this prefix")
	flags.String("library", "", "Target content library name or ID")
	flags.Bool("auto-grant", false, "Grant public read on private objects for the duration of the import")
	flags.Bool("always-revoke", false, "Revoke public read after the import even if the object was public before")
	flags.Bool("leave-public", false, "Keep public read grants in place after the import")
	flags.Bool("stage-locally", false, "Download each object and upload it instead of importing by URL")
	flags.String("stage-dir", "", "Parent directory of the stage directories (default: system temp)")
	flags.String("suffixes", "", "Comma separated file types to import (default: ova,iso)")
	flags.Bool("dry-run", false, "Report what would be imported without importing")

	_ = contentSyncCmd.RegisterFlagCompletionFunc("library", completeLibraries)
	_ = contentSyncCmd.MarkFlagDirname("stage-dir")

	contentCmd.AddCommand(contentSyncCmd)
	RootCmd.AddCommand(contentCmd)
}

func applyContentFlags(cmd *cobra.Command, cfg *contentsync.Config) {
	flags := cmd.Flags()
	overrideString(flags, "bucket", &cfg.Bucket)
	overrideString(flags, "prefix", &cfg.Prefix)
	overrideString(flags, "library", &cfg.Library)
	overrideBool(flags, "auto-grant", &cfg.AutoGrant)
	overrideBool(flags, "always-revoke", &cfg.AlwaysRevoke)
	overrideBool(flags, "leave-public", &cfg.LeavePublic)
	overrideBool(flags, "stage-locally", &cfg.StageLocally)
	overrideString(flags, "stage-dir", &cfg.StageDir)
	overrideString(flags, "suffixes", &cfg.Suffixes)
	overrideBool(flags, "dry-run", &cfg.DryRun)
}

func runContentSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()

	applyContentFlags(cmd, &cfg.Content)
	if cfg.Content.Bucket == "" {
		return errors.New("no bucket given, set --bucket or CONTENT_BUCKET")
	}
	if cfg.Content.Library == "" {
		return errors.New("no content library given, set --library or CONTENT_LIBRARY")
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return err
	}

	sess, closeSession, err := connectVSphere(ctx, cfg.VSphere, l)
	if err != nil {
		return err
	}
	defer closeSession()

	lib, err := catalog.NewLibrary(ctx, sess.REST(), cfg.Content.Library, l)
	if err != nil {
		return err
	}

	m := metrics.New(cfg.Metrics)
	defer pushMetrics(ctx, m, l)

	opts := cfg.Content.Options()
	l.Info("Starting content sync",
		zap.String("bucket", opts.Bucket),
		zap.String("prefix", opts.Prefix),
		zap.String("library", lib.Name()),
		zap.Stringer("strategy", opts.Strategy),
		zap.Bool("dry_run", opts.DryRun))

	svc := contentsync.NewService(client, lib, afero.NewOsFs(), m, openRecorder(cfg.Database, l), l)
	res, err := svc.Sync(ctx, opts)
	if err != nil {
		return err
	}

	printContentReport(l, res)
	return nil
}

// printContentReport logs the outcome of a content sync.
func printContentReport(l *zap.Logger, res *contentsync.Result) {
	s := res.Summary()
	l.Info("Content sync report",
		zap.Int("candidates", s.Candidates),
		zap.Int("imported", s.Imported),
		zap.Int("skipped", s.Skipped),
		zap.Int("planned", s.Planned),
		zap.Int("failed", s.Failed))

	if len(res.Planned) > 0 {
		l.Info("Would import", zap.String("items", strings.Join(res.Planned, ", ")))
	}
	for _, f := range res.Failures {
		l.Warn("Not imported", zap.String("object", f.Object), zap.String("item", f.Item), zap.Error(f.Err))
	}
}

// completeLibraries lists the content library names of the configured
// vCenter.
func completeLibraries(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := context.Background()
	cfg, l, err := setup()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	cfg.VSphere.ConnectAttempts = 1

	sess, closeSession, err := connectVSphere(ctx, cfg.VSphere, zap.NewNop())
	if err != nil {
		l.Debug("Library completion unavailable", zap.Error(err))
		return nil, cobra.ShellCompDirectiveError
	}
	defer closeSession()

	names, err := catalog.LibraryNames(ctx, sess.REST())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, toComplete) {
			out = append(out, n)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
