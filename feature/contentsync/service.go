package contentsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"pcadmin/core/catalog"
	"pcadmin/core/metrics"
	"pcadmin/core/reconcile"
	"pcadmin/core/storage"
	"pcadmin/core/utils"
	"pcadmin/feature/history"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const actionImport = "import"

// Service imports storage objects into a content catalog.
type Service struct {
	client   storage.Client
	catalog  catalog.Catalog
	fs       afero.Fs
	metrics  *metrics.Metrics
	recorder history.Recorder
	logger   *zap.Logger
}

// NewService creates a content sync service. A nil recorder disables the
// run journal and a nil fs falls back to the OS filesystem.
func NewService(client storage.Client, cat catalog.Catalog, fs afero.Fs, m *metrics.Metrics, recorder history.Recorder, logger *zap.Logger) *Service {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if recorder == nil {
		recorder = history.NopRecorder{}
	}
	return &Service{
		client:   client,
		catalog:  cat,
		fs:       fs,
		metrics:  m,
		recorder: recorder,
		logger:   logger,
	}
}

// Sync imports every matching object of the bucket that has no catalog item
// of the same name yet. Per-object failures are collected in the result;
// the returned error is set only for failures that abort the whole sync.
func (s *Service) Sync(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	run := history.NewRun(history.KindContent)

	res, err := s.sync(ctx, opts, run)

	s.metrics.IncSyncRun(metrics.SyncContent, err == nil)
	s.metrics.ObserveSyncDuration(metrics.SyncContent, time.Since(start))

	status := history.StatusSuccess
	if opts.DryRun {
		status = history.StatusDryRun
	}
	run.Finish(status, res.Summary(), err)
	if rErr := s.recorder.Record(ctx, run); rErr != nil {
		s.logger.Warn("Failed to record content sync run", zap.Error(rErr))
	}

	if err != nil {
		return res, err
	}
	s.logger.Info("Content sync finished",
		zap.String("bucket", opts.Bucket),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("imported", len(res.Imported)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("planned", len(res.Planned)),
		zap.Int("failed", len(res.Failures)),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

func (s *Service) sync(ctx context.Context, opts Options, run *history.Run) (*Result, error) {
	res := &Result{}

	exists, err := s.client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return res, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		return res, fmt.Errorf("%w: %s", ErrBucketNotFound, opts.Bucket)
	}

	candidates, err := s.candidates(ctx, opts)
	if err != nil {
		return res, err
	}
	res.Candidates = candidates
	if len(candidates) == 0 {
		return res, fmt.Errorf("%w: bucket %s, prefix %q, types %s",
			ErrNoMatchingObjects, opts.Bucket, opts.Prefix, strings.Join(opts.Suffixes, ","))
	}

	unique, duplicates := reconcile.Unique(candidates, candidateName)
	for _, c := range duplicates {
		s.fail(res, run, c, errDuplicateName)
	}

	names, err := s.catalog.ItemNames(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list catalog items: %w", err)
	}

	missing, present := reconcile.Missing(unique, reconcile.KeySet(names), candidateName)
	for _, c := range present {
		s.logger.Info("Item already in catalog, skipping", zap.String("object", c.Key), zap.String("item", c.Item.Name))
		res.Skipped = append(res.Skipped, c.Item.Name)
		run.AddEvent(c.Key, actionImport, metrics.OutcomeSkipped, c.Item.Name)
		s.metrics.IncContentObject(metrics.OutcomeSkipped)
	}

	for _, c := range missing {
		if opts.DryRun {
			s.logger.Info("Would import object", zap.String("object", c.Key), zap.String("item", c.Item.Name), zap.Int64("size", c.Size))
			res.Planned = append(res.Planned, c.Item.Name)
			run.AddEvent(c.Key, actionImport, metrics.OutcomePlanned, c.Item.Name)
			s.metrics.IncContentObject(metrics.OutcomePlanned)
			continue
		}

		if err := s.transfer(ctx, opts, c); err != nil {
			if errors.Is(err, storage.ErrUniformAccess) {
				return res, fmt.Errorf("bucket %s cannot grant public read on %s, use the staged transfer: %w", opts.Bucket, c.Key, err)
			}
			s.fail(res, run, c, err)
			continue
		}

		s.logger.Info("Imported object", zap.String("object", c.Key), zap.String("item", c.Item.Name), zap.String("strategy", opts.Strategy.String()))
		res.Imported = append(res.Imported, c.Item.Name)
		run.AddEvent(c.Key, actionImport, metrics.OutcomeImported, c.Item.Name)
		s.metrics.IncContentObject(metrics.OutcomeImported)
	}

	return res, nil
}

// candidates lists the objects whose extension is one of the allowed
// suffixes.
func (s *Service) candidates(ctx context.Context, opts Options) ([]Candidate, error) {
	var out []Candidate
	for obj := range s.client.ListObjects(ctx, opts.Bucket, minio.ListObjectsOptions{Prefix: opts.Prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", opts.Bucket, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") || !utils.HasExtension(obj.Key, opts.Suffixes) {
			continue
		}
		item := catalog.NewItem(obj.Key)
		if item.Type == "" || item.Name == "" {
			s.logger.Debug("Unsupported object type", zap.String("object", obj.Key))
			continue
		}
		out = append(out, Candidate{Key: obj.Key, Size: obj.Size, Item: item})
	}
	return out, nil
}

func (s *Service) transfer(ctx context.Context, opts Options, c Candidate) error {
	if opts.Strategy == StrategyStaged {
		return s.importStaged(ctx, opts, c)
	}
	return s.importDirect(ctx, opts, c)
}

// importDirect lets the catalog fetch the object by its public URL,
// granting public read for the duration of the import when allowed.
func (s *Service) importDirect(ctx context.Context, opts Options, c Candidate) error {
	access, err := storage.ObjectAccess(ctx, s.client, opts.Bucket, c.Key)
	if err != nil {
		return fmt.Errorf("failed to read access of %s: %w", c.Key, err)
	}
	if access.Uniform {
		return storage.ErrUniformAccess
	}

	granted := false
	if !access.Public {
		if !opts.AutoGrant {
			return errNotPublic
		}
		if err := storage.GrantPublicRead(ctx, s.client, opts.Bucket, c.Key); err != nil {
			return fmt.Errorf("failed to grant public read on %s: %w", c.Key, err)
		}
		granted = true
		s.logger.Debug("Granted public read", zap.String("object", c.Key))
	}

	if !opts.LeavePublic && (granted || opts.AlwaysRevoke) {
		defer s.revoke(ctx, opts, c.Key)
	}

	return s.catalog.CreateFromURL(ctx, c.Item, storage.PublicURL(s.client, opts.Bucket, c.Key))
}

func (s *Service) revoke(ctx context.Context, opts Options, key string) {
	if err := storage.RevokePublicRead(context.WithoutCancel(ctx), s.client, opts.Bucket, key, opts.AlwaysRevoke); err != nil {
		s.logger.Warn("Failed to revoke public read", zap.String("object", key), zap.Error(err))
		return
	}
	// A bucket-wide statement can still cover the object.
	access, err := storage.ObjectAccess(context.WithoutCancel(ctx), s.client, opts.Bucket, key)
	if err == nil && access.Public {
		s.logger.Warn("Object is still publicly readable through another policy statement", zap.String("object", key))
		return
	}
	s.logger.Debug("Revoked public read", zap.String("object", key))
}

// importStaged downloads the object into a fresh stage directory and
// uploads it from there. The directory is removed on every path.
func (s *Service) importStaged(ctx context.Context, opts Options, c Candidate) error {
	if opts.StageDir != "" {
		if err := s.fs.MkdirAll(opts.StageDir, 0o755); err != nil {
			return fmt.Errorf("failed to create stage root %s: %w", opts.StageDir, err)
		}
	}
	dir, err := afero.TempDir(s.fs, opts.StageDir, "pcadmin-")
	if err != nil {
		return fmt.Errorf("failed to create stage directory: %w", err)
	}
	defer func() {
		if err := s.fs.RemoveAll(dir); err != nil {
			s.logger.Warn("Failed to remove stage directory", zap.String("dir", dir), zap.Error(err))
		}
	}()

	path := filepath.Join(dir, c.Item.FileName)
	n, err := s.download(ctx, opts.Bucket, c.Key, path)
	if err != nil {
		return err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer f.Close()

	return s.catalog.CreateFromReader(ctx, c.Item, f, n)
}

func (s *Service) download(ctx context.Context, bucket, key, path string) (int64, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	f, err := s.fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create staged file: %w", err)
	}
	n, err := io.Copy(f, obj)
	if cErr := f.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return n, nil
}

func (s *Service) fail(res *Result, run *history.Run, c Candidate, err error) {
	s.logger.Warn("Failed to import object", zap.String("object", c.Key), zap.String("item", c.Item.Name), zap.Error(err))
	res.Failures = append(res.Failures, ItemFailure{Object: c.Key, Item: c.Item.Name, Err: err})
	run.AddEvent(c.Key, actionImport, metrics.OutcomeFailed, err.Error())
	s.metrics.IncContentObject(metrics.OutcomeFailed)
}

func candidateName(c Candidate) string {
	return c.Item.Name
}
