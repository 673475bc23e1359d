package cmd

import (
	"context"
	"errors"
	"fmt"

	"pcadmin/core/config"
	"pcadmin/core/database"
	"pcadmin/core/logger"
	"pcadmin/core/metrics"
	"pcadmin/core/vsphere"
	"pcadmin/feature/history"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// setup loads the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(envDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openRecorder returns the run journal, or a recorder that discards runs
// when the database is disabled or unreachable.
func openRecorder(cfg database.Config, l *zap.Logger) history.Recorder {
	db, err := database.Connect(cfg)
	if err != nil {
		if !errors.Is(err, database.ErrDisabled) {
			l.Warn("Optional database connection failed, runs will not be recorded", zap.Error(err))
		}
		return history.NopRecorder{}
	}
	return history.NewRecorder(db, l)
}

// connectVSphere opens a vCenter session. The returned close function logs
// out and must always be called.
func connectVSphere(ctx context.Context, cfg vsphere.Config, l *zap.Logger) (*vsphere.Session, func(), error) {
	sess, err := vsphere.Connect(ctx, cfg, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to vCenter: %w", err)
	}
	closeFn := func() {
		if err := sess.Close(context.WithoutCancel(ctx)); err != nil {
			l.Warn("Failed to log out of vCenter", zap.Error(err))
		}
	}
	return sess, closeFn, nil
}

// pushMetrics sends the run's metrics to the Pushgateway when one is
// configured.
func pushMetrics(ctx context.Context, m *metrics.Metrics, l *zap.Logger) {
	if err := m.Push(context.WithoutCancel(ctx)); err != nil {
		l.Warn("Failed to push metrics", zap.Error(err))
	}
}

// Flag values override the configuration only when set on the command line.

func overrideString(flags *pflag.FlagSet, name string, dst *string) {
	if flags.Changed(name) {
		*dst, _ = flags.GetString(name)
	}
}

func overrideBool(flags *pflag.FlagSet, name string, dst *bool) {
	if flags.Changed(name) {
		*dst, _ = flags.GetBool(name)
	}
}

func overrideInt(flags *pflag.FlagSet, name string, dst *int) {
	if flags.Changed(name) {
		*dst, _ = flags.GetInt(name)
	}
}
