// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/backend"
	"github.com/oneconcern/vcsmigrate/pkg/backend/factory"
	"github.com/oneconcern/vcsmigrate/pkg/config"
	"github.com/oneconcern/vcsmigrate/pkg/dlogger"
	"github.com/oneconcern/vcsmigrate/pkg/metrics"
	"github.com/oneconcern/vcsmigrate/pkg/migration"
	"github.com/oneconcern/vcsmigrate/pkg/source/dump"
	"github.com/oneconcern/vcsmigrate/pkg/storage/locator"
)

// appFs is patched by tests
var appFs = afero.NewOsFs()

// session bundles everything a command needs to work on a configured migration
type session struct {
	cfg       *config.Config
	l         *zap.Logger
	migration *migration.Migration
}

func loadConfig() (*config.Config, error) {
	// the configured logger is not known yet
	cfg, err := config.Load(appFs, migrateFlags.root.config, dlogger.MustGetLogger("warn"))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, interactive bool) (*zap.Logger, error) {
	return dlogger.GetLogger(cfg.LogLevel, dlogger.OutputFile(cfg.LogFile), dlogger.Console(interactive))
}

func backendFactory(cfg *config.Config, l *zap.Logger) func() (backend.Backend, error) {
	return func() (backend.Backend, error) {
		return factory.New(cfg.Backend, factory.Settings{
			Logger:         l,
			Fs:             appFs,
			GCSCredentials: cfg.GCSCredentials,
			AWSRegion:      cfg.AWSRegion,
		})
	}
}

// newSession loads the configuration then sets up the logger, metrics, source and migration
func newSession(ctx context.Context, interactive bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	l, err := newLogger(cfg, interactive)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics {
		metrics.Init(metrics.WithExporter(metrics.DefaultExporter(l)))
	}

	lopts := []locator.Option{locator.Logger(l)}
	if cfg.GCSCredentials != "" {
		lopts = append(lopts, locator.GCSCredentials(cfg.GCSCredentials))
	}
	if cfg.AWSRegion != "" {
		lopts = append(lopts, locator.AWSRegion(cfg.AWSRegion))
	}
	store, err := locator.Open(ctx, cfg.Source, lopts...)
	if err != nil {
		return nil, err
	}
	reader := dump.New(store, dump.Logger(l))

	m, err := migration.New(cfg, reader, backendFactory(cfg, l), migration.Logger(l), migration.WithFs(appFs))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, l: l, migration: m}, nil
}

func (s *session) Close() {
	if err := s.migration.Close(); err != nil {
		s.l.Warn("closing migration", zap.Error(err))
	}
	if s.cfg.Metrics {
		metrics.Flush()
	}
	_ = s.l.Sync()
}
