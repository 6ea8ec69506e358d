package main

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/daikitazaki/foodswho/internal/config"
	"github.com/daikitazaki/foodswho/internal/database"
)

type MigrateCmd struct {
	Timeout time.Duration `default:"30s" help:"Give up after this long"`
}

func (m *MigrateCmd) Run(cctx *Context) (err error) {
	logger := newLogger(cctx.Debug)
	defer logger.Sync() //nolint:errcheck // sync errors on stderr are not actionable

	cfg, err := config.Load()
	if err != nil {
		logger.Error("error loading config", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
	defer cancel()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Error("migration failed", zap.Error(err))
		return err
	}
	logger.Info("schema applied", zap.String("db", cfg.DBName))
	return nil
}
