package main

import (
	"go.uber.org/zap"
)

type Context struct {
	Debug bool
}

var CLI struct {
	Debug bool `help:"Enable debug logging"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP server and the activity consumer"`
	Migrate MigrateCmd `cmd:"" help:"Apply the database schema"`
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
