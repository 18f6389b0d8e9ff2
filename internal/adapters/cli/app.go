package cli

import (
	"context"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/infrastructure/config"
)

// App is the wired application a command runs against
type App struct {
	Config   *config.Config
	Mediator common.Mediator
	Static   industry.StaticData
	Logger   common.Logger
	closer   func() error
}

// NewApp bundles wired components. closer may be nil.
func NewApp(cfg *config.Config, m common.Mediator, static industry.StaticData, logger common.Logger, closer func() error) *App {
	return &App{
		Config:   cfg,
		Mediator: m,
		Static:   static,
		Logger:   logger,
		closer:   closer,
	}
}

// Close releases database connections, caches and log files
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// LoadOptions carry the global flags into an AppLoader
type LoadOptions struct {
	ConfigPath string
	Verbose    bool
}

// AppLoader builds the application for one command invocation
type AppLoader func(ctx context.Context, opts LoadOptions) (*App, error)
