package commands

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vsinha/blend/pkg/application/services"
	"github.com/vsinha/blend/pkg/application/services/solve"
	"github.com/vsinha/blend/pkg/infrastructure/config"
	"github.com/vsinha/blend/pkg/infrastructure/events"
	"github.com/vsinha/blend/pkg/infrastructure/logging"
	"github.com/vsinha/blend/pkg/infrastructure/metrics"
	"github.com/vsinha/blend/pkg/infrastructure/solvers/branchbound"
)

// app is the wired pipeline behind one command invocation
type app struct {
	config   *config.Config
	logger   logr.Logger
	service  *services.BlendService
	events   *events.InMemoryEventStore
	registry *prometheus.Registry
}

func newApp(cmd *cobra.Command, opts *Options) (*app, error) {
	cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, err
	}

	solver := branchbound.New(branchbound.Config{
		MaxNodes:             cfg.Solver.MaxNodes,
		IntegralityTolerance: cfg.Solver.IntegralityTolerance,
		LPTolerance:          branchbound.DefaultConfig().LPTolerance,
	}, branchbound.WithLogger(logger.WithName("branchbound")))

	adapter, err := solve.NewAdapter(solver, solve.Config{
		DefaultTimeLimit: cfg.Solver.TimeLimit,
		CancelGrace:      cfg.Solver.CancelGrace,
	}, solve.WithLogger(logger.WithName("solve")), solve.WithObserver(recorder))
	if err != nil {
		return nil, err
	}

	store := events.NewInMemoryEventStore(logger.WithName("events"))
	service, err := services.NewBlendService(adapter, services.BlendConfig{
		TimeLimit:    cfg.Solver.TimeLimit,
		Tolerance:    cfg.Solver.FeasibilityTolerance,
		SweepWorkers: cfg.Sweep.Workers,
	}, services.WithEventStore(store), services.WithServiceLogger(logger.WithName("blend")))
	if err != nil {
		return nil, err
	}

	return &app{
		config:   cfg,
		logger:   logger,
		service:  service,
		events:   store,
		registry: registry,
	}, nil
}

// close drains event delivery and writes the metrics file when requested
func (a *app) close(opts *Options) error {
	a.events.Wait()
	published, _ := a.events.ReadAllEvents(0)
	a.logger.V(1).Info("Run finished", "runs", len(a.events.StreamIDs()), "events", len(published))

	if opts.MetricsFile == "" {
		return nil
	}
	file, err := os.Create(opts.MetricsFile)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer file.Close()
	return metrics.WriteText(file, a.registry)
}
