package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/vsinha/blend/pkg/application/dto"
	"github.com/vsinha/blend/pkg/application/services/diagnostics"
	"github.com/vsinha/blend/pkg/application/services/interpret"
	"github.com/vsinha/blend/pkg/application/services/solve"
	"github.com/vsinha/blend/pkg/domain/entities"
	"github.com/vsinha/blend/pkg/domain/milp"
	domainservices "github.com/vsinha/blend/pkg/domain/services"
	"github.com/vsinha/blend/pkg/infrastructure/events"
)

// BlendConfig holds run-level settings
type BlendConfig struct {
	// TimeLimit per solve; 0 uses the adapter default
	TimeLimit time.Duration
	// Tolerance for re-checking solver outcomes; 0 uses interpret.DefaultTolerance
	Tolerance float64
	// SweepWorkers bounds parallel solves in Sweep when the caller passes 0
	SweepWorkers int
}

// BlendService runs the build, solve and interpret pipeline for blend instances
type BlendService struct {
	config      BlendConfig
	builder     *domainservices.FormulationBuilder
	validator   *domainservices.InstanceValidator
	adapter     *solve.Adapter
	interpreter *interpret.Interpreter
	analyzer    *diagnostics.Analyzer
	eventStore  events.EventStore
	logger      logr.Logger
}

// BlendOption configures a BlendService
type BlendOption func(*BlendService)

// WithEventStore publishes run events to store
func WithEventStore(store events.EventStore) BlendOption {
	return func(s *BlendService) {
		s.eventStore = store
	}
}

// WithServiceLogger sets the service logger
func WithServiceLogger(logger logr.Logger) BlendOption {
	return func(s *BlendService) {
		s.logger = logger
	}
}

// NewBlendService creates a blend service around a solve adapter
func NewBlendService(adapter *solve.Adapter, config BlendConfig, opts ...BlendOption) (*BlendService, error) {
	if adapter == nil {
		return nil, fmt.Errorf("solve adapter cannot be nil")
	}
	if config.SweepWorkers <= 0 {
		config.SweepWorkers = 4
	}
	s := &BlendService{
		config:      config,
		builder:     domainservices.NewFormulationBuilder(),
		validator:   domainservices.NewInstanceValidator(),
		adapter:     adapter,
		interpreter: interpret.NewInterpreter(config.Tolerance),
		analyzer:    diagnostics.NewAnalyzer(),
		logger:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run finds the cheapest blend for instance. Infeasible and unbounded
// instances return *interpret.InfeasibleError or *interpret.UnboundedError
// with ranked diagnostics attached.
func (s *BlendService) Run(ctx context.Context, instance *entities.ProblemInstance) (*dto.BlendResult, error) {
	runID := uuid.NewString()
	logger := s.logger.WithValues("run", runID)

	f, err := s.builder.Build(instance)
	if err != nil {
		s.fail(runID, "build", err, nil)
		return nil, fmt.Errorf("failed to build formulation: %w", err)
	}
	s.publish(runID, events.FormulationBuiltEvent, events.FormulationBuilt{
		Ingredients:  len(instance.Ingredients),
		Variables:    len(f.Variables),
		Constraints:  len(f.Constraints),
		UnboundedCap: f.Metadata.UnboundedCap,
	})
	validation := s.validator.Validate(instance)
	for _, warning := range validation.Warnings {
		logger.Info("Instance warning", "warning", warning)
	}
	for _, note := range validation.Notes {
		logger.V(1).Info("Instance note", "note", note)
	}

	if len(instance.Ingredients) == 0 {
		infeasible := &interpret.InfeasibleError{
			Outcome:     &milp.SolveOutcome{Status: milp.StatusInfeasible, Message: "no ingredients"},
			Diagnostics: s.analyzer.Infeasible(instance),
		}
		s.fail(runID, "build", infeasible, infeasible.Diagnostics)
		return nil, infeasible
	}

	outcome, err := s.adapter.Solve(ctx, f, s.config.TimeLimit)
	if err != nil {
		s.fail(runID, "solve", err, nil)
		return nil, err
	}
	s.publish(runID, events.SolveCompletedEvent, events.SolveCompleted{
		Solver:    outcome.Solver,
		Status:    outcome.Status.String(),
		Objective: outcome.Objective,
		Nodes:     outcome.Nodes,
		Elapsed:   outcome.Elapsed,
	})

	result, err := s.interpreter.Interpret(instance, f, outcome)
	if err != nil {
		var report *dto.DiagnosticReport
		var infeasible *interpret.InfeasibleError
		var unbounded *interpret.UnboundedError
		switch {
		case errors.As(err, &infeasible):
			infeasible.Diagnostics = s.analyzer.Infeasible(instance)
			report = infeasible.Diagnostics
		case errors.As(err, &unbounded):
			unbounded.Diagnostics = s.analyzer.Unbounded(instance, f)
			report = unbounded.Diagnostics
		}
		s.fail(runID, "interpret", err, report)
		return nil, err
	}

	s.publish(runID, events.ResultInterpretedEvent, events.ResultInterpreted{
		TotalCost:     result.TotalCost.String(),
		TotalQuantity: result.TotalQuantity,
		DistinctCount: result.DistinctCount,
	})
	logger.V(1).Info("Blend solved",
		"cost", result.TotalCost.StringFixed(2),
		"quantity", result.TotalQuantity,
		"distinct", result.DistinctCount)
	return result, nil
}

// Diagnose runs the diagnostic rules on an instance without solving it
func (s *BlendService) Diagnose(instance *entities.ProblemInstance) (*dto.DiagnosticReport, error) {
	if instance == nil {
		return nil, fmt.Errorf("instance cannot be nil")
	}
	if err := instance.Validate(); err != nil {
		return nil, err
	}
	return s.analyzer.Infeasible(instance), nil
}

// Validate reports hard errors and advisory warnings for an instance
func (s *BlendService) Validate(instance *entities.ProblemInstance) *domainservices.ValidationReport {
	return s.validator.Validate(instance)
}

func (s *BlendService) publish(runID, eventType string, data any) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(runID, events.NewEvent(eventType, runID, data)); err != nil {
		s.logger.Error(err, "Failed to publish event", "type", eventType, "run", runID)
	}
}

func (s *BlendService) fail(runID, stage string, err error, report *dto.DiagnosticReport) {
	payload := events.RunFailed{Stage: stage, Error: err.Error()}
	if cause, ok := report.Top(); ok {
		payload.TopCause = string(cause.Code)
	}
	s.publish(runID, events.RunFailedEvent, payload)
	s.logger.V(1).Info("Blend run failed", "run", runID, "stage", stage, "error", err.Error())
}
