// Package solve hands formulations to an injected MILP solving capability.
//
// The Adapter is the only blocking step of a blend run. It enforces a time
// limit through the context it passes to the Solver, never mutates the
// caller's formulation, and turns solver-level failures into AdapterError.
// Infeasible and unbounded problems are outcomes, not errors.
package solve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/vsinha/blend/pkg/domain/milp"
)

// Solver is a MILP solving capability. Implementations must support
// continuous and binary variables, linear rows and a minimization objective,
// and should return promptly with their best outcome once ctx is done.
type Solver interface {
	Name() string
	Solve(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error)
}

// Observer receives one notification per finished solve
type Observer interface {
	ObserveSolve(solver string, status milp.Status, elapsed time.Duration)
}

// Config holds the adapter settings resolved at process start
type Config struct {
	// DefaultTimeLimit applies when Solve is called without a limit (0 = none)
	DefaultTimeLimit time.Duration
	// CancelGrace is how long to wait for a cancelled solver before giving up on it
	CancelGrace time.Duration
}

// DefaultConfig returns the default adapter configuration
func DefaultConfig() Config {
	return Config{
		DefaultTimeLimit: 60 * time.Second,
		CancelGrace:      2 * time.Second,
	}
}

// Adapter invokes a Solver on formulations
type Adapter struct {
	solver   Solver
	config   Config
	logger   logr.Logger
	observer Observer
}

// Option configures an Adapter
type Option func(*Adapter)

// WithLogger sets the adapter logger
func WithLogger(logger logr.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithObserver sets a solve observer, typically a metrics recorder
func WithObserver(observer Observer) Option {
	return func(a *Adapter) {
		a.observer = observer
	}
}

// NewAdapter creates a new solve adapter around a solving capability
func NewAdapter(solver Solver, config Config, opts ...Option) (*Adapter, error) {
	if solver == nil {
		return nil, fmt.Errorf("solver cannot be nil")
	}
	if config.CancelGrace <= 0 {
		config.CancelGrace = DefaultConfig().CancelGrace
	}
	a := &Adapter{
		solver: solver,
		config: config,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// SolverName returns the name of the wrapped solving capability
func (a *Adapter) SolverName() string {
	return a.solver.Name()
}

type solveResult struct {
	outcome *milp.SolveOutcome
	err     error
}

// Solve runs the solver on a private copy of f. A positive timeLimit overrides
// the configured default.
func (a *Adapter) Solve(ctx context.Context, f *milp.Formulation, timeLimit time.Duration) (*milp.SolveOutcome, error) {
	name := a.solver.Name()
	if f == nil {
		return nil, &AdapterError{Solver: name, Op: "validate", Err: errors.New("formulation cannot be nil")}
	}
	if err := f.Check(); err != nil {
		return nil, &AdapterError{Solver: name, Op: "validate", Err: err}
	}

	if timeLimit <= 0 {
		timeLimit = a.config.DefaultTimeLimit
	}
	solveCtx := ctx
	cancel := func() {}
	if timeLimit > 0 {
		solveCtx, cancel = context.WithTimeout(ctx, timeLimit)
	}
	defer cancel()

	a.logger.V(1).Info("Starting solve",
		"solver", name,
		"variables", len(f.Variables),
		"constraints", len(f.Constraints),
		"timeLimit", timeLimit)

	start := time.Now()
	done := make(chan solveResult, 1)
	private := f.Clone()
	go func() {
		outcome, err := a.solver.Solve(solveCtx, private)
		done <- solveResult{outcome: outcome, err: err}
	}()

	var res solveResult
	select {
	case res = <-done:
	case <-solveCtx.Done():
		grace := time.NewTimer(a.config.CancelGrace)
		select {
		case res = <-done:
		case <-grace.C:
			a.logger.Info("Solver ignored cancellation, abandoning it", "solver", name, "grace", a.config.CancelGrace)
			res = solveResult{outcome: &milp.SolveOutcome{
				Status:  milp.StatusTimeout,
				Message: "solver did not stop within the cancellation grace period",
			}}
		}
		grace.Stop()
	}
	elapsed := time.Since(start)

	outcome, err := a.normalize(solveCtx, f, res)
	if err != nil {
		a.observe(name, milp.StatusError, elapsed)
		a.logger.Error(err, "Solve failed", "solver", name, "elapsed", elapsed)
		return nil, err
	}
	if outcome.Solver == "" {
		outcome.Solver = name
	}
	if outcome.Elapsed == 0 {
		outcome.Elapsed = elapsed
	}

	a.observe(name, outcome.Status, elapsed)
	a.logger.Info("Solve finished",
		"solver", name,
		"status", outcome.Status.String(),
		"objective", outcome.Objective,
		"nodes", outcome.Nodes,
		"elapsed", elapsed)
	return outcome, nil
}

// normalize maps raw solver returns onto the outcome contract
func (a *Adapter) normalize(ctx context.Context, f *milp.Formulation, res solveResult) (*milp.SolveOutcome, error) {
	name := a.solver.Name()
	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) || errors.Is(res.err, context.Canceled) || ctx.Err() != nil {
			return &milp.SolveOutcome{Status: milp.StatusTimeout, Message: res.err.Error()}, nil
		}
		return nil, &AdapterError{Solver: name, Op: "solve", Err: res.err}
	}
	if res.outcome == nil {
		return nil, &AdapterError{Solver: name, Op: "solve", Err: errors.New("solver returned no outcome")}
	}

	outcome := res.outcome
	switch outcome.Status {
	case milp.StatusOptimal:
		if len(outcome.Values) != len(f.Variables) {
			return nil, &AdapterError{
				Solver: name,
				Op:     "decode",
				Err:    fmt.Errorf("optimal outcome has %d values for %d variables", len(outcome.Values), len(f.Variables)),
			}
		}
	case milp.StatusTimeout:
		if outcome.HasIncumbent && len(outcome.Values) != len(f.Variables) {
			outcome.HasIncumbent = false
			outcome.Values = nil
		}
	case milp.StatusInfeasible, milp.StatusUnbounded, milp.StatusError:
	default:
		return nil, &AdapterError{Solver: name, Op: "decode", Err: fmt.Errorf("unknown status %d", outcome.Status)}
	}
	return outcome, nil
}

func (a *Adapter) observe(name string, status milp.Status, elapsed time.Duration) {
	if a.observer != nil {
		a.observer.ObserveSolve(name, status, elapsed)
	}
}
