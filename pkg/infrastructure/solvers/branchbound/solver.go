// Package branchbound is an in-process MILP solver: depth-first
// branch-and-bound over binary variables with LP relaxations solved by
// gonum's simplex implementation. It is adequate for blends of a few dozen
// ingredients and needs no external solver installation.
package branchbound

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-logr/logr"

	"github.com/vsinha/blend/pkg/domain/milp"
)

// Name is the solver name reported in outcomes and metrics
const Name = "branchbound"

// Config controls the search
type Config struct {
	// MaxNodes bounds the number of explored nodes; the search then stops with a timeout
	MaxNodes int
	// IntegralityTolerance is how far from 0 or 1 a binary may be and still count as integral
	IntegralityTolerance float64
	// LPTolerance is passed to the simplex as its optimality tolerance
	LPTolerance float64
}

// DefaultConfig returns the default search configuration
func DefaultConfig() Config {
	return Config{
		MaxNodes:             100000,
		IntegralityTolerance: 1e-6,
		LPTolerance:          1e-10,
	}
}

// Solver implements solve.Solver
type Solver struct {
	config Config
	logger logr.Logger
}

// Option configures a Solver
type Option func(*Solver)

// WithLogger sets the solver logger
func WithLogger(logger logr.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// New creates a branch-and-bound solver. Zero config fields take their defaults.
func New(config Config, opts ...Option) *Solver {
	defaults := DefaultConfig()
	if config.MaxNodes <= 0 {
		config.MaxNodes = defaults.MaxNodes
	}
	if config.IntegralityTolerance <= 0 {
		config.IntegralityTolerance = defaults.IntegralityTolerance
	}
	if config.LPTolerance <= 0 {
		config.LPTolerance = defaults.LPTolerance
	}
	s := &Solver{config: config, logger: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the solver name
func (s *Solver) Name() string {
	return Name
}

// node is a subproblem given by tightened variable bounds
type node struct {
	lower []float64
	upper []float64
	depth int
}

// Solve minimizes f. It returns Timeout, with the incumbent when one exists,
// if ctx is done or the node limit is reached before the search completes.
func (s *Solver) Solve(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
	start := time.Now()
	n := len(f.Variables)
	root := node{lower: make([]float64, n), upper: make([]float64, n)}
	for i, v := range f.Variables {
		root.lower[i] = v.Lower
		root.upper[i] = v.Upper
		if v.Kind == milp.Binary {
			root.lower[i] = math.Max(0, math.Ceil(v.Lower-s.config.IntegralityTolerance))
			root.upper[i] = math.Min(1, math.Floor(v.Upper+s.config.IntegralityTolerance))
		}
		if math.IsInf(root.lower[i], -1) {
			return nil, fmt.Errorf("variable %s is free; only finite lower bounds are supported", v.Name)
		}
		if root.lower[i] > root.upper[i] {
			return s.finish(f, milp.StatusInfeasible, nil, 0, start, ""), nil
		}
	}

	var (
		incumbent    []float64
		incumbentObj = math.Inf(1)
		nodes        int
		stack        = []node{root}
	)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return s.finish(f, milp.StatusTimeout, incumbent, nodes, start, err.Error()), nil
		}
		if nodes >= s.config.MaxNodes {
			return s.finish(f, milp.StatusTimeout, incumbent, nodes, start,
				fmt.Sprintf("node limit %d reached", s.config.MaxNodes)), nil
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		relax := &relaxation{
			f:       f,
			lower:   current.lower,
			upper:   current.upper,
			lpTol:   s.config.LPTolerance,
			feasTol: s.config.IntegralityTolerance,
		}
		status, values, err := relax.solve()
		if err != nil {
			return nil, err
		}
		switch status {
		case lpInfeasible:
			continue
		case lpUnbounded:
			return s.finish(f, milp.StatusUnbounded, nil, nodes, start, ""), nil
		}

		bound := f.ObjectiveValue(values)
		if incumbent != nil && bound >= incumbentObj-1e-9*math.Max(1, math.Abs(incumbentObj)) {
			continue
		}

		branch := s.mostFractional(f, values)
		if branch < 0 {
			candidate, ok := s.polish(f, current, values)
			if ok {
				obj := f.ObjectiveValue(candidate)
				if obj < incumbentObj {
					incumbent = candidate
					incumbentObj = obj
					s.logger.V(2).Info("New incumbent", "objective", incumbentObj, "node", nodes, "depth", current.depth)
				}
				if obj <= bound+1e-9*math.Max(1, math.Abs(bound)) {
					continue
				}
			}
			// rounding broke a row or lifted the cost above the node bound:
			// under a large linking coefficient a tiny z carries a whole quantity
			branch = s.mostRounded(f, current, values)
			if branch < 0 {
				continue
			}
		}

		down := current.child(branch, 0)
		up := current.child(branch, 1)
		// the child in the rounded direction is explored first
		if values[branch] >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	if incumbent == nil {
		return s.finish(f, milp.StatusInfeasible, nil, nodes, start, ""), nil
	}
	return s.finish(f, milp.StatusOptimal, incumbent, nodes, start, ""), nil
}

func (n node) child(variable int, value float64) node {
	c := node{
		lower: append([]float64(nil), n.lower...),
		upper: append([]float64(nil), n.upper...),
		depth: n.depth + 1,
	}
	c.lower[variable] = value
	c.upper[variable] = value
	return c
}

// mostFractional returns the binary variable closest to 0.5, or -1 when all are integral
func (s *Solver) mostFractional(f *milp.Formulation, values []float64) int {
	best := -1
	bestDistance := math.Inf(1)
	for i, v := range f.Variables {
		if v.Kind != milp.Binary {
			continue
		}
		frac := values[i] - math.Floor(values[i])
		if frac <= s.config.IntegralityTolerance || frac >= 1-s.config.IntegralityTolerance {
			continue
		}
		if d := math.Abs(frac - 0.5); d < bestDistance {
			best = i
			bestDistance = d
		}
	}
	return best
}

// mostRounded returns the unfixed binary that rounding moves furthest, or -1
// when every binary is already fixed by the node bounds
func (s *Solver) mostRounded(f *milp.Formulation, current node, values []float64) int {
	best := -1
	bestGap := -1.0
	for i, v := range f.Variables {
		if v.Kind != milp.Binary || current.lower[i] == current.upper[i] {
			continue
		}
		if gap := math.Abs(values[i] - math.Round(values[i])); gap > bestGap {
			best = i
			bestGap = gap
		}
	}
	return best
}

// polish fixes every binary at its rounded value and re-solves for the
// continuous variables. It reports false when the rounded binaries admit no
// feasible point.
func (s *Solver) polish(f *milp.Formulation, current node, values []float64) ([]float64, bool) {
	fixed := node{
		lower: append([]float64(nil), current.lower...),
		upper: append([]float64(nil), current.upper...),
	}
	for i, v := range f.Variables {
		if v.Kind == milp.Binary {
			fixed.lower[i] = math.Round(values[i])
			fixed.upper[i] = fixed.lower[i]
		}
	}
	relax := &relaxation{
		f:       f,
		lower:   fixed.lower,
		upper:   fixed.upper,
		lpTol:   s.config.LPTolerance,
		feasTol: s.config.IntegralityTolerance,
	}
	status, polished, err := relax.solve()
	if err != nil || status != lpOptimal {
		return nil, false
	}
	return s.snap(f, polished), true
}

// snap rounds binaries and clamps continuous values to their lower bound
func (s *Solver) snap(f *milp.Formulation, values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range f.Variables {
		switch v.Kind {
		case milp.Binary:
			out[i] = math.Round(values[i])
		default:
			out[i] = math.Max(v.Lower, values[i])
		}
	}
	return out
}

func (s *Solver) finish(f *milp.Formulation, status milp.Status, incumbent []float64, nodes int, start time.Time, message string) *milp.SolveOutcome {
	outcome := &milp.SolveOutcome{
		Status:  status,
		Solver:  Name,
		Elapsed: time.Since(start),
		Nodes:   nodes,
		Message: message,
	}
	if incumbent != nil {
		outcome.Values = incumbent
		outcome.Objective = f.ObjectiveValue(incumbent)
		outcome.HasIncumbent = true
	}
	s.logger.V(1).Info("Branch and bound finished",
		"status", status.String(),
		"nodes", nodes,
		"objective", outcome.Objective,
		"elapsed", outcome.Elapsed)
	return outcome
}
