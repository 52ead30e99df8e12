package solve

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/blend/pkg/domain/milp"
)

type stubSolver struct {
	solve func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error)
}

func (s *stubSolver) Name() string { return "stub" }

func (s *stubSolver) Solve(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
	return s.solve(ctx, f)
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []milp.Status
}

func (o *recordingObserver) ObserveSolve(solver string, status milp.Status, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func smallFormulation() *milp.Formulation {
	return &milp.Formulation{
		Variables: []milp.Variable{
			{Name: "x[A]", Kind: milp.Continuous, Lower: 0, Upper: 1e9},
			{Name: "z[A]", Kind: milp.Binary, Lower: 0, Upper: 1},
		},
		Objective: []milp.Term{{Var: 0, Coef: 2}},
		Constraints: []milp.Constraint{
			{Name: "batch.min", Group: milp.GroupBatchMin, Terms: []milp.Term{{Var: 0, Coef: 1}}, Op: milp.GreaterEq, RHS: 1},
			{Name: "link[A]", Group: milp.GroupLink, Subject: "A", Terms: []milp.Term{{Var: 0, Coef: 1}, {Var: 1, Coef: -5}}, Op: milp.LessEq},
		},
		Metadata: milp.Metadata{IngredientIDs: []string{"A"}, BigM: []float64{5}, EffectivelyUnbounded: []bool{false}, UnboundedCap: 11},
	}
}

func TestAdapter_PassesPrivateCopy(t *testing.T) {
	solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
		f.Constraints[0].RHS = 99
		f.Variables[0].Name = "mutated"
		return &milp.SolveOutcome{Status: milp.StatusOptimal, Values: []float64{1, 1}, Objective: 2}, nil
	}}
	observer := &recordingObserver{}
	adapter, err := NewAdapter(solver, DefaultConfig(), WithObserver(observer))
	require.NoError(t, err)

	f := smallFormulation()
	outcome, err := adapter.Solve(context.Background(), f, time.Second)
	require.NoError(t, err)

	assert.Equal(t, milp.StatusOptimal, outcome.Status)
	assert.Equal(t, "stub", outcome.Solver)
	assert.Equal(t, 1.0, f.Constraints[0].RHS)
	assert.Equal(t, "x[A]", f.Variables[0].Name)
	assert.Equal(t, []milp.Status{milp.StatusOptimal}, observer.statuses)
}

func TestAdapter_RejectsMalformedFormulation(t *testing.T) {
	called := false
	solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
		called = true
		return nil, nil
	}}
	adapter, err := NewAdapter(solver, DefaultConfig())
	require.NoError(t, err)

	f := smallFormulation()
	f.Constraints[1].Terms[1].Var = 7

	_, err = adapter.Solve(context.Background(), f, time.Second)
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "validate", adapterErr.Op)
	assert.Contains(t, err.Error(), "references variable 7")
	assert.False(t, called)

	_, err = adapter.Solve(context.Background(), nil, time.Second)
	require.ErrorAs(t, err, &adapterErr)
}

func TestAdapter_WrapsSolverFailure(t *testing.T) {
	cause := errors.New("license server unreachable")
	solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
		return nil, cause
	}}
	observer := &recordingObserver{}
	adapter, err := NewAdapter(solver, DefaultConfig(), WithObserver(observer))
	require.NoError(t, err)

	_, err = adapter.Solve(context.Background(), smallFormulation(), time.Second)
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "solve", adapterErr.Op)
	assert.Equal(t, []milp.Status{milp.StatusError}, observer.statuses)
}

func TestAdapter_RejectsShortValueVector(t *testing.T) {
	solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
		return &milp.SolveOutcome{Status: milp.StatusOptimal, Values: []float64{1}}, nil
	}}
	adapter, err := NewAdapter(solver, DefaultConfig())
	require.NoError(t, err)

	_, err = adapter.Solve(context.Background(), smallFormulation(), time.Second)
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "decode", adapterErr.Op)
}

func TestAdapter_PassesThroughNonOptimalStatuses(t *testing.T) {
	for _, status := range []milp.Status{milp.StatusInfeasible, milp.StatusUnbounded} {
		t.Run(status.String(), func(t *testing.T) {
			solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
				return &milp.SolveOutcome{Status: status}, nil
			}}
			adapter, err := NewAdapter(solver, DefaultConfig())
			require.NoError(t, err)

			outcome, err := adapter.Solve(context.Background(), smallFormulation(), time.Second)
			require.NoError(t, err)
			assert.Equal(t, status, outcome.Status)
		})
	}
}

func TestAdapter_TimeoutWhenSolverHonoursContext(t *testing.T) {
	solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	adapter, err := NewAdapter(solver, Config{CancelGrace: time.Second})
	require.NoError(t, err)

	outcome, err := adapter.Solve(context.Background(), smallFormulation(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusTimeout, outcome.Status)
	assert.False(t, outcome.HasIncumbent)
}

func TestAdapter_TimeoutWhenSolverHangs(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
		<-release
		return &milp.SolveOutcome{Status: milp.StatusOptimal}, nil
	}}
	adapter, err := NewAdapter(solver, Config{CancelGrace: 10 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	outcome, err := adapter.Solve(context.Background(), smallFormulation(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusTimeout, outcome.Status)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAdapter_DropsMisshapenIncumbent(t *testing.T) {
	solver := &stubSolver{solve: func(ctx context.Context, f *milp.Formulation) (*milp.SolveOutcome, error) {
		return &milp.SolveOutcome{Status: milp.StatusTimeout, HasIncumbent: true, Values: []float64{3}}, nil
	}}
	adapter, err := NewAdapter(solver, DefaultConfig())
	require.NoError(t, err)

	outcome, err := adapter.Solve(context.Background(), smallFormulation(), time.Second)
	require.NoError(t, err)
	assert.False(t, outcome.HasIncumbent)
	assert.Nil(t, outcome.Values)
}

func TestNewAdapter_RequiresSolver(t *testing.T) {
	_, err := NewAdapter(nil, DefaultConfig())
	assert.Error(t, err)
}
