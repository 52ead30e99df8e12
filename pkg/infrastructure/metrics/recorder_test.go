package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/blend/pkg/domain/milp"
)

func TestRecorder_ObserveSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewRecorder(reg)
	require.NoError(t, err)

	recorder.ObserveSolve("branchbound", milp.StatusOptimal, 20*time.Millisecond)
	recorder.ObserveSolve("branchbound", milp.StatusOptimal, 30*time.Millisecond)
	recorder.ObserveSolve("branchbound", milp.StatusInfeasible, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.solves.WithLabelValues("branchbound", "OPTIMAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.solves.WithLabelValues("branchbound", "INFEASIBLE")))

	expected := `
# HELP blend_solves_total Number of finished solves by solver and outcome status.
# TYPE blend_solves_total counter
blend_solves_total{solver="branchbound",status="INFEASIBLE"} 1
blend_solves_total{solver="branchbound",status="OPTIMAL"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "blend_solves_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(recorder.duration))
}

func TestRecorder_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)
	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewRecorder(reg)
	require.NoError(t, err)
	recorder.ObserveSolve("mock", milp.StatusTimeout, time.Second)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	assert.Contains(t, buf.String(), `blend_solves_total{solver="mock",status="TIMEOUT"} 1`)
	assert.Contains(t, buf.String(), "blend_solve_duration_seconds_count")
}
