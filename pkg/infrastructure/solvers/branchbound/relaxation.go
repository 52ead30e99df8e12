package branchbound

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/vsinha/blend/pkg/domain/milp"
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
)

// row is a constraint in the shifted space, always of the form Σ coef·y ≤ rhs
type row struct {
	cols []int
	coef []float64
	rhs  float64
}

// relaxation solves the LP relaxation of f with variable bounds [lower, upper].
// Variables with lower == upper are substituted out. The remaining variables
// are shifted to y = x - lower ≥ 0 and every row gets a slack, giving the
// standard form min cᵀy s.t. Ay = b, y ≥ 0 that lp.Simplex expects.
type relaxation struct {
	f       *milp.Formulation
	lower   []float64
	upper   []float64
	lpTol   float64
	feasTol float64
}

func (r *relaxation) solve() (lpStatus, []float64, error) {
	n := len(r.f.Variables)
	column := make([]int, n)
	numCols := 0
	for i := 0; i < n; i++ {
		if r.lower[i] == r.upper[i] {
			column[i] = -1
			continue
		}
		if math.IsInf(r.lower[i], 0) {
			return 0, nil, fmt.Errorf("variable %s has no finite lower bound", r.f.Variables[i].Name)
		}
		column[i] = numCols
		numCols++
	}

	rows := make([]row, 0, len(r.f.Constraints)+numCols)
	for _, c := range r.f.Constraints {
		rhs := c.RHS
		cols := make([]int, 0, len(c.Terms))
		coef := make([]float64, 0, len(c.Terms))
		for _, t := range c.Terms {
			// fixed variables sit at lower, free ones are shifted by it
			rhs -= t.Coef * r.lower[t.Var]
			if column[t.Var] >= 0 && t.Coef != 0 {
				cols = append(cols, column[t.Var])
				coef = append(coef, t.Coef)
			}
		}

		if len(cols) == 0 {
			if !r.holds(c.Op, rhs) {
				return lpInfeasible, nil, nil
			}
			continue
		}
		switch c.Op {
		case milp.LessEq:
			rows = append(rows, row{cols: cols, coef: coef, rhs: rhs})
		case milp.GreaterEq:
			rows = append(rows, row{cols: cols, coef: negate(coef), rhs: -rhs})
		case milp.Equal:
			rows = append(rows,
				row{cols: cols, coef: coef, rhs: rhs},
				row{cols: cols, coef: negate(coef), rhs: -rhs})
		}
	}
	for i := 0; i < n; i++ {
		if column[i] >= 0 && !math.IsInf(r.upper[i], 1) {
			rows = append(rows, row{cols: []int{column[i]}, coef: []float64{1}, rhs: r.upper[i] - r.lower[i]})
		}
	}

	cost := make([]float64, numCols)
	for _, t := range r.f.Objective {
		if column[t.Var] >= 0 {
			cost[column[t.Var]] += t.Coef
		}
	}

	// Columns that appear in no row are set at their bound or make the LP unbounded.
	used := make([]bool, numCols)
	for _, rw := range rows {
		for _, col := range rw.cols {
			used[col] = true
		}
	}
	active := make([]int, numCols)
	numActive := 0
	for col := 0; col < numCols; col++ {
		if !used[col] {
			if cost[col] < 0 {
				return lpUnbounded, nil, nil
			}
			active[col] = -1
			continue
		}
		active[col] = numActive
		numActive++
	}

	y := make([]float64, numCols)
	if len(rows) > 0 {
		status, solution, err := r.simplex(rows, cost, active, numActive)
		if err != nil || status != lpOptimal {
			return status, nil, err
		}
		for col := 0; col < numCols; col++ {
			if active[col] >= 0 {
				y[col] = math.Max(0, solution[active[col]])
			}
		}
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = r.lower[i]
		if column[i] >= 0 {
			values[i] += y[column[i]]
		}
	}
	return lpOptimal, values, nil
}

func (r *relaxation) simplex(rows []row, cost []float64, active []int, numActive int) (status lpStatus, solution []float64, err error) {
	m := len(rows)
	width := numActive + m
	A := mat.NewDense(m, width, nil)
	b := make([]float64, m)
	c := make([]float64, width)
	for col, idx := range active {
		if idx >= 0 {
			c[idx] = cost[col]
		}
	}
	for i, rw := range rows {
		for k, col := range rw.cols {
			A.Set(i, active[col], A.At(i, active[col])+rw.coef[k])
		}
		A.Set(i, numActive+i, 1)
		b[i] = rw.rhs
	}

	defer func() {
		if p := recover(); p != nil {
			status, solution, err = lpOptimal, nil, fmt.Errorf("simplex failed: %v", p)
		}
	}()

	_, x, err := lp.Simplex(c, A, b, r.lpTol, nil)
	switch {
	case err == nil:
		return lpOptimal, x, nil
	case errors.Is(err, lp.ErrInfeasible):
		return lpInfeasible, nil, nil
	case errors.Is(err, lp.ErrUnbounded):
		return lpUnbounded, nil, nil
	default:
		return lpOptimal, nil, fmt.Errorf("simplex failed: %w", err)
	}
}

func (r *relaxation) holds(op milp.Operator, rhs float64) bool {
	tol := r.feasTol * math.Max(1, math.Abs(rhs))
	switch op {
	case milp.LessEq:
		return 0 <= rhs+tol
	case milp.GreaterEq:
		return 0 >= rhs-tol
	default:
		return math.Abs(rhs) <= tol
	}
}

func negate(coef []float64) []float64 {
	out := make([]float64, len(coef))
	for i, v := range coef {
		out[i] = -v
	}
	return out
}
