// Package milp describes mixed-integer linear programs in a solver-neutral form.
//
// A Formulation is a minimization objective over an arena of variables plus a
// list of linear constraints whose terms reference variables by index. It is
// built fresh for every solve and must not be mutated after it is handed to a
// solver; Clone gives solvers a private copy.
package milp

import (
	"fmt"
	"math"
)

// VarKind is the domain class of a variable
type VarKind int

const (
	Continuous VarKind = iota
	Binary
)

// String method for VarKind enum
func (k VarKind) String() string {
	switch k {
	case Continuous:
		return "Continuous"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Operator is the relation between a constraint's left side and its right-hand side
type Operator int

const (
	LessEq Operator = iota
	GreaterEq
	Equal
)

// String method for Operator enum
func (o Operator) String() string {
	switch o {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// ConstraintGroup tags constraints by the modelling rule that produced them
type ConstraintGroup string

const (
	GroupBatchMin    ConstraintGroup = "batch.min"
	GroupBatchMax    ConstraintGroup = "batch.max"
	GroupLink        ConstraintGroup = "link"
	GroupWindowMin   ConstraintGroup = "window.min"
	GroupWindowMax   ConstraintGroup = "window.max"
	GroupCardinality ConstraintGroup = "cardinality"
)

// Variable is one decision variable with its domain
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// Term is a coefficient applied to the variable at index Var
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a linear row: Σ Terms  Op  RHS
type Constraint struct {
	Name    string
	Group   ConstraintGroup
	Subject string
	Terms   []Term
	Op      Operator
	RHS     float64
}

// Formulation is a complete minimization MILP
type Formulation struct {
	Variables       []Variable
	Objective       []Term
	ObjectiveOffset float64
	Constraints     []Constraint
	Metadata        Metadata
}

// Metadata links the variable arena back to the blend that produced it.
// Quantity variables occupy indices [0, n) and activation variables [n, 2n)
// in ingredient order.
type Metadata struct {
	IngredientIDs []string
	// BigM holds the linking constant used for each ingredient
	BigM []float64
	// EffectivelyUnbounded marks ingredients whose BigM is UnboundedCap
	EffectivelyUnbounded []bool
	// UnboundedCap is the finite stand-in for unlimited inventory, always > batch max
	UnboundedCap float64
}

// NumIngredients returns the number of co-indexed ingredient slots
func (m Metadata) NumIngredients() int {
	return len(m.IngredientIDs)
}

// QuantityIndex returns the arena index of ingredient j's quantity variable
func (m Metadata) QuantityIndex(j int) int {
	return j
}

// ActivationIndex returns the arena index of ingredient j's activation variable
func (m Metadata) ActivationIndex(j int) int {
	return len(m.IngredientIDs) + j
}

// VariableIndex returns the arena index of a variable by name
func (f *Formulation) VariableIndex(name string) (int, bool) {
	for i := range f.Variables {
		if f.Variables[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// ObjectiveValue evaluates the objective at a point
func (f *Formulation) ObjectiveValue(values []float64) float64 {
	return f.ObjectiveOffset + Dot(f.Objective, values)
}

// Dot evaluates Σ coef·values[var] for a term list
func Dot(terms []Term, values []float64) float64 {
	sum := 0.0
	for _, t := range terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

// Clone returns a deep copy safe to hand to a solver
func (f *Formulation) Clone() *Formulation {
	out := &Formulation{
		Variables:       make([]Variable, len(f.Variables)),
		Objective:       cloneTerms(f.Objective),
		ObjectiveOffset: f.ObjectiveOffset,
		Constraints:     make([]Constraint, len(f.Constraints)),
		Metadata: Metadata{
			IngredientIDs:        append([]string(nil), f.Metadata.IngredientIDs...),
			BigM:                 append([]float64(nil), f.Metadata.BigM...),
			EffectivelyUnbounded: append([]bool(nil), f.Metadata.EffectivelyUnbounded...),
			UnboundedCap:         f.Metadata.UnboundedCap,
		},
	}
	copy(out.Variables, f.Variables)
	for i, c := range f.Constraints {
		c.Terms = cloneTerms(c.Terms)
		out.Constraints[i] = c
	}
	return out
}

// Check reports structural defects a solver would reject
func (f *Formulation) Check() error {
	n := len(f.Variables)
	for i, v := range f.Variables {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			return fmt.Errorf("variable %d (%s) has invalid bounds [%g, %g]", i, v.Name, v.Lower, v.Upper)
		}
		if v.Kind == Binary && (v.Lower < 0 || v.Upper > 1) {
			return fmt.Errorf("binary variable %s has bounds [%g, %g] outside [0, 1]", v.Name, v.Lower, v.Upper)
		}
	}
	if err := checkTerms("objective", f.Objective, n); err != nil {
		return err
	}
	for _, c := range f.Constraints {
		if err := checkTerms("constraint "+c.Name, c.Terms, n); err != nil {
			return err
		}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("constraint %s has non-finite right-hand side %g", c.Name, c.RHS)
		}
		if c.Op != LessEq && c.Op != GreaterEq && c.Op != Equal {
			return fmt.Errorf("constraint %s has unknown operator %d", c.Name, c.Op)
		}
	}
	return nil
}

func checkTerms(owner string, terms []Term, n int) error {
	for _, t := range terms {
		if t.Var < 0 || t.Var >= n {
			return fmt.Errorf("%s references variable %d outside [0, %d)", owner, t.Var, n)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return fmt.Errorf("%s has non-finite coefficient %g", owner, t.Coef)
		}
	}
	return nil
}

func cloneTerms(terms []Term) []Term {
	if terms == nil {
		return nil
	}
	out := make([]Term, len(terms))
	copy(out, terms)
	return out
}
