package milp

import (
	"errors"
	"time"
)

// Sense specifies the optimization direction of the objective.
type Sense int

const (
	// Minimize the objective (default).
	Minimize Sense = iota
	// Maximize the objective.
	Maximize
)

// String returns a human-readable representation of the sense.
func (s Sense) String() string {
	if s == Maximize {
		return "Maximize"
	}
	return "Minimize"
}

// Errors returned by Store mutations and backend models. Backend packages
// wrap these with entity names; match with errors.Is.
var (
	// ErrDeletedVariable is returned by any mutation addressed at a removed
	// variable.
	ErrDeletedVariable = errors.New("milp: variable has been removed")
	// ErrDeletedConstraint is returned by any mutation addressed at a removed
	// constraint.
	ErrDeletedConstraint = errors.New("milp: constraint has been removed")
	// ErrClosed is returned by any call on a backend model whose solver
	// resources have been released.
	ErrClosed = errors.New("milp: model has been closed")
)

// Stats summarizes the active size of a model.
type Stats struct {
	NumVariables   int
	NumConstraints int
	NumNonZeros    int
	NumIntegers    int
	NumBinaries    int

	// BuildTime and SolveTime are the durations of the last backend build and
	// the last solve. They are zero on a Store with no backend.
	BuildTime time.Duration
	SolveTime time.Duration
}

// Model is the full contract of a solvable incremental MILP model: the Store
// operations plus solving and export. Backend packages provide
// implementations; see github.com/gomilp/milp/highs.
type Model interface {
	AddVariable(name string, lower, upper float64, vtype VarType) (*Variable, error)
	UpdateVariableBounds(v *Variable, lower, upper float64) error
	RemoveVariable(v *Variable) error

	AddConstraint(name string, expr *Expression, ctype ConstraintType, rhs float64) (*Constraint, error)
	AddRangeConstraint(name string, expr *Expression, lower, upper float64) (*Constraint, error)
	UpdateConstraintRHS(c *Constraint, rhs float64) error
	UpdateCoefficient(c *Constraint, v *Variable, coeff float64) error
	RemoveConstraint(c *Constraint) error

	SetObjective(expr *Expression, sense Sense) error
	UpdateObjectiveCoefficient(v *Variable, coeff float64) error

	BeginUpdate()
	EndUpdate() error

	NumVariables() int
	NumConstraints() int
	NumNonZeros() int
	Statistics() Stats
	VariableByName(name string) *Variable

	Solve(opts ...Option) (*Solution, error)
	WriteLP(filename string) error
	WriteMPS(filename string) error
	Close() error
}

// Sink receives synchronization notifications from a Store. A backend
// synchronization engine implements Sink to keep the solver's internal
// representation consistent with the store; it may apply each notification
// immediately or defer it until OnEndUpdate.
//
// Attribute notifications (bounds, RHS, coefficients, objective) are
// coalesced by the store while a batch is open and delivered at EndUpdate in
// a fixed order: variable bounds, then constraint modifications, then the
// objective. Structural notifications (added/removed) are delivered
// immediately even inside a batch; deferring them is the sink's job.
type Sink interface {
	OnVariableAdded(v *Variable) error
	OnVariableBoundsChanged(v *Variable) error
	OnVariableRemoved(v *Variable) error

	OnConstraintAdded(c *Constraint) error
	OnConstraintRHSChanged(c *Constraint) error
	// OnConstraintModified signals a batched constraint change (RHS or
	// coefficients) whose individual edits were coalesced.
	OnConstraintModified(c *Constraint) error
	OnConstraintRemoved(c *Constraint) error

	OnObjectiveChanged() error
	OnObjectiveCoefficientChanged(v *Variable, coeff float64) error
	OnCoefficientChanged(c *Constraint, v *Variable, coeff float64) error

	OnBeginUpdate()
	OnEndUpdate() error
}

// NopSink is a Sink that ignores every notification. It backs stores that
// have no solver attached, such as stores used only for model inspection.
type NopSink struct{}

func (NopSink) OnVariableAdded(*Variable) error                        { return nil }
func (NopSink) OnVariableBoundsChanged(*Variable) error                { return nil }
func (NopSink) OnVariableRemoved(*Variable) error                      { return nil }
func (NopSink) OnConstraintAdded(*Constraint) error                    { return nil }
func (NopSink) OnConstraintRHSChanged(*Constraint) error               { return nil }
func (NopSink) OnConstraintModified(*Constraint) error                 { return nil }
func (NopSink) OnConstraintRemoved(*Constraint) error                  { return nil }
func (NopSink) OnObjectiveChanged() error                              { return nil }
func (NopSink) OnObjectiveCoefficientChanged(*Variable, float64) error { return nil }
func (NopSink) OnCoefficientChanged(*Constraint, *Variable, float64) error {
	return nil
}
func (NopSink) OnBeginUpdate()     {}
func (NopSink) OnEndUpdate() error { return nil }
