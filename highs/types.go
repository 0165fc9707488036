package highs

import "fmt"

// VariableType specifies the integrality HiGHS enforces on a column.
type VariableType int

const (
	// Continuous indicates a continuous column (default).
	Continuous VariableType = iota
	// Integer indicates an integer column.
	Integer
	// SemiContinuous indicates a semi-continuous column.
	SemiContinuous
	// SemiInteger indicates a semi-integer column.
	SemiInteger
	// ImplicitInteger indicates an implicit integer column.
	ImplicitInteger
)

// String returns a human-readable representation of the variable type.
func (v VariableType) String() string {
	switch v {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case SemiContinuous:
		return "SemiContinuous"
	case SemiInteger:
		return "SemiInteger"
	case ImplicitInteger:
		return "ImplicitInteger"
	default:
		return "Unknown"
	}
}

// Status represents the result status of a HiGHS call.
type Status int

const (
	// StatusError indicates the call failed with an error.
	StatusError Status = -1
	// StatusOK indicates the call succeeded.
	StatusOK Status = 0
	// StatusWarning indicates the call succeeded with warnings.
	StatusWarning Status = 1
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusError:
		return "Error"
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// ModelStatus represents the status of a solved model.
type ModelStatus int

const (
	// ModelStatusNotSet indicates the model status has not been set.
	ModelStatusNotSet ModelStatus = iota
	// ModelStatusLoadError indicates an error loading the model.
	ModelStatusLoadError
	// ModelStatusModelError indicates an error in the model.
	ModelStatusModelError
	// ModelStatusPresolveError indicates an error during presolve.
	ModelStatusPresolveError
	// ModelStatusSolveError indicates an error during solve.
	ModelStatusSolveError
	// ModelStatusPostsolveError indicates an error during postsolve.
	ModelStatusPostsolveError
	// ModelStatusModelEmpty indicates the model is empty.
	ModelStatusModelEmpty
	// ModelStatusOptimal indicates an optimal solution was found.
	ModelStatusOptimal
	// ModelStatusInfeasible indicates the model is infeasible.
	ModelStatusInfeasible
	// ModelStatusUnboundedOrInfeasible indicates the model is unbounded or infeasible.
	ModelStatusUnboundedOrInfeasible
	// ModelStatusUnbounded indicates the model is unbounded.
	ModelStatusUnbounded
	// ModelStatusObjectiveBound indicates the objective bound was reached.
	ModelStatusObjectiveBound
	// ModelStatusObjectiveTarget indicates the objective target was reached.
	ModelStatusObjectiveTarget
	// ModelStatusTimeLimit indicates the time limit was reached.
	ModelStatusTimeLimit
	// ModelStatusIterationLimit indicates the iteration limit was reached.
	ModelStatusIterationLimit
	// ModelStatusSolutionLimit indicates the improving-solution limit was reached.
	ModelStatusSolutionLimit
	// ModelStatusInterrupt indicates the solve was interrupted.
	ModelStatusInterrupt
	// ModelStatusUnknown indicates an unknown status.
	ModelStatusUnknown
)

// String returns a human-readable representation of the model status.
func (s ModelStatus) String() string {
	names := []string{
		"NotSet", "LoadError", "ModelError", "PresolveError",
		"SolveError", "PostsolveError", "ModelEmpty", "Optimal",
		"Infeasible", "UnboundedOrInfeasible", "Unbounded",
		"ObjectiveBound", "ObjectiveTarget", "TimeLimit",
		"IterationLimit", "SolutionLimit", "Interrupt", "Unknown",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// Error represents a HiGHS error with context about which operation failed.
type Error struct {
	Op     string // Operation that failed (e.g., "Run", "SetOption")
	Status Status // HiGHS status code
	Msg    string // Additional context
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("highs: %s failed: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("highs: %s failed with status %s", e.Op, e.Status)
}

// newError creates a new Error if status is not OK.
// Returns nil if status is OK or Warning.
func newError(op string, status Status) error {
	if status == StatusOK || status == StatusWarning {
		return nil
	}
	return &Error{Op: op, Status: status}
}

// newErrorMsg creates a new Error with an additional message.
func newErrorMsg(op, msg string) error {
	return &Error{Op: op, Status: StatusError, Msg: msg}
}
