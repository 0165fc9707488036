package milp

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Status is the terminal outcome of a solve. Statuses are not errors: the
// caller is expected to branch on them. Only StatusOptimal and StatusFeasible
// carry trustworthy variable values.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
	StatusIterationLimit
	StatusNodeLimit
	StatusSolutionLimit
	StatusInterrupted
	StatusNumericalError
)

var statusNames = []string{
	"Unknown", "Optimal", "Feasible", "Infeasible", "Unbounded",
	"TimeLimit", "IterationLimit", "NodeLimit", "SolutionLimit",
	"Interrupted", "NumericalError",
}

// String returns a human-readable representation of the status.
func (s Status) String() string {
	if int(s) >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Unknown"
}

// Solution is an immutable snapshot of a solve outcome. Values are keyed by
// logical identity, so they stay valid across later edits and backend
// reindexing. The maps must not be modified.
type Solution struct {
	Status    Status
	Objective float64
	// Gap is the relative MIP gap at termination; 0 for pure LPs.
	Gap        float64
	SolveTime  time.Duration
	Iterations int64
	Nodes      int64

	// Values maps each variable to its primal value. Populated only for
	// feasible outcomes.
	Values map[*Variable]float64
	// Duals maps each constraint to its dual value. Populated only for
	// feasible outcomes of purely continuous problems.
	Duals map[*Constraint]float64
}

// IsOptimal reports whether the solve reached a proven optimum.
func (s *Solution) IsOptimal() bool { return s.Status == StatusOptimal }

// IsFeasible reports whether the solution carries usable variable values.
func (s *Solution) IsFeasible() bool {
	return s.Status == StatusOptimal || s.Status == StatusFeasible
}

// Value returns the primal value of v, or 0 if the solution has none.
func (s *Solution) Value(v *Variable) float64 { return s.Values[v] }

// Dual returns the dual value of c, or 0 if the solution has none.
func (s *Solution) Dual(c *Constraint) float64 { return s.Duals[c] }

func (s *Solution) String() string {
	out := fmt.Sprintf("Solution[status=%s", s.Status)
	if s.IsFeasible() {
		out += fmt.Sprintf(", objective=%g", s.Objective)
		if s.Gap > 0 {
			out += fmt.Sprintf(", gap=%.2f%%", s.Gap*100)
		}
	}
	out += fmt.Sprintf(", time=%s", s.SolveTime)
	if s.Nodes > 0 {
		out += fmt.Sprintf(", nodes=%d", s.Nodes)
	}
	return out + "]"
}

// solutionFile is the on-disk JSON form of a Solution. Variable values are
// keyed by name, the only identity that survives a process restart.
type solutionFile struct {
	Status         string             `json:"status"`
	ObjectiveValue float64            `json:"objectiveValue"`
	Gap            float64            `json:"gap"`
	SolveTimeMs    int64              `json:"solveTimeMs"`
	Iterations     int64              `json:"iterations"`
	NodeCount      int64              `json:"nodeCount"`
	VariableValues map[string]float64 `json:"variableValues"`
}

// Save writes the solution to a JSON file for later reuse, e.g. as a warm
// start for an equivalent model.
func (s *Solution) Save(filename string) error {
	f := solutionFile{
		Status:         s.Status.String(),
		ObjectiveValue: s.Objective,
		Gap:            s.Gap,
		SolveTimeMs:    s.SolveTime.Milliseconds(),
		Iterations:     s.Iterations,
		NodeCount:      s.Nodes,
		VariableValues: make(map[string]float64, len(s.Values)),
	}
	for v, value := range s.Values {
		f.VariableValues[v.Name()] = value
	}
	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("milp: encoding solution: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("milp: writing solution: %w", err)
	}
	return nil
}

// VariableLookup resolves variable names back to identities. *Store and every
// Model satisfy it.
type VariableLookup interface {
	VariableByName(name string) *Variable
}

// LoadValues reads variable values from a solution file written by Save and
// resolves them against lookup. Names that no longer resolve to an active
// variable are silently dropped. The result is suitable for
// SetWarmStartSolution on a backend model.
func LoadValues(filename string, lookup VariableLookup) (map[*Variable]float64, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("milp: reading solution: %w", err)
	}
	var f solutionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("milp: decoding solution: %w", err)
	}
	values := make(map[*Variable]float64, len(f.VariableValues))
	for name, value := range f.VariableValues {
		if v := lookup.VariableByName(name); v != nil {
			values[v] = value
		}
	}
	return values, nil
}
