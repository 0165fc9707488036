package highs

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gomilp/milp"
)

// Solve optimizes the current model. The returned Solution carries a terminal
// status rather than an error for solver outcomes like infeasibility or a hit
// limit; a non-nil error means the solve could not be orchestrated at all.
//
// The first call loads the full model into HiGHS; later calls reuse the
// incrementally maintained image. When warm starting is enabled the last
// feasible solution (or one set via SetWarmStartSolution) is projected onto
// the current variables and handed to HiGHS as a starting point.
func (m *Model) Solve(opts ...milp.Option) (*milp.Solution, error) {
	if err := m.ensureBuilt(); err != nil {
		return nil, err
	}
	params := milp.DefaultParams()
	for _, opt := range opts {
		opt(params)
	}
	if err := m.applyParams(params); err != nil {
		return nil, err
	}
	if params.WarmStart && len(m.warmStart) > 0 {
		if err := m.applyWarmStart(); err != nil {
			m.log.Warn().Err(err).Msg("warm start rejected")
		}
	}

	start := time.Now()
	runStatus := m.hs.Run()
	m.lastSolveTime = time.Since(start)

	sol := &milp.Solution{SolveTime: m.lastSolveTime}
	if runStatus == StatusError {
		sol.Status = milp.StatusNumericalError
		m.log.Warn().Dur("took", m.lastSolveTime).Msg("solve failed numerically")
		return sol, nil
	}

	sol.Status = mapModelStatus(m.hs.ModelStatus())

	// Progress counters are available regardless of the outcome.
	if iters, err := m.hs.GetInt64Info("simplex_iteration_count"); err == nil {
		sol.Iterations = iters
	}
	if nodes, err := m.hs.GetInt64Info("mip_node_count"); err == nil {
		sol.Nodes = nodes
	}
	// HiGHS reports a hit node limit as an iteration limit; disambiguate from
	// the requested limit and the node count.
	if sol.Status == milp.StatusIterationLimit && params.NodeLimit > 0 && sol.Nodes >= int64(params.NodeLimit) {
		sol.Status = milp.StatusNodeLimit
	}

	if sol.IsFeasible() {
		if err := m.extract(sol); err != nil {
			return nil, err
		}
		m.warmStart = sol.Values
	}

	m.log.Info().
		Stringer("status", sol.Status).
		Float64("objective", sol.Objective).
		Dur("took", m.lastSolveTime).
		Msg("solve finished")
	return sol, nil
}

func (m *Model) applyParams(p *milp.Params) error {
	if !math.IsInf(p.TimeLimit, 1) {
		if err := m.hs.SetFloatOption("time_limit", p.TimeLimit); err != nil {
			return err
		}
	}
	if err := m.hs.SetFloatOption("mip_rel_gap", p.GapTolerance); err != nil {
		return err
	}
	if err := m.hs.SetFloatOption("primal_feasibility_tolerance", p.FeasibilityTolerance); err != nil {
		return err
	}
	if err := m.hs.SetFloatOption("dual_feasibility_tolerance", p.OptimalityTolerance); err != nil {
		return err
	}
	if p.Threads > 0 {
		if err := m.hs.SetIntOption("threads", p.Threads); err != nil {
			return err
		}
	}
	if p.IterationLimit > 0 {
		if err := m.hs.SetIntOption("simplex_iteration_limit", p.IterationLimit); err != nil {
			return err
		}
	}
	if p.NodeLimit > 0 {
		if err := m.hs.SetIntOption("mip_max_nodes", p.NodeLimit); err != nil {
			return err
		}
	}
	if p.SolutionLimit > 0 {
		if err := m.hs.SetIntOption("mip_max_improving_sols", p.SolutionLimit); err != nil {
			return err
		}
	}
	presolve := p.Presolve
	if presolve == "" || presolve == "auto" {
		presolve = "choose"
	}
	if err := m.hs.SetStringOption("presolve", presolve); err != nil {
		return err
	}
	if err := m.hs.SetBoolOption("output_flag", p.OutputLevel > 0); err != nil {
		return err
	}
	if p.OutputLevel > 1 {
		if err := m.hs.SetBoolOption("log_to_console", true); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(p.Extra))
	for name := range p.Extra {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		var err error
		switch value := p.Extra[name].(type) {
		case bool:
			err = m.hs.SetBoolOption(name, value)
		case int:
			err = m.hs.SetIntOption(name, value)
		case float64:
			err = m.hs.SetFloatOption(name, value)
		case string:
			err = m.hs.SetStringOption(name, value)
		default:
			err = newErrorMsg("applyParams",
				fmt.Sprintf("option %q has unsupported type %T", name, value))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) applyWarmStart() error {
	// Project the stored point onto the current dense column space; variables
	// without a stored value start at zero.
	colValue := make([]float64, len(m.colVars))
	for i, v := range m.colVars {
		colValue[i] = m.warmStart[v]
	}
	return m.hs.SetSolution(colValue)
}

func (m *Model) extract(sol *milp.Solution) error {
	if obj, err := m.hs.GetFloatInfo("objective_function_value"); err == nil {
		sol.Objective = obj
	}
	if gap, err := m.hs.GetFloatInfo("mip_gap"); err == nil && !math.IsInf(gap, 0) {
		sol.Gap = gap
	}

	colValue, _, _, rowDual, err := m.hs.PrimalDualSolution()
	if err != nil {
		return err
	}
	sol.Values = make(map[*milp.Variable]float64, len(m.colVars))
	for i, v := range m.colVars {
		sol.Values[v] = colValue[i]
	}

	// Duals are meaningful only for purely continuous problems.
	continuous := true
	for _, v := range m.colVars {
		if integralityOf(v) != Continuous {
			continuous = false
			break
		}
	}
	if continuous {
		sol.Duals = make(map[*milp.Constraint]float64, len(m.rowCons))
		for i, c := range m.rowCons {
			sol.Duals[c] = rowDual[i]
		}
	}
	return nil
}

func mapModelStatus(status ModelStatus) milp.Status {
	switch status {
	case ModelStatusOptimal:
		return milp.StatusOptimal
	case ModelStatusInfeasible:
		return milp.StatusInfeasible
	case ModelStatusUnbounded, ModelStatusUnboundedOrInfeasible:
		return milp.StatusUnbounded
	case ModelStatusTimeLimit:
		return milp.StatusTimeLimit
	case ModelStatusIterationLimit:
		return milp.StatusIterationLimit
	case ModelStatusSolutionLimit:
		return milp.StatusSolutionLimit
	case ModelStatusInterrupt:
		return milp.StatusInterrupted
	case ModelStatusObjectiveBound, ModelStatusObjectiveTarget:
		return milp.StatusFeasible
	default:
		return milp.StatusUnknown
	}
}

// SetWarmStartSolution installs values as the warm start for the next solve
// with warm starting enabled, replacing any solution remembered from earlier
// solves. Use milp.LoadValues to obtain values from a saved solution file.
func (m *Model) SetWarmStartSolution(values map[*milp.Variable]float64) {
	m.warmStart = values
}

// Statistics returns the active model size along with the durations of the
// last backend build and the last solve.
func (m *Model) Statistics() milp.Stats {
	st := m.Store.Statistics()
	st.BuildTime = m.lastBuildTime
	st.SolveTime = m.lastSolveTime
	return st
}

// WriteLP writes the model in LP format. The filename should end in ".lp";
// HiGHS picks the output format from the extension.
func (m *Model) WriteLP(filename string) error {
	if err := m.ensureBuilt(); err != nil {
		return err
	}
	return m.hs.WriteModel(filename)
}

// WriteMPS writes the model in MPS format. The filename should end in ".mps".
func (m *Model) WriteMPS(filename string) error {
	if err := m.ensureBuilt(); err != nil {
		return err
	}
	return m.hs.WriteModel(filename)
}

// Close releases the native solver. Further mutations and solves fail with
// milp.ErrClosed. Close is idempotent.
func (m *Model) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.hs.Close()
	return nil
}
