package milp

import "math"

// Params holds the solver configuration applied at every solve. Backend
// packages translate the fields onto solver options; Extra entries are passed
// through untranslated for backend-specific tuning.
type Params struct {
	// TimeLimit is the wall-clock limit in seconds. Unbounded by default.
	TimeLimit float64
	// GapTolerance is the relative MIP gap at which the solve stops.
	GapTolerance float64
	// FeasibilityTolerance is the primal feasibility tolerance.
	FeasibilityTolerance float64
	// OptimalityTolerance is the dual feasibility tolerance.
	OptimalityTolerance float64
	// Threads is the number of solver threads; 0 lets the backend decide.
	Threads int
	// IterationLimit caps simplex iterations; 0 means no limit.
	IterationLimit int
	// NodeLimit caps branch-and-bound nodes; 0 means no limit.
	NodeLimit int
	// SolutionLimit stops after this many improving solutions; 0 means no
	// limit.
	SolutionLimit int
	// Presolve is "on", "off" or "auto".
	Presolve string
	// OutputLevel is 0 (silent), 1 (normal) or 2 (verbose).
	OutputLevel int
	// WarmStart seeds the solve with the last feasible solution, or one set
	// via SetWarmStartSolution.
	WarmStart bool
	// Extra holds backend-specific option overrides by option name. Values
	// may be bool, int, float64 or string.
	Extra map[string]any
}

// DefaultParams returns the defaults applied when Solve is called without
// options.
func DefaultParams() *Params {
	return &Params{
		TimeLimit:            math.Inf(1),
		GapTolerance:         1e-4,
		FeasibilityTolerance: 1e-7,
		OptimalityTolerance:  1e-7,
		Presolve:             "auto",
		OutputLevel:          1,
		Extra:                make(map[string]any),
	}
}

// Option configures a solve.
type Option func(*Params)

// WithTimeLimit sets the time limit in seconds.
func WithTimeLimit(seconds float64) Option {
	return func(p *Params) { p.TimeLimit = seconds }
}

// WithGapTolerance sets the relative MIP gap tolerance.
func WithGapTolerance(gap float64) Option {
	return func(p *Params) { p.GapTolerance = gap }
}

// WithFeasibilityTolerance sets the primal feasibility tolerance.
func WithFeasibilityTolerance(tol float64) Option {
	return func(p *Params) { p.FeasibilityTolerance = tol }
}

// WithOptimalityTolerance sets the dual feasibility tolerance.
func WithOptimalityTolerance(tol float64) Option {
	return func(p *Params) { p.OptimalityTolerance = tol }
}

// WithThreads sets the number of solver threads (0 = automatic).
func WithThreads(n int) Option {
	return func(p *Params) { p.Threads = n }
}

// WithIterationLimit caps simplex iterations.
func WithIterationLimit(n int) Option {
	return func(p *Params) { p.IterationLimit = n }
}

// WithNodeLimit caps branch-and-bound nodes.
func WithNodeLimit(n int) Option {
	return func(p *Params) { p.NodeLimit = n }
}

// WithSolutionLimit stops the solve after n improving solutions.
func WithSolutionLimit(n int) Option {
	return func(p *Params) { p.SolutionLimit = n }
}

// WithPresolve sets the presolve mode ("on", "off", "auto").
func WithPresolve(mode string) Option {
	return func(p *Params) { p.Presolve = mode }
}

// WithOutputLevel sets solver verbosity (0 = silent, 1 = normal, 2 = verbose).
func WithOutputLevel(level int) Option {
	return func(p *Params) { p.OutputLevel = level }
}

// WithWarmStart enables or disables warm starting from the last feasible
// solution.
func WithWarmStart(enabled bool) Option {
	return func(p *Params) { p.WarmStart = enabled }
}

// WithOption sets a backend-specific option by name. The value may be a
// bool, int, float64 or string.
func WithOption(name string, value any) Option {
	return func(p *Params) { p.Extra[name] = value }
}

// Quick configures a fast, coarse solve: 60s limit, 1% gap.
func Quick() Option {
	return func(p *Params) {
		p.TimeLimit = 60
		p.GapTolerance = 0.01
		p.Presolve = "auto"
		p.Threads = 0
	}
}

// Balanced configures a moderate solve: 300s limit, 0.1% gap.
func Balanced() Option {
	return func(p *Params) {
		p.TimeLimit = 300
		p.GapTolerance = 1e-3
		p.Presolve = "auto"
		p.Threads = 0
	}
}

// Exact configures a tight solve with near-zero tolerances and no time limit.
func Exact() Option {
	return func(p *Params) {
		p.TimeLimit = math.Inf(1)
		p.GapTolerance = 1e-9
		p.FeasibilityTolerance = 1e-9
		p.OptimalityTolerance = 1e-9
		p.Presolve = "auto"
		p.Threads = 0
	}
}
