package highs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gomilp/milp"
)

// fakeBackend mimics the HiGHS index semantics in memory, in particular the
// compaction of surviving indices after a masked delete. Matrix entries live
// on the rows, keyed by dense column index.
type fakeBackend struct {
	cols []fakeCol
	rows []fakeRow

	maximize bool
	offset   float64

	options     map[string]any
	runStatus   Status
	modelStatus ModelStatus
	colValue    []float64
	rowDual     []float64
	infoInt     map[string]int64
	infoFloat   map[string]float64

	passCount   int
	lastStart   []float64
	lastWritten string
	closed      bool
}

type fakeCol struct {
	cost, lower, upper float64
	vtype              VariableType
}

type fakeRow struct {
	lower, upper float64
	coeffs       map[int]float64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		options:     make(map[string]any),
		modelStatus: ModelStatusOptimal,
		infoInt:     make(map[string]int64),
		infoFloat:   make(map[string]float64),
	}
}

func (f *fakeBackend) AddCol(cost, lower, upper float64, index []int, value []float64) error {
	col := len(f.cols)
	f.cols = append(f.cols, fakeCol{cost: cost, lower: lower, upper: upper})
	for i, ri := range index {
		f.rows[ri].coeffs[col] = value[i]
	}
	return nil
}

func (f *fakeBackend) AddRow(lower, upper float64, index []int, value []float64) error {
	coeffs := make(map[int]float64, len(index))
	for i, ci := range index {
		coeffs[ci] = value[i]
	}
	f.rows = append(f.rows, fakeRow{lower: lower, upper: upper, coeffs: coeffs})
	return nil
}

func (f *fakeBackend) ChangeColBounds(col int, lower, upper float64) error {
	f.cols[col].lower = lower
	f.cols[col].upper = upper
	return nil
}

func (f *fakeBackend) ChangeRowBounds(row int, lower, upper float64) error {
	f.rows[row].lower = lower
	f.rows[row].upper = upper
	return nil
}

func (f *fakeBackend) ChangeColCost(col int, cost float64) error {
	f.cols[col].cost = cost
	return nil
}

func (f *fakeBackend) ChangeColIntegrality(col int, varType VariableType) error {
	f.cols[col].vtype = varType
	return nil
}

func (f *fakeBackend) ChangeCoeff(row, col int, value float64) error {
	if value == 0 {
		delete(f.rows[row].coeffs, col)
		return nil
	}
	f.rows[row].coeffs[col] = value
	return nil
}

func (f *fakeBackend) DeleteColsByMask(mask []bool) error {
	remap := make(map[int]int)
	var kept []fakeCol
	for i, col := range f.cols {
		if !mask[i] {
			remap[i] = len(kept)
			kept = append(kept, col)
		}
	}
	f.cols = kept
	for ri := range f.rows {
		coeffs := make(map[int]float64, len(f.rows[ri].coeffs))
		for ci, v := range f.rows[ri].coeffs {
			if ni, ok := remap[ci]; ok {
				coeffs[ni] = v
			}
		}
		f.rows[ri].coeffs = coeffs
	}
	return nil
}

func (f *fakeBackend) DeleteRowsByMask(mask []bool) error {
	var kept []fakeRow
	for i, row := range f.rows {
		if !mask[i] {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeBackend) PassModel(numCol, numRow int,
	colCost, colLower, colUpper []float64,
	rowLower, rowUpper []float64,
	aStart, aIndex []int, aValue []float64,
	integrality []VariableType,
	maximize bool, offset float64,
) error {
	f.passCount++
	f.maximize = maximize
	f.offset = offset
	f.cols = make([]fakeCol, numCol)
	for i := range f.cols {
		f.cols[i] = fakeCol{cost: colCost[i], lower: colLower[i], upper: colUpper[i]}
		if integrality != nil {
			f.cols[i].vtype = integrality[i]
		}
	}
	f.rows = make([]fakeRow, numRow)
	for i := range f.rows {
		f.rows[i] = fakeRow{lower: rowLower[i], upper: rowUpper[i], coeffs: make(map[int]float64)}
	}
	for ci := 0; ci < numCol; ci++ {
		for k := aStart[ci]; k < aStart[ci+1]; k++ {
			f.rows[aIndex[k]].coeffs[ci] = aValue[k]
		}
	}
	return nil
}

func (f *fakeBackend) ChangeObjectiveSense(maximize bool) error {
	f.maximize = maximize
	return nil
}

func (f *fakeBackend) ChangeObjectiveOffset(offset float64) error {
	f.offset = offset
	return nil
}

func (f *fakeBackend) SetSolution(colValue []float64) error {
	f.lastStart = append([]float64(nil), colValue...)
	return nil
}

func (f *fakeBackend) SetBoolOption(name string, value bool) error {
	f.options[name] = value
	return nil
}

func (f *fakeBackend) SetIntOption(name string, value int) error {
	f.options[name] = value
	return nil
}

func (f *fakeBackend) SetFloatOption(name string, value float64) error {
	f.options[name] = value
	return nil
}

func (f *fakeBackend) SetStringOption(name, value string) error {
	f.options[name] = value
	return nil
}

func (f *fakeBackend) Run() Status {
	return f.runStatus
}

func (f *fakeBackend) ModelStatus() ModelStatus {
	return f.modelStatus
}

func (f *fakeBackend) PrimalDualSolution() ([]float64, []float64, []float64, []float64, error) {
	colValue := f.colValue
	if colValue == nil {
		colValue = make([]float64, len(f.cols))
	}
	rowDual := f.rowDual
	if rowDual == nil {
		rowDual = make([]float64, len(f.rows))
	}
	return colValue, make([]float64, len(f.cols)), make([]float64, len(f.rows)), rowDual, nil
}

func (f *fakeBackend) GetInt64Info(name string) (int64, error) {
	v, ok := f.infoInt[name]
	if !ok {
		return 0, newErrorMsg("GetInt64Info", name)
	}
	return v, nil
}

func (f *fakeBackend) GetFloatInfo(name string) (float64, error) {
	v, ok := f.infoFloat[name]
	if !ok {
		return 0, newErrorMsg("GetFloatInfo", name)
	}
	return v, nil
}

func (f *fakeBackend) WriteModel(filename string) error {
	f.lastWritten = filename
	return nil
}

func (f *fakeBackend) Close() {
	f.closed = true
}

func TestBuildLoadsColumnwiseModel(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	x, err := m.AddVariable("x", 0, 10, milp.Continuous)
	require.NoError(t, err)
	y, err := m.AddVariable("y", -2, 12, milp.Integer)
	require.NoError(t, err)
	b, err := m.AddVariable("b", -5, 5, milp.Binary)
	require.NoError(t, err)

	expr := milp.Term(x, 1).Add(y, 2)
	_, err = m.AddConstraint("cap", expr, milp.LessEqual, 8)
	require.NoError(t, err)
	_, err = m.AddRangeConstraint("band", milp.Term(b, 3).Add(x, -1), 1, 4)
	require.NoError(t, err)

	require.NoError(t, m.SetObjective(milp.Term(x, 3).Add(y, 2).AddConstant(5), milp.Maximize))

	require.Equal(t, 0, fake.passCount)

	_, err = m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)

	require.Equal(t, 1, fake.passCount)
	require.True(t, fake.maximize)
	require.Equal(t, 5.0, fake.offset)
	require.Len(t, fake.cols, 3)
	require.Len(t, fake.rows, 2)

	require.Equal(t, 3.0, fake.cols[0].cost)
	require.Equal(t, 2.0, fake.cols[1].cost)
	require.Equal(t, Integer, fake.cols[1].vtype)

	// Binary bounds are clamped to [0,1] even though wider bounds are stored.
	require.Equal(t, 0.0, fake.cols[2].lower)
	require.Equal(t, 1.0, fake.cols[2].upper)
	require.Equal(t, Integer, fake.cols[2].vtype)

	require.Equal(t, map[int]float64{0: 1, 1: 2}, fake.rows[0].coeffs)
	require.Equal(t, 8.0, fake.rows[0].upper)
	require.Equal(t, map[int]float64{0: -1, 2: 3}, fake.rows[1].coeffs)
	require.Equal(t, 1.0, fake.rows[1].lower)
	require.Equal(t, 4.0, fake.rows[1].upper)
}

func TestMutationsBeforeBuildAreNotPushed(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	x, err := m.AddVariable("x", 0, 1, milp.Continuous)
	require.NoError(t, err)
	require.NoError(t, m.UpdateVariableBounds(x, 0, 2))
	require.NoError(t, m.RemoveVariable(x))

	require.Equal(t, 0, fake.passCount)
	require.Empty(t, fake.cols)
}

func TestDeletionCompactsIndices(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	vars := make([]*milp.Variable, 5)
	for i := range vars {
		v, err := m.AddVariable("", 0, 10, milp.Continuous)
		require.NoError(t, err)
		vars[i] = v
	}
	_, err := m.AddConstraint("all", milp.Sum(vars...), milp.LessEqual, 20)
	require.NoError(t, err)

	_, err = m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)
	require.Len(t, fake.cols, 5)

	require.NoError(t, m.RemoveVariable(vars[2]))
	require.Len(t, fake.cols, 4)

	// Survivors shift down, the new column lands at the end.
	w, err := m.AddVariable("w", 0, 1, milp.Continuous)
	require.NoError(t, err)

	require.Equal(t, 0, m.varIndex[vars[0]])
	require.Equal(t, 1, m.varIndex[vars[1]])
	require.Equal(t, 2, m.varIndex[vars[3]])
	require.Equal(t, 3, m.varIndex[vars[4]])
	require.Equal(t, 4, m.varIndex[w])
	_, stale := m.varIndex[vars[2]]
	require.False(t, stale)

	require.Equal(t, map[int]float64{0: 1, 1: 1, 2: 1, 3: 1}, fake.rows[0].coeffs)
}

func TestBatchMatchesUnbatchedEdits(t *testing.T) {
	build := func() (*Model, *fakeBackend, *milp.Variable, *milp.Variable, *milp.Constraint) {
		fake := newFakeBackend()
		m := newModel(fake)
		x, err := m.AddVariable("x", 0, 10, milp.Continuous)
		require.NoError(t, err)
		y, err := m.AddVariable("y", 0, 10, milp.Continuous)
		require.NoError(t, err)
		c, err := m.AddConstraint("cap", milp.Term(x, 1).Add(y, 1), milp.LessEqual, 8)
		require.NoError(t, err)
		require.NoError(t, m.SetObjective(milp.Term(x, 3).Add(y, 2), milp.Maximize))
		_, err = m.Solve(milp.WithOutputLevel(0))
		require.NoError(t, err)
		return m, fake, x, y, c
	}

	edit := func(m *Model, x, y *milp.Variable, c *milp.Constraint) {
		require.NoError(t, m.UpdateVariableBounds(x, 1, 9))
		require.NoError(t, m.UpdateConstraintRHS(c, 12))
		require.NoError(t, m.UpdateCoefficient(c, y, 2))
		require.NoError(t, m.UpdateObjectiveCoefficient(y, 4))
	}

	direct, directFake, dx, dy, dc := build()
	edit(direct, dx, dy, dc)

	batched, batchedFake, bx, by, bc := build()
	batched.BeginUpdate()
	edit(batched, bx, by, bc)
	require.NoError(t, batched.EndUpdate())

	opts := cmp.AllowUnexported(fakeBackend{}, fakeCol{}, fakeRow{})
	ignore := cmp.FilterPath(func(p cmp.Path) bool {
		f, ok := p.Last().(cmp.StructField)
		return ok && (f.Name() == "options" || f.Name() == "infoInt" || f.Name() == "infoFloat")
	}, cmp.Ignore())
	if diff := cmp.Diff(directFake, batchedFake, opts, ignore); diff != "" {
		t.Errorf("backend state diverged (-direct +batched):\n%s", diff)
	}
}

func TestNearZeroCoefficientDropsBackendEntry(t *testing.T) {
	build := func() (*Model, *fakeBackend, *milp.Variable, *milp.Constraint) {
		fake := newFakeBackend()
		m := newModel(fake)
		x, err := m.AddVariable("x", 0, 10, milp.Continuous)
		require.NoError(t, err)
		y, err := m.AddVariable("y", 0, 10, milp.Continuous)
		require.NoError(t, err)
		c, err := m.AddConstraint("cap", milp.Term(x, 1).Add(y, 1), milp.LessEqual, 8)
		require.NoError(t, err)
		_, err = m.Solve(milp.WithOutputLevel(0))
		require.NoError(t, err)
		return m, fake, x, c
	}

	// Immediate and batched edits must leave the same backend image: the
	// pruned entry disappears on both paths.
	direct, directFake, dx, dc := build()
	require.NoError(t, direct.UpdateCoefficient(dc, dx, 1e-12))
	require.Equal(t, map[int]float64{1: 1}, directFake.rows[0].coeffs)

	batched, batchedFake, bx, bc := build()
	batched.BeginUpdate()
	require.NoError(t, batched.UpdateCoefficient(bc, bx, 1e-12))
	require.NoError(t, batched.EndUpdate())
	require.Equal(t, map[int]float64{1: 1}, batchedFake.rows[0].coeffs)
}

func TestBatchedConstraintChangeReplacesRow(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	x, err := m.AddVariable("x", 0, 10, milp.Continuous)
	require.NoError(t, err)
	y, err := m.AddVariable("y", 0, 10, milp.Continuous)
	require.NoError(t, err)
	c, err := m.AddConstraint("cap", milp.Term(x, 1).Add(y, 1), milp.LessEqual, 8)
	require.NoError(t, err)
	keep, err := m.AddConstraint("keep", milp.Term(x, 5), milp.GreaterEqual, 1)
	require.NoError(t, err)

	_, err = m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)
	require.Equal(t, 0, m.conIndex[c])

	m.BeginUpdate()
	require.NoError(t, m.UpdateConstraintRHS(c, 20))
	require.NoError(t, m.UpdateCoefficient(c, x, 7))
	require.NoError(t, m.EndUpdate())

	// The modified row was removed and re-added, so it now sits after "keep".
	require.Equal(t, 0, m.conIndex[keep])
	require.Equal(t, 1, m.conIndex[c])
	require.Len(t, fake.rows, 2)
	require.Equal(t, map[int]float64{0: 7, 1: 1}, fake.rows[1].coeffs)
	require.Equal(t, 20.0, fake.rows[1].upper)
}

func TestObjectiveReplacementResetsAllCosts(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	x, err := m.AddVariable("x", 0, 10, milp.Continuous)
	require.NoError(t, err)
	y, err := m.AddVariable("y", 0, 10, milp.Continuous)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(milp.Term(x, 3).Add(y, 2), milp.Maximize))

	_, err = m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)

	require.NoError(t, m.SetObjective(milp.Term(y, 7), milp.Minimize))

	require.False(t, fake.maximize)
	require.Equal(t, 0.0, fake.cols[0].cost)
	require.Equal(t, 7.0, fake.cols[1].cost)
}

func TestWarmStartProjection(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	x, err := m.AddVariable("x", 0, 10, milp.Continuous)
	require.NoError(t, err)
	y, err := m.AddVariable("y", 0, 10, milp.Continuous)
	require.NoError(t, err)
	_, err = m.AddConstraint("cap", milp.Term(x, 1).Add(y, 1), milp.LessEqual, 8)
	require.NoError(t, err)

	fake.colValue = []float64{2, 6}
	sol, err := m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)
	require.True(t, sol.IsOptimal())
	require.Equal(t, 2.0, sol.Value(x))

	// The feasible point is remembered and replayed on the next warm solve.
	fake.colValue = nil
	_, err = m.Solve(milp.WithOutputLevel(0), milp.WithWarmStart(true))
	require.NoError(t, err)
	require.Equal(t, []float64{2, 6}, fake.lastStart)

	// After a deletion and an addition the point is projected onto the new
	// column space; the new variable starts at zero.
	require.NoError(t, m.RemoveVariable(x))
	_, err = m.AddVariable("z", 0, 10, milp.Continuous)
	require.NoError(t, err)

	fake.lastStart = nil
	m.SetWarmStartSolution(map[*milp.Variable]float64{y: 6})
	_, err = m.Solve(milp.WithOutputLevel(0), milp.WithWarmStart(true))
	require.NoError(t, err)
	require.Equal(t, []float64{6, 0}, fake.lastStart)
}

func TestDualsOnlyForContinuousModels(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	x, err := m.AddVariable("x", 0, 10, milp.Continuous)
	require.NoError(t, err)
	c, err := m.AddConstraint("cap", milp.Term(x, 1), milp.LessEqual, 8)
	require.NoError(t, err)

	fake.rowDual = []float64{1.5}
	sol, err := m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)
	require.NotNil(t, sol.Duals)
	require.Equal(t, 1.5, sol.Dual(c))

	_, err = m.AddVariable("n", 0, 5, milp.Integer)
	require.NoError(t, err)
	sol, err = m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)
	require.Nil(t, sol.Duals)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		model ModelStatus
		want  milp.Status
	}{
		{ModelStatusOptimal, milp.StatusOptimal},
		{ModelStatusInfeasible, milp.StatusInfeasible},
		{ModelStatusUnbounded, milp.StatusUnbounded},
		{ModelStatusUnboundedOrInfeasible, milp.StatusUnbounded},
		{ModelStatusTimeLimit, milp.StatusTimeLimit},
		{ModelStatusIterationLimit, milp.StatusIterationLimit},
		{ModelStatusSolutionLimit, milp.StatusSolutionLimit},
		{ModelStatusInterrupt, milp.StatusInterrupted},
		{ModelStatusObjectiveBound, milp.StatusFeasible},
		{ModelStatusNotSet, milp.StatusUnknown},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, mapModelStatus(tc.model), "model status %s", tc.model)
	}
}

func TestRunErrorBecomesNumericalErrorStatus(t *testing.T) {
	fake := newFakeBackend()
	fake.runStatus = StatusError
	m := newModel(fake)

	_, err := m.AddVariable("x", 0, 1, milp.Continuous)
	require.NoError(t, err)

	sol, err := m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)
	require.Equal(t, milp.StatusNumericalError, sol.Status)
	require.False(t, sol.IsFeasible())
}

func TestSolverParamsForwarded(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)
	_, err := m.AddVariable("x", 0, 1, milp.Continuous)
	require.NoError(t, err)

	_, err = m.Solve(
		milp.WithTimeLimit(30),
		milp.WithGapTolerance(0.05),
		milp.WithThreads(4),
		milp.WithNodeLimit(1000),
		milp.WithPresolve("off"),
		milp.WithOutputLevel(0),
		milp.WithOption("random_seed", 7),
	)
	require.NoError(t, err)

	require.Equal(t, 30.0, fake.options["time_limit"])
	require.Equal(t, 0.05, fake.options["mip_rel_gap"])
	require.Equal(t, 4, fake.options["threads"])
	require.Equal(t, 1000, fake.options["mip_max_nodes"])
	require.Equal(t, "off", fake.options["presolve"])
	require.Equal(t, false, fake.options["output_flag"])
	require.Equal(t, 7, fake.options["random_seed"])
}

func TestClosedModelRejectsEverything(t *testing.T) {
	fake := newFakeBackend()
	m := newModel(fake)

	_, err := m.AddVariable("x", 0, 1, milp.Continuous)
	require.NoError(t, err)
	_, err = m.Solve(milp.WithOutputLevel(0))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.True(t, fake.closed)
	require.NoError(t, m.Close())

	_, err = m.AddVariable("y", 0, 1, milp.Continuous)
	require.ErrorIs(t, err, milp.ErrClosed)
	_, err = m.Solve()
	require.ErrorIs(t, err, milp.ErrClosed)
}
