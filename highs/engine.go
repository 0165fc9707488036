package highs

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gomilp/milp"
	"github.com/gomilp/milp/logger"
)

// backend is the solver surface the synchronization engine drives. Solver
// implements it over the HiGHS C API; tests substitute an in-memory fake.
type backend interface {
	AddCol(cost, lower, upper float64, index []int, value []float64) error
	AddRow(lower, upper float64, index []int, value []float64) error
	ChangeColBounds(col int, lower, upper float64) error
	ChangeRowBounds(row int, lower, upper float64) error
	ChangeColCost(col int, cost float64) error
	ChangeColIntegrality(col int, varType VariableType) error
	ChangeCoeff(row, col int, value float64) error
	DeleteColsByMask(mask []bool) error
	DeleteRowsByMask(mask []bool) error
	PassModel(numCol, numRow int,
		colCost, colLower, colUpper []float64,
		rowLower, rowUpper []float64,
		aStart, aIndex []int, aValue []float64,
		integrality []VariableType,
		maximize bool, offset float64) error
	ChangeObjectiveSense(maximize bool) error
	ChangeObjectiveOffset(offset float64) error
	SetSolution(colValue []float64) error
	SetBoolOption(name string, value bool) error
	SetIntOption(name string, value int) error
	SetFloatOption(name string, value float64) error
	SetStringOption(name, value string) error
	Run() Status
	ModelStatus() ModelStatus
	PrimalDualSolution() (colValue, colDual, rowValue, rowDual []float64, err error)
	GetInt64Info(name string) (int64, error)
	GetFloatInfo(name string) (float64, error)
	WriteModel(filename string) error
	Close()
}

// Model is a milp.Model backed by HiGHS. It embeds a milp.Store and acts as
// its Sink: every store mutation arrives as a notification and is translated
// into HiGHS calls against the current dense index space.
//
// The HiGHS image is lazy. Nothing is pushed before the first solve loads the
// whole model in one column-wise pass; from then on edits are applied
// incrementally. While a batch is open, edits are recorded as a command list
// that captures logical identities only and resolves indices when replayed at
// EndUpdate, so commands stay valid across deletions earlier in the batch.
//
// Deleting a column or row makes HiGHS compact the surviving indices, so
// every structural deletion is followed by a rebuild of both index maps.
type Model struct {
	*milp.Store

	hs        backend
	built     bool
	closed    bool
	deferring bool
	queue     []operation

	// Bijective maps between logical identities and dense backend indices.
	varIndex map[*milp.Variable]int
	colVars  []*milp.Variable
	conIndex map[*milp.Constraint]int
	rowCons  []*milp.Constraint

	warmStart map[*milp.Variable]float64

	lastBuildTime time.Duration
	lastSolveTime time.Duration

	log zerolog.Logger
}

var _ milp.Model = (*Model)(nil)
var _ milp.Sink = (*Model)(nil)

func newModel(hs backend) *Model {
	m := &Model{
		hs:       hs,
		varIndex: make(map[*milp.Variable]int),
		conIndex: make(map[*milp.Constraint]int),
		log:      logger.Logger().With().Str("solver", "highs").Logger(),
	}
	m.Store = milp.NewStore(m)
	return m
}

type opKind int

const (
	opAddColumn opKind = iota
	opAddRow
	opChangeColumnBounds
	opChangeRowBounds
	opChangeColumnCost
	opChangeCoefficient
	opDeleteColumn
	opDeleteRow
	opReplaceObjective
)

// operation is one deferred edit. It references entities by logical identity;
// dense indices are looked up when the operation is applied.
type operation struct {
	kind       opKind
	variable   *milp.Variable
	constraint *milp.Constraint
	value      float64
}

func (m *Model) dispatch(op operation) error {
	if m.closed {
		return milp.ErrClosed
	}
	if !m.built {
		// The first build reads the whole store; nothing to mirror yet.
		return nil
	}
	if m.deferring {
		m.queue = append(m.queue, op)
		return nil
	}
	return m.apply(op)
}

func (m *Model) apply(op operation) error {
	switch op.kind {
	case opAddColumn:
		return m.applyAddColumn(op.variable)
	case opAddRow:
		return m.applyAddRow(op.constraint)
	case opChangeColumnBounds:
		return m.applyChangeColumnBounds(op.variable)
	case opChangeRowBounds:
		return m.applyChangeRowBounds(op.constraint)
	case opChangeColumnCost:
		return m.applyChangeColumnCost(op.variable, op.value)
	case opChangeCoefficient:
		return m.applyChangeCoefficient(op.constraint, op.variable, op.value)
	case opDeleteColumn:
		return m.applyDeleteColumn(op.variable)
	case opDeleteRow:
		return m.applyDeleteRow(op.constraint)
	case opReplaceObjective:
		return m.applyReplaceObjective()
	default:
		return newErrorMsg("apply", "unknown operation")
	}
}

func (m *Model) applyAddColumn(v *milp.Variable) error {
	lower, upper := backendBounds(v)
	var index []int
	var value []float64
	for _, c := range m.rowCons {
		if coeff, ok := m.Row(c)[v]; ok {
			index = append(index, m.conIndex[c])
			value = append(value, coeff)
		}
	}
	if err := m.hs.AddCol(m.ObjectiveCoefficient(v), lower, upper, index, value); err != nil {
		return err
	}
	col := len(m.colVars)
	m.colVars = append(m.colVars, v)
	m.varIndex[v] = col
	if it := integralityOf(v); it != Continuous {
		return m.hs.ChangeColIntegrality(col, it)
	}
	return nil
}

func (m *Model) applyAddRow(c *milp.Constraint) error {
	lower, upper := rowBounds(c)
	row := m.Row(c)
	index := make([]int, 0, len(row))
	value := make([]float64, 0, len(row))
	for _, v := range m.colVars {
		if coeff, ok := row[v]; ok {
			index = append(index, m.varIndex[v])
			value = append(value, coeff)
		}
	}
	if err := m.hs.AddRow(lower, upper, index, value); err != nil {
		return err
	}
	m.conIndex[c] = len(m.rowCons)
	m.rowCons = append(m.rowCons, c)
	return nil
}

func (m *Model) applyChangeColumnBounds(v *milp.Variable) error {
	col, ok := m.varIndex[v]
	if !ok {
		return nil
	}
	lower, upper := backendBounds(v)
	return m.hs.ChangeColBounds(col, lower, upper)
}

func (m *Model) applyChangeRowBounds(c *milp.Constraint) error {
	row, ok := m.conIndex[c]
	if !ok {
		return nil
	}
	lower, upper := rowBounds(c)
	return m.hs.ChangeRowBounds(row, lower, upper)
}

func (m *Model) applyChangeColumnCost(v *milp.Variable, cost float64) error {
	col, ok := m.varIndex[v]
	if !ok {
		return nil
	}
	return m.hs.ChangeColCost(col, cost)
}

func (m *Model) applyChangeCoefficient(c *milp.Constraint, v *milp.Variable, value float64) error {
	row, okRow := m.conIndex[c]
	col, okCol := m.varIndex[v]
	if !okRow || !okCol {
		return nil
	}
	return m.hs.ChangeCoeff(row, col, value)
}

func (m *Model) applyDeleteColumn(v *milp.Variable) error {
	col, ok := m.varIndex[v]
	if !ok {
		return nil
	}
	mask := make([]bool, len(m.colVars))
	mask[col] = true
	if err := m.hs.DeleteColsByMask(mask); err != nil {
		return err
	}
	m.colVars = append(m.colVars[:col], m.colVars[col+1:]...)
	m.rebuildIndexMaps()
	return nil
}

func (m *Model) applyDeleteRow(c *milp.Constraint) error {
	row, ok := m.conIndex[c]
	if !ok {
		return nil
	}
	mask := make([]bool, len(m.rowCons))
	mask[row] = true
	if err := m.hs.DeleteRowsByMask(mask); err != nil {
		return err
	}
	m.rowCons = append(m.rowCons[:row], m.rowCons[row+1:]...)
	m.rebuildIndexMaps()
	return nil
}

func (m *Model) applyReplaceObjective() error {
	if err := m.hs.ChangeObjectiveSense(m.ObjectiveSense() == milp.Maximize); err != nil {
		return err
	}
	if err := m.hs.ChangeObjectiveOffset(m.ObjectiveConstant()); err != nil {
		return err
	}
	// Replacing the objective clears terms it no longer has, so every column
	// cost is re-pushed.
	for col, v := range m.colVars {
		if err := m.hs.ChangeColCost(col, m.ObjectiveCoefficient(v)); err != nil {
			return err
		}
	}
	return nil
}

// rebuildIndexMaps recomputes both logical-to-dense maps from the surviving
// entity slices. HiGHS compacts indices on deletion, so a stale map on either
// side would address the wrong column or row.
func (m *Model) rebuildIndexMaps() {
	clear(m.varIndex)
	for i, v := range m.colVars {
		m.varIndex[v] = i
	}
	clear(m.conIndex)
	for i, c := range m.rowCons {
		m.conIndex[c] = i
	}
}

// build loads the entire store into HiGHS as one column-wise pass.
func (m *Model) build() error {
	start := time.Now()
	vars := m.ActiveVariables()
	cons := m.ActiveConstraints()

	m.colVars = vars
	m.rowCons = cons
	m.rebuildIndexMaps()

	numCol := len(vars)
	numRow := len(cons)

	colCost := make([]float64, numCol)
	colLower := make([]float64, numCol)
	colUpper := make([]float64, numCol)
	hasIntegers := false
	for i, v := range vars {
		colCost[i] = m.ObjectiveCoefficient(v)
		colLower[i], colUpper[i] = backendBounds(v)
		if integralityOf(v) != Continuous {
			hasIntegers = true
		}
	}
	var integrality []VariableType
	if hasIntegers {
		integrality = make([]VariableType, numCol)
		for i, v := range vars {
			integrality[i] = integralityOf(v)
		}
	}

	rowLower := make([]float64, numRow)
	rowUpper := make([]float64, numRow)

	// Gather the row-authored matrix into per-column entry lists. Rows are
	// visited in dense order, so each column's row indices come out sorted.
	type entry struct {
		row   int
		value float64
	}
	colEntries := make([][]entry, numCol)
	nnz := 0
	for ri, c := range cons {
		rowLower[ri], rowUpper[ri] = rowBounds(c)
		for v, coeff := range m.Row(c) {
			ci, ok := m.varIndex[v]
			if !ok {
				continue
			}
			colEntries[ci] = append(colEntries[ci], entry{row: ri, value: coeff})
			nnz++
		}
	}
	for _, entries := range colEntries {
		for i := 1; i < len(entries); i++ {
			for j := i; j > 0 && entries[j].row < entries[j-1].row; j-- {
				entries[j], entries[j-1] = entries[j-1], entries[j]
			}
		}
	}

	aStart := make([]int, numCol+1)
	aIndex := make([]int, 0, nnz)
	aValue := make([]float64, 0, nnz)
	for ci, entries := range colEntries {
		aStart[ci] = len(aIndex)
		for _, e := range entries {
			aIndex = append(aIndex, e.row)
			aValue = append(aValue, e.value)
		}
	}
	aStart[numCol] = len(aIndex)

	err := m.hs.PassModel(numCol, numRow,
		colCost, colLower, colUpper,
		rowLower, rowUpper,
		aStart, aIndex, aValue,
		integrality,
		m.ObjectiveSense() == milp.Maximize,
		m.ObjectiveConstant())
	if err != nil {
		return err
	}
	m.built = true
	m.lastBuildTime = time.Since(start)
	m.log.Debug().
		Int("cols", numCol).
		Int("rows", numRow).
		Int("nonzeros", nnz).
		Dur("took", m.lastBuildTime).
		Msg("model loaded")
	return nil
}

func (m *Model) ensureBuilt() error {
	if m.closed {
		return milp.ErrClosed
	}
	if m.built {
		return nil
	}
	return m.build()
}

// backendBounds returns the bounds pushed to the solver. Binary variables are
// clamped to [0,1] regardless of the stored bounds.
func backendBounds(v *milp.Variable) (float64, float64) {
	lower, upper := v.LowerBound(), v.UpperBound()
	if v.Type() == milp.Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	return lower, upper
}

// rowBounds translates a constraint into the two-sided row bounds HiGHS uses.
func rowBounds(c *milp.Constraint) (float64, float64) {
	if c.IsRange() {
		return c.LHS(), c.RHS()
	}
	switch c.Type() {
	case milp.Equal:
		return c.RHS(), c.RHS()
	case milp.GreaterEqual:
		return c.RHS(), math.Inf(1)
	default:
		return math.Inf(-1), c.RHS()
	}
}

func integralityOf(v *milp.Variable) VariableType {
	switch v.Type() {
	case milp.Integer, milp.Binary:
		return Integer
	default:
		return Continuous
	}
}

// Sink implementation. The store notifies structural mutations immediately
// even inside a batch; the engine decides whether to apply or defer.

func (m *Model) OnVariableAdded(v *milp.Variable) error {
	return m.dispatch(operation{kind: opAddColumn, variable: v})
}

func (m *Model) OnVariableBoundsChanged(v *milp.Variable) error {
	return m.dispatch(operation{kind: opChangeColumnBounds, variable: v})
}

func (m *Model) OnVariableRemoved(v *milp.Variable) error {
	return m.dispatch(operation{kind: opDeleteColumn, variable: v})
}

func (m *Model) OnConstraintAdded(c *milp.Constraint) error {
	return m.dispatch(operation{kind: opAddRow, constraint: c})
}

func (m *Model) OnConstraintRHSChanged(c *milp.Constraint) error {
	return m.dispatch(operation{kind: opChangeRowBounds, constraint: c})
}

// OnConstraintModified handles a batched constraint whose RHS or coefficients
// changed in unknown combination: the row is removed and re-added from the
// store's current image.
func (m *Model) OnConstraintModified(c *milp.Constraint) error {
	if err := m.dispatch(operation{kind: opDeleteRow, constraint: c}); err != nil {
		return err
	}
	return m.dispatch(operation{kind: opAddRow, constraint: c})
}

func (m *Model) OnConstraintRemoved(c *milp.Constraint) error {
	return m.dispatch(operation{kind: opDeleteRow, constraint: c})
}

func (m *Model) OnObjectiveChanged() error {
	return m.dispatch(operation{kind: opReplaceObjective})
}

func (m *Model) OnObjectiveCoefficientChanged(v *milp.Variable, coeff float64) error {
	return m.dispatch(operation{kind: opChangeColumnCost, variable: v, value: coeff})
}

func (m *Model) OnCoefficientChanged(c *milp.Constraint, v *milp.Variable, coeff float64) error {
	return m.dispatch(operation{kind: opChangeCoefficient, constraint: c, variable: v, value: coeff})
}

func (m *Model) OnBeginUpdate() {
	m.deferring = true
}

// OnEndUpdate replays the deferred command list in recorded order. Indices
// are resolved per command, so commands survive deletions replayed before
// them.
func (m *Model) OnEndUpdate() error {
	m.deferring = false
	queue := m.queue
	m.queue = nil
	if m.closed || !m.built {
		return nil
	}
	for _, op := range queue {
		if err := m.apply(op); err != nil {
			return err
		}
	}
	return nil
}
