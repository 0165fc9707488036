package milp

import (
	"fmt"
	"math"
)

// Store is the solver-agnostic record of a model: variables, constraints, the
// objective and the sparse constraint matrix. Every mutation updates the
// store's own bookkeeping and notifies the attached Sink so a backend can
// mirror the change.
//
// Removed entities are tombstoned, never recycled: a *Variable stays a valid
// key into past Solutions, but any further mutation addressed at it fails
// with ErrDeletedVariable/ErrDeletedConstraint. Enumerations used to build a
// backend image skip tombstoned entities.
//
// A Store is not safe for concurrent use; the whole model assumes a single
// caller.
type Store struct {
	sink Sink

	vars       []*Variable
	varsByName map[string]*Variable
	cons       []*Constraint

	// rows holds one sparse row per live constraint. A zero-valued entry is
	// never stored; setting a coefficient to ~0 removes the entry.
	rows map[*Constraint]map[*Variable]float64

	objCoeffs   map[*Variable]float64
	objSense    Sense
	objConstant float64

	deletedVars map[*Variable]struct{}
	deletedCons map[*Constraint]struct{}

	// Batch state. Dirty slices keep first-touch order so flushing at
	// EndUpdate is deterministic.
	inBatch     bool
	dirtyVars   []*Variable
	dirtyVarSet map[*Variable]struct{}
	dirtyCons   []*Constraint
	dirtyConSet map[*Constraint]struct{}
	objDirty    bool

	varSeq int
	conSeq int
}

// NewStore returns an empty store notifying sink. A nil sink is replaced by
// NopSink.
func NewStore(sink Sink) *Store {
	if sink == nil {
		sink = NopSink{}
	}
	return &Store{
		sink:        sink,
		varsByName:  make(map[string]*Variable),
		rows:        make(map[*Constraint]map[*Variable]float64),
		objCoeffs:   make(map[*Variable]float64),
		deletedVars: make(map[*Variable]struct{}),
		deletedCons: make(map[*Constraint]struct{}),
		dirtyVarSet: make(map[*Variable]struct{}),
		dirtyConSet: make(map[*Constraint]struct{}),
	}
}

// AddVariable creates a variable with the given bounds and type. An empty
// name auto-generates a unique one ("x0", "x1", ...). Bounds are not
// validated here; an inverted pair is passed through and rejected by the
// backend at solve time.
func (s *Store) AddVariable(name string, lower, upper float64, vtype VarType) (*Variable, error) {
	if name == "" {
		name = fmt.Sprintf("x%d", s.varSeq)
		s.varSeq++
	}
	v := &Variable{
		index: len(s.vars),
		name:  name,
		lower: lower,
		upper: upper,
		vtype: vtype,
	}
	s.vars = append(s.vars, v)
	s.varsByName[name] = v

	if err := s.sink.OnVariableAdded(v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateVariableBounds changes the bounds of v.
func (s *Store) UpdateVariableBounds(v *Variable, lower, upper float64) error {
	if _, gone := s.deletedVars[v]; gone {
		return fmt.Errorf("%w: %s", ErrDeletedVariable, v.name)
	}
	v.lower = lower
	v.upper = upper

	if s.inBatch {
		s.markVariableDirty(v)
		return nil
	}
	return s.sink.OnVariableBoundsChanged(v)
}

// RemoveVariable tombstones v, purging it from the objective and from every
// constraint row. Removing an already removed variable is a no-op.
func (s *Store) RemoveVariable(v *Variable) error {
	if _, gone := s.deletedVars[v]; gone {
		return nil
	}
	s.deletedVars[v] = struct{}{}
	if s.varsByName[v.name] == v {
		delete(s.varsByName, v.name)
	}
	delete(s.objCoeffs, v)
	for _, row := range s.rows {
		delete(row, v)
	}
	return s.sink.OnVariableRemoved(v)
}

// AddConstraint creates a typed constraint from the non-zero terms of expr.
// An empty name auto-generates a unique one ("c0", "c1", ...). The terms are
// copied; expr can be reused afterwards.
func (s *Store) AddConstraint(name string, expr *Expression, ctype ConstraintType, rhs float64) (*Constraint, error) {
	c := &Constraint{
		index: len(s.cons),
		name:  s.constraintName(name),
		ctype: ctype,
		rhs:   rhs,
		lhs:   math.Inf(-1),
	}
	return s.appendConstraint(c, expr)
}

// AddRangeConstraint creates a range constraint lower <= expr <= upper.
func (s *Store) AddRangeConstraint(name string, expr *Expression, lower, upper float64) (*Constraint, error) {
	c := &Constraint{
		index:   len(s.cons),
		name:    s.constraintName(name),
		lhs:     lower,
		rhs:     upper,
		isRange: true,
	}
	return s.appendConstraint(c, expr)
}

func (s *Store) constraintName(name string) string {
	if name == "" {
		name = fmt.Sprintf("c%d", s.conSeq)
		s.conSeq++
	}
	return name
}

func (s *Store) appendConstraint(c *Constraint, expr *Expression) (*Constraint, error) {
	s.cons = append(s.cons, c)
	row := make(map[*Variable]float64, expr.Len())
	expr.Terms(func(v *Variable, coeff float64) {
		row[v] = coeff
	})
	s.rows[c] = row

	if err := s.sink.OnConstraintAdded(c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateConstraintRHS changes the right-hand side of a typed constraint. For
// a range constraint it moves the upper bound and leaves the lower bound
// untouched.
func (s *Store) UpdateConstraintRHS(c *Constraint, rhs float64) error {
	if _, gone := s.deletedCons[c]; gone {
		return fmt.Errorf("%w: %s", ErrDeletedConstraint, c.name)
	}
	c.rhs = rhs

	if s.inBatch {
		s.markConstraintDirty(c)
		return nil
	}
	return s.sink.OnConstraintRHSChanged(c)
}

// UpdateCoefficient sets the coefficient of v in c. A near-zero coefficient
// removes the matrix entry.
func (s *Store) UpdateCoefficient(c *Constraint, v *Variable, coeff float64) error {
	if _, gone := s.deletedCons[c]; gone {
		return fmt.Errorf("%w: %s", ErrDeletedConstraint, c.name)
	}
	if _, gone := s.deletedVars[v]; gone {
		return fmt.Errorf("%w: %s", ErrDeletedVariable, v.name)
	}
	row := s.rows[c]
	if row == nil {
		row = make(map[*Variable]float64)
		s.rows[c] = row
	}
	if math.Abs(coeff) < epsilon {
		// The entry is gone from the row; the sink must drop it too.
		delete(row, v)
		coeff = 0
	} else {
		row[v] = coeff
	}

	if s.inBatch {
		s.markConstraintDirty(c)
		return nil
	}
	return s.sink.OnCoefficientChanged(c, v, coeff)
}

// RemoveConstraint tombstones c and drops its matrix row. Removing an
// already removed constraint is a no-op.
func (s *Store) RemoveConstraint(c *Constraint) error {
	if _, gone := s.deletedCons[c]; gone {
		return nil
	}
	s.deletedCons[c] = struct{}{}
	delete(s.rows, c)
	return s.sink.OnConstraintRemoved(c)
}

// SetObjective replaces the entire objective, copying the non-zero terms and
// the constant of expr.
func (s *Store) SetObjective(expr *Expression, sense Sense) error {
	s.objSense = sense
	s.objConstant = expr.Constant()
	clear(s.objCoeffs)
	expr.Terms(func(v *Variable, coeff float64) {
		s.objCoeffs[v] = coeff
	})

	if s.inBatch {
		s.objDirty = true
		return nil
	}
	return s.sink.OnObjectiveChanged()
}

// UpdateObjectiveCoefficient sets the objective coefficient of v. A
// near-zero coefficient removes the term.
func (s *Store) UpdateObjectiveCoefficient(v *Variable, coeff float64) error {
	if _, gone := s.deletedVars[v]; gone {
		return fmt.Errorf("%w: %s", ErrDeletedVariable, v.name)
	}
	if math.Abs(coeff) < epsilon {
		delete(s.objCoeffs, v)
	} else {
		s.objCoeffs[v] = coeff
	}

	if s.inBatch {
		s.objDirty = true
		return nil
	}
	return s.sink.OnObjectiveCoefficientChanged(v, coeff)
}

// BeginUpdate opens a batch: attribute mutations are coalesced into dirty
// sets until EndUpdate, and the sink is told to defer structural mutations.
// Batches do not nest.
func (s *Store) BeginUpdate() {
	s.inBatch = true
	s.resetDirty()
	s.sink.OnBeginUpdate()
}

// EndUpdate closes the batch and flushes the coalesced changes in a fixed
// order: variable bounds, then constraint modifications, then the objective,
// then the sink's own deferred work. The flush is not atomic; a failure
// leaves the backend partially updated and is surfaced as-is.
func (s *Store) EndUpdate() error {
	if !s.inBatch {
		return nil
	}
	s.inBatch = false

	for _, v := range s.dirtyVars {
		if _, gone := s.deletedVars[v]; gone {
			continue
		}
		if err := s.sink.OnVariableBoundsChanged(v); err != nil {
			return err
		}
	}
	for _, c := range s.dirtyCons {
		if _, gone := s.deletedCons[c]; gone {
			continue
		}
		if err := s.sink.OnConstraintModified(c); err != nil {
			return err
		}
	}
	if s.objDirty {
		if err := s.sink.OnObjectiveChanged(); err != nil {
			return err
		}
	}
	if err := s.sink.OnEndUpdate(); err != nil {
		return err
	}
	s.resetDirty()
	return nil
}

func (s *Store) resetDirty() {
	s.dirtyVars = s.dirtyVars[:0]
	clear(s.dirtyVarSet)
	s.dirtyCons = s.dirtyCons[:0]
	clear(s.dirtyConSet)
	s.objDirty = false
}

func (s *Store) markVariableDirty(v *Variable) {
	if _, ok := s.dirtyVarSet[v]; ok {
		return
	}
	s.dirtyVarSet[v] = struct{}{}
	s.dirtyVars = append(s.dirtyVars, v)
}

func (s *Store) markConstraintDirty(c *Constraint) {
	if _, ok := s.dirtyConSet[c]; ok {
		return
	}
	s.dirtyConSet[c] = struct{}{}
	s.dirtyCons = append(s.dirtyCons, c)
}

// NumVariables returns the number of active (non-removed) variables.
func (s *Store) NumVariables() int { return len(s.vars) - len(s.deletedVars) }

// NumConstraints returns the number of active constraints.
func (s *Store) NumConstraints() int { return len(s.cons) - len(s.deletedCons) }

// NumNonZeros returns the number of entries in the constraint matrix.
func (s *Store) NumNonZeros() int {
	nnz := 0
	for _, row := range s.rows {
		nnz += len(row)
	}
	return nnz
}

// Statistics returns the active entity counts. Build and solve durations are
// filled in by backend models.
func (s *Store) Statistics() Stats {
	st := Stats{
		NumVariables:   s.NumVariables(),
		NumConstraints: s.NumConstraints(),
		NumNonZeros:    s.NumNonZeros(),
	}
	for _, v := range s.vars {
		if _, gone := s.deletedVars[v]; gone {
			continue
		}
		switch v.vtype {
		case Integer:
			st.NumIntegers++
		case Binary:
			st.NumBinaries++
		}
	}
	return st
}

// VariableByName returns the active variable with the given name, or nil if
// no such variable exists or it has been removed.
func (s *Store) VariableByName(name string) *Variable {
	v, ok := s.varsByName[name]
	if !ok {
		return nil
	}
	if _, gone := s.deletedVars[v]; gone {
		return nil
	}
	return v
}

// ActiveVariables returns the active variables in creation order.
func (s *Store) ActiveVariables() []*Variable {
	active := make([]*Variable, 0, s.NumVariables())
	for _, v := range s.vars {
		if _, gone := s.deletedVars[v]; !gone {
			active = append(active, v)
		}
	}
	return active
}

// ActiveConstraints returns the active constraints in creation order.
func (s *Store) ActiveConstraints() []*Constraint {
	active := make([]*Constraint, 0, s.NumConstraints())
	for _, c := range s.cons {
		if _, gone := s.deletedCons[c]; !gone {
			active = append(active, c)
		}
	}
	return active
}

// Row returns a copy of the sparse coefficient row of c. The copy is safe to
// keep across further mutations.
func (s *Store) Row(c *Constraint) map[*Variable]float64 {
	row := s.rows[c]
	out := make(map[*Variable]float64, len(row))
	for v, coeff := range row {
		out[v] = coeff
	}
	return out
}

// ObjectiveCoefficient returns the objective coefficient of v, or 0.
func (s *Store) ObjectiveCoefficient(v *Variable) float64 { return s.objCoeffs[v] }

// ObjectiveSense returns the optimization direction.
func (s *Store) ObjectiveSense() Sense { return s.objSense }

// ObjectiveConstant returns the constant offset of the objective.
func (s *Store) ObjectiveConstant() float64 { return s.objConstant }

// IsRemoved reports whether v has been tombstoned.
func (s *Store) IsRemoved(v *Variable) bool {
	_, gone := s.deletedVars[v]
	return gone
}

// IsRemovedConstraint reports whether c has been tombstoned.
func (s *Store) IsRemovedConstraint(c *Constraint) bool {
	_, gone := s.deletedCons[c]
	return gone
}
