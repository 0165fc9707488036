package milp

// ConstraintType specifies the relation of a constraint to its right-hand side.
type ConstraintType int

const (
	// Equal indicates an equality constraint.
	Equal ConstraintType = iota
	// LessEqual indicates a less-than-or-equal constraint.
	LessEqual
	// GreaterEqual indicates a greater-than-or-equal constraint.
	GreaterEqual
)

// String returns a human-readable representation of the constraint type.
func (t ConstraintType) String() string {
	switch t {
	case Equal:
		return "=="
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return "Unknown"
	}
}

// Constraint is a linear constraint owned by a Store.
//
// A constraint is either typed (Equal/LessEqual/GreaterEqual against a single
// right-hand side) or a range constraint with explicit lower and upper bounds.
// Which form it takes is fixed at creation; the right-hand side and range
// bounds are mutable through Store.UpdateConstraintRHS. Identity is by
// pointer, as for Variable.
type Constraint struct {
	index   int
	name    string
	ctype   ConstraintType
	rhs     float64
	lhs     float64
	isRange bool
}

// Index returns the logical creation index.
func (c *Constraint) Index() int { return c.index }

// Name returns the constraint name.
func (c *Constraint) Name() string { return c.name }

// Type returns the constraint type. It is meaningless for range constraints.
func (c *Constraint) Type() ConstraintType { return c.ctype }

// RHS returns the right-hand side (the upper bound for range constraints).
func (c *Constraint) RHS() float64 { return c.rhs }

// LHS returns the lower bound of a range constraint. For typed constraints it
// is negative infinity.
func (c *Constraint) LHS() float64 { return c.lhs }

// IsRange reports whether the constraint was created in range form.
func (c *Constraint) IsRange() bool { return c.isRange }

func (c *Constraint) String() string { return c.name }
