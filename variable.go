package milp

// VarType specifies the domain of a decision variable.
type VarType int

const (
	// Continuous indicates a continuous variable (default).
	Continuous VarType = iota
	// Integer indicates a general integer variable.
	Integer
	// Binary indicates a 0/1 variable.
	Binary
)

// String returns a human-readable representation of the variable type.
func (t VarType) String() string {
	switch t {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Variable is a decision variable owned by a Store.
//
// Its identity (index, name, type) is fixed at creation; only the bounds are
// mutable, and only through Store.UpdateVariableBounds. Two variables are the
// same variable exactly when they are the same pointer: a backend holds only
// a derived index mapping, never ownership.
type Variable struct {
	index int
	name  string
	lower float64
	upper float64
	vtype VarType
}

// Index returns the logical creation index, stable for the life of the model.
func (v *Variable) Index() int { return v.index }

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// LowerBound returns the current lower bound.
func (v *Variable) LowerBound() float64 { return v.lower }

// UpperBound returns the current upper bound.
func (v *Variable) UpperBound() float64 { return v.upper }

// Type returns the variable type.
func (v *Variable) Type() VarType { return v.vtype }

func (v *Variable) String() string { return v.name }
