package milp

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// epsilon is the magnitude below which a coefficient is treated as zero and
// dropped, including after arithmetic combination.
const epsilon = 1e-10

// Expression accumulates a sparse linear expression: a mapping from variables
// to non-zero coefficients plus a scalar constant.
//
// Expressions are transient builders: their terms are copied into the model
// when a constraint or objective is created, so an Expression can be reused
// or discarded afterwards. All builder methods return the receiver to allow
// chaining:
//
//	expr := milp.NewExpression().Add(x, 3).Add(y, 2).AddConstant(1)
type Expression struct {
	terms    map[*Variable]float64
	constant float64
}

// NewExpression returns an empty expression.
func NewExpression() *Expression {
	return &Expression{terms: make(map[*Variable]float64)}
}

// Term returns an expression holding the single term coeff*v.
func Term(v *Variable, coeff float64) *Expression {
	return NewExpression().Add(v, coeff)
}

// Sum returns an expression holding each variable with coefficient 1.
func Sum(vars ...*Variable) *Expression {
	e := NewExpression()
	for _, v := range vars {
		e.Add(v, 1)
	}
	return e
}

// Clone returns an independent copy of the expression.
func (e *Expression) Clone() *Expression {
	c := &Expression{
		terms:    make(map[*Variable]float64, len(e.terms)),
		constant: e.constant,
	}
	for v, coeff := range e.terms {
		c.terms[v] = coeff
	}
	return c
}

// Add adds coeff*v to the expression, merging with any existing term. Terms
// whose combined coefficient falls below the zero tolerance are removed.
func (e *Expression) Add(v *Variable, coeff float64) *Expression {
	if math.Abs(coeff) < epsilon {
		return e
	}
	sum := e.terms[v] + coeff
	if math.Abs(sum) < epsilon {
		delete(e.terms, v)
	} else {
		e.terms[v] = sum
	}
	return e
}

// Sub subtracts coeff*v from the expression.
func (e *Expression) Sub(v *Variable, coeff float64) *Expression {
	return e.Add(v, -coeff)
}

// AddExpr adds every term and the constant of other to the expression.
func (e *Expression) AddExpr(other *Expression) *Expression {
	for v, coeff := range other.terms {
		e.Add(v, coeff)
	}
	e.constant += other.constant
	return e
}

// SubExpr subtracts every term and the constant of other from the expression.
func (e *Expression) SubExpr(other *Expression) *Expression {
	for v, coeff := range other.terms {
		e.Add(v, -coeff)
	}
	e.constant -= other.constant
	return e
}

// Scale multiplies every term and the constant by k.
func (e *Expression) Scale(k float64) *Expression {
	for v, coeff := range e.terms {
		scaled := coeff * k
		if math.Abs(scaled) < epsilon {
			delete(e.terms, v)
		} else {
			e.terms[v] = scaled
		}
	}
	e.constant *= k
	return e
}

// AddConstant adds k to the scalar constant.
func (e *Expression) AddConstant(k float64) *Expression {
	e.constant += k
	return e
}

// Constant returns the scalar constant.
func (e *Expression) Constant() float64 { return e.constant }

// Coefficient returns the coefficient of v, or 0 if v has no term.
func (e *Expression) Coefficient(v *Variable) float64 { return e.terms[v] }

// Len returns the number of non-zero terms.
func (e *Expression) Len() int { return len(e.terms) }

// IsEmpty reports whether the expression has no terms and a zero constant.
func (e *Expression) IsEmpty() bool {
	return len(e.terms) == 0 && math.Abs(e.constant) < epsilon
}

// Terms calls fn for every (variable, coefficient) pair.
func (e *Expression) Terms(fn func(v *Variable, coeff float64)) {
	for v, coeff := range e.terms {
		fn(v, coeff)
	}
}

// Variables returns the variables with a non-zero term, in creation order.
func (e *Expression) Variables() []*Variable {
	vars := make([]*Variable, 0, len(e.terms))
	for v := range e.terms {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].index < vars[j].index })
	return vars
}

// String renders the expression, with terms in variable creation order.
func (e *Expression) String() string {
	if e.IsEmpty() {
		return "0"
	}
	var b strings.Builder
	first := true
	for _, v := range e.Variables() {
		coeff := e.terms[v]
		switch {
		case first && coeff < 0:
			b.WriteString("-")
			coeff = -coeff
		case !first && coeff < 0:
			b.WriteString(" - ")
			coeff = -coeff
		case !first:
			b.WriteString(" + ")
		}
		if math.Abs(coeff-1) > epsilon {
			fmt.Fprintf(&b, "%g*", coeff)
		}
		b.WriteString(v.Name())
		first = false
	}
	if math.Abs(e.constant) > epsilon {
		if first {
			fmt.Fprintf(&b, "%g", e.constant)
		} else if e.constant < 0 {
			fmt.Fprintf(&b, " - %g", -e.constant)
		} else {
			fmt.Fprintf(&b, " + %g", e.constant)
		}
	}
	return b.String()
}
