// Package milp provides a solver-agnostic model for mixed-integer linear
// programs that supports incremental edits between solves.
//
// A model is built once from variables, constraints and an objective, and can
// then be mutated (bound changes, coefficient changes, additions, deletions)
// without being rebuilt from scratch: a backend package keeps the solver's
// sparse representation synchronized with the logical model and re-solves
// incrementally, carrying the last feasible solution over as a warm start.
//
// This package holds the solver-agnostic pieces: the Store bookkeeping,
// Expression building, solver parameters and the Solution record. The actual
// solver integration lives in a backend package such as
// github.com/gomilp/milp/highs, whose Model type implements the Model
// interface defined here.
//
// # Example
//
//	m, err := highs.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//
//	x, _ := m.AddVariable("x", 0, 10, milp.Continuous)
//	y, _ := m.AddVariable("y", 0, 10, milp.Continuous)
//
//	m.SetObjective(milp.NewExpression().Add(x, 3).Add(y, 2), milp.Maximize)
//	c1, _ := m.AddConstraint("c1", milp.NewExpression().Add(x, 1).Add(y, 1), milp.LessEqual, 8)
//	m.AddConstraint("c2", milp.NewExpression().Add(x, 2).Add(y, 1), milp.LessEqual, 14)
//
//	sol, err := m.Solve(milp.WithOutputLevel(0))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(sol.Objective, sol.Value(x), sol.Value(y))
//
//	// Incremental edit and re-solve with a warm start.
//	m.UpdateConstraintRHS(c1, 10)
//	sol, err = m.Solve(milp.WithWarmStart(true))
package milp
