//go:build cgo && (linux || darwin) && (amd64 || arm64)

// Command knapsack demonstrates incremental re-solving: a small knapsack
// problem is solved, the capacity is relaxed, and a batch adds a new item
// while retuning the objective, each time reusing the solver image built on
// the first solve.
package main

import (
	"fmt"
	"log"

	"github.com/gomilp/milp"
	"github.com/gomilp/milp/highs"
)

func main() {
	m, err := highs.New()
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	values := []float64{10, 13, 18, 31, 7}
	weights := []float64{11, 15, 20, 35, 10}

	items := make([]*milp.Variable, len(values))
	obj := milp.NewExpression()
	load := milp.NewExpression()
	for i := range values {
		v, err := m.AddVariable(fmt.Sprintf("item_%d", i), 0, 1, milp.Binary)
		if err != nil {
			log.Fatal(err)
		}
		items[i] = v
		obj.Add(v, values[i])
		load.Add(v, weights[i])
	}

	capacity, err := m.AddConstraint("capacity", load, milp.LessEqual, 47)
	if err != nil {
		log.Fatal(err)
	}
	if err := m.SetObjective(obj, milp.Maximize); err != nil {
		log.Fatal(err)
	}

	sol, err := m.Solve(milp.Quick(), milp.WithOutputLevel(0))
	if err != nil {
		log.Fatal(err)
	}
	report(m, items, sol, "capacity 47")

	// A bigger knapsack: one attribute edit, then an incremental re-solve.
	if err := m.UpdateConstraintRHS(capacity, 60); err != nil {
		log.Fatal(err)
	}
	sol, err = m.Solve(milp.Quick(), milp.WithOutputLevel(0), milp.WithWarmStart(true))
	if err != nil {
		log.Fatal(err)
	}
	report(m, items, sol, "capacity 60")

	// Add a new item and retune an existing one in a single batch.
	m.BeginUpdate()
	extra, err := m.AddVariable("item_5", 0, 1, milp.Binary)
	if err != nil {
		log.Fatal(err)
	}
	if err := m.UpdateCoefficient(capacity, extra, 22); err != nil {
		log.Fatal(err)
	}
	if err := m.UpdateObjectiveCoefficient(extra, 25); err != nil {
		log.Fatal(err)
	}
	if err := m.UpdateObjectiveCoefficient(items[0], 12); err != nil {
		log.Fatal(err)
	}
	if err := m.EndUpdate(); err != nil {
		log.Fatal(err)
	}
	items = append(items, extra)

	sol, err = m.Solve(milp.Quick(), milp.WithOutputLevel(0), milp.WithWarmStart(true))
	if err != nil {
		log.Fatal(err)
	}
	report(m, items, sol, "with item_5")

	if err := sol.Save("knapsack_solution.json"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("solution written to knapsack_solution.json")
}

func report(m *highs.Model, items []*milp.Variable, sol *milp.Solution, label string) {
	fmt.Printf("%s: %s\n", label, sol)
	if !sol.IsFeasible() {
		return
	}
	for _, v := range items {
		if sol.Value(v) > 0.5 {
			fmt.Printf("  take %s\n", v.Name())
		}
	}
	st := m.Statistics()
	fmt.Printf("  %d vars, %d constraints, %d nonzeros\n",
		st.NumVariables, st.NumConstraints, st.NumNonZeros)
}
