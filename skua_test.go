package main

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/tobik/skua/parsers"
	"github.com/tobik/skua/sat"
)

// This test suite evaluates the solver end to end on a set of DIMACS
// instances with known status. Instances under testdata/sat must be reported
// satisfiable (and the returned model is checked against every clause);
// instances under testdata/unsat must be reported unsatisfiable.

type testCase struct {
	name    string
	file    string
	wantSat bool
}

func listTestCases(t *testing.T, dir string) []testCase {
	t.Helper()
	testCases := []testCase{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".cnf") {
			return nil
		}
		testCases = append(testCases, testCase{
			name:    d.Name(),
			file:    path,
			wantSat: strings.Contains(path, string(filepath.Separator)+"sat"+string(filepath.Separator)),
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Error listing test cases: %s", err)
	}
	return testCases
}

// recorder implements parsers.SATSolver and keeps the instance's clauses so
// that models can be verified independently from the solver.
type recorder struct {
	variables int
	clauses   [][]sat.Literal
}

func (r *recorder) AddVariable() int {
	r.variables++
	return r.variables
}

func (r *recorder) AddClause(tmpClause []sat.Literal) error {
	clause := make([]sat.Literal, len(tmpClause))
	copy(clause, tmpClause)
	r.clauses = append(r.clauses, clause)
	return nil
}

func modelSatisfies(model []bool, clause []sat.Literal) bool {
	for _, l := range clause {
		if model[l.Var()-1] == l.IsPositive() {
			return true
		}
	}
	return false
}

func TestSolveInstances(t *testing.T) {
	for _, tc := range listTestCases(t, "testdata") {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := sat.NewDefaultSolver()
			if err := parsers.LoadDIMACS(tc.file, false, s); err != nil {
				t.Fatalf("Instance parsing error: %s", err)
			}
			rec := &recorder{}
			if err := parsers.LoadDIMACS(tc.file, false, rec); err != nil {
				t.Fatalf("Instance parsing error: %s", err)
			}

			got := s.Solve()
			if got != sat.Lift(tc.wantSat) {
				t.Fatalf("Solve(): got %s, want %s", got, sat.Lift(tc.wantSat))
			}
			if got != sat.True {
				return
			}

			model := s.Model()
			if len(model) != rec.variables {
				t.Fatalf("Model size: got %d, want %d", len(model), rec.variables)
			}
			for _, clause := range rec.clauses {
				if !modelSatisfies(model, clause) {
					t.Errorf("Unsatisfied clause: %# v", pretty.Formatter(clause))
				}
			}
		})
	}
}

func TestSolveInstances_deterministic(t *testing.T) {
	file := filepath.Join("testdata", "sat", "blocks.cnf")

	solve := func() (sat.LBool, []bool) {
		s := sat.NewDefaultSolver()
		if err := parsers.LoadDIMACS(file, false, s); err != nil {
			t.Fatalf("Instance parsing error: %s", err)
		}
		return s.Solve(), s.Model()
	}

	status1, model1 := solve()
	status2, model2 := solve()
	if status1 != status2 {
		t.Fatalf("statuses differ: %s vs %s", status1, status2)
	}
	for i := range model1 {
		if model1[i] != model2[i] {
			t.Fatalf("models differ at variable %d:\n%s", i+1, strings.Join(pretty.Diff(model1, model2), "\n"))
		}
	}
}
