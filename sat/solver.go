package sat

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// reasonDecision marks trail entries that were assigned by a decision rather
// than implied by a clause.
const reasonDecision = -1

// Solver decides the satisfiability of a formula in conjunctive normal form
// using conflict-driven clause learning. A Solver instance owns all of its
// state and must not be shared between goroutines; separate instances are
// fully independent.
type Solver struct {
	form formula

	// Assignment state, indexed by variable ID. Variable 0 is reserved as a
	// "no variable" sentinel, so every slice has an unused first slot.
	assigns []LBool
	phases  []bool // saved polarities, survive unassignment
	levels  []int  // decision level of each assigned variable, -1 otherwise
	varPos  []int  // trail position of each assigned variable, -1 otherwise

	// Watch lists of clause indices, indexed by watchIndex. A clause with two
	// or more literals appears in exactly two of them.
	watches [][]int

	// Trail of assigned literals in assignment order, with parallel reasons
	// (the index of the implying clause, or reasonDecision). decisions holds
	// the trail index of each level's decision literal.
	trail     []Literal
	reasons   []int
	decisions []int
	head      int // propagation head into the trail

	// Variable ordering and decision polarity.
	order         *VarOrder
	decisionCount int
	rng           *rand.Rand

	clauseInc   float64
	clauseDecay float64

	// Restart state. conflicts counts conflicts since the last restart.
	conflicts    int64
	restartLimit int64
	maxLimit     int64

	conflictIdx int // clause that caused the pending conflict
	unsat       bool

	model []bool

	// Shared by the operations that need to put variables (or levels) in a
	// set and empty that set efficiently.
	seenVar   *ResetSet
	seenLevel *ResetSet

	// Temporary slice used in analyze to accumulate literals before these are
	// turned into a learnt clause. Sharing one buffer between all calls
	// avoids having to grow it each time analyze is called.
	tmpLearnt []Literal

	opts Options
	log  *logrus.Logger

	// Stop conditions.
	hasStopCond bool
	startTime   time.Time

	// Search statistics.
	TotalIterations int64
	TotalConflicts  int64
	TotalRestarts   int64
	lbdEMA          ema
}

// NewDefaultSolver returns a solver configured with default options. This is
// equivalent to calling NewSolver with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func NewSolver(opts Options) *Solver {
	if opts.PhasePeriod <= 0 {
		opts.PhasePeriod = DefaultOptions.PhasePeriod
	}
	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	s := &Solver{
		assigns:      []LBool{Unknown},
		phases:       []bool{false},
		levels:       []int{-1},
		varPos:       []int{-1},
		watches:      make([][]int, 2),
		order:        newVarOrder(opts.VariableDecay),
		rng:          rand.New(rand.NewSource(opts.Seed)),
		clauseInc:    1,
		clauseDecay:  opts.ClauseDecay,
		restartLimit: opts.RestartBase,
		maxLimit:     opts.RestartCeiling,
		conflictIdx:  -1,
		seenVar:      &ResetSet{},
		seenLevel:    &ResetSet{},
		opts:         opts,
		log:          log,
		lbdEMA:       newEMA(0.95),
	}
	s.seenVar.Expand() // slot for the reserved variable 0
	s.seenLevel.Expand()

	s.hasStopCond = opts.MaxConflicts >= 0 || opts.Timeout >= 0
	return s
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.opts.MaxConflicts >= 0 && s.opts.MaxConflicts <= s.TotalConflicts {
		return true
	}
	if s.opts.Timeout >= 0 && s.opts.Timeout <= time.Since(s.startTime) {
		return true
	}
	return false
}

// AddVariable declares a new variable and returns its ID. Variable IDs are
// contiguous and start at 1.
func (s *Solver) AddVariable() int {
	v := len(s.assigns)
	s.assigns = append(s.assigns, Unknown)
	s.phases = append(s.phases, false)
	s.levels = append(s.levels, -1)
	s.varPos = append(s.varPos, -1)
	s.watches = append(s.watches, nil, nil)
	s.seenVar.Expand()
	s.seenLevel.Expand()
	s.order.addVar(0)
	return v
}

func (s *Solver) NumVariables() int {
	return len(s.assigns) - 1
}

func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) NumClauses() int {
	return s.form.numBase()
}

func (s *Solver) NumLearnts() int {
	return s.form.numLearnts()
}

// VarValue returns the current value of variable x.
func (s *Solver) VarValue(x int) LBool {
	return s.assigns[x]
}

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	if l.IsPositive() {
		return s.assigns[l.Var()]
	}
	return s.assigns[l.Var()].Opposite()
}

// Model returns the satisfying assignment found by the last successful call
// to Solve, with entry i holding the value of variable i+1.
func (s *Solver) Model() []bool {
	return s.model
}

// AddClause adds a base clause to the formula. Empty clauses and unit clauses
// falsified at the root make the formula unsatisfiable. Clauses can only be
// added before Solve is called.
func (s *Solver) AddClause(lits []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("can only add clauses at the root level")
	}
	c := newClause(append([]Literal(nil), lits...), false)
	ci := s.form.addBase(c)
	s.attachBase(ci, c)
	return nil
}

// attachBase registers a base clause: empty clauses make the formula unsat,
// unit clauses are enqueued as root implications, and the remaining clauses
// get their two initial watches.
func (s *Solver) attachBase(ci int, c *clause) {
	switch c.status {
	case statusConflict:
		s.unsat = true
	case statusUnit:
		l := c.lits[0]
		switch s.LitValue(l) {
		case False:
			s.unsat = true
		case True:
			// Already implied by an earlier unit.
		default:
			s.assign(l, ci)
		}
	default:
		s.watch(ci, c.lits[0])
		s.watch(ci, c.lits[1])
	}
}

func (s *Solver) watch(ci int, l Literal) {
	wi := watchIndex(l)
	s.watches[wi] = append(s.watches[wi], ci)
}

// unwatch removes clause ci from the watch list of literal l.
func (s *Solver) unwatch(ci int, l Literal) {
	ws := s.watches[watchIndex(l)]
	j := 0
	for i := 0; i < len(ws); i++ {
		if ws[i] != ci {
			ws[j] = ws[i]
			j++
		}
	}
	s.watches[watchIndex(l)] = ws[:j]
}

func (s *Solver) decisionLevel() int {
	return len(s.decisions)
}

// assign gives literal l the value true and appends it to the trail. reason
// is the index of the implying clause, or reasonDecision.
func (s *Solver) assign(l Literal, reason int) {
	v := l.Var()
	s.assigns[v] = Lift(l.IsPositive())
	s.phases[v] = l.IsPositive()
	s.levels[v] = s.decisionLevel()
	s.varPos[v] = len(s.trail)
	s.trail = append(s.trail, l)
	s.reasons = append(s.reasons, reason)
	if reason != reasonDecision {
		s.form.clause(reason).isReason = true
	}
}

// propagate processes the trail from the propagation head, restoring the
// watched-literal invariant of every clause watching a freshly falsified
// literal. It returns false when a conflict is found, in which case the
// conflicting clause index is kept for analysis and the unvisited tail of
// the watch list is preserved.
func (s *Solver) propagate() bool {
	for s.head < len(s.trail) {
		lit := s.trail[s.head]
		s.head++

		falsified := lit.Flip()
		wi := watchIndex(falsified)
		ws := s.watches[wi]
		j := 0

		for i := 0; i < len(ws); i++ {
			ci := ws[i]
			c := s.form.clause(ci)

			// Watches live at positions 0 and 1. Move the falsified watch to
			// position 0 so the rest of the pass only deals with one shape.
			if c.lits[0] != falsified {
				c.lits[0], c.lits[1] = c.lits[1], c.lits[0]
			}

			// The clause is satisfied through its other watch.
			if s.LitValue(c.lits[1]) == True {
				c.status = statusSatisfied
				ws[j] = ci
				j++
				continue
			}

			// Look for a non-false literal to take over the watch.
			moved := false
			for k := 2; k < len(c.lits); k++ {
				if s.LitValue(c.lits[k]) != False {
					c.lits[0], c.lits[k] = c.lits[k], c.lits[0]
					c.status = statusUndetermined
					s.watch(ci, c.lits[0])
					moved = true
					break
				}
			}
			if moved {
				continue // dropped from this watch list
			}

			// No replacement found: the clause stays here and is either unit
			// or conflicting depending on its other watch.
			ws[j] = ci
			j++

			if s.LitValue(c.lits[1]) == Unknown {
				c.status = statusUnit
				s.assign(c.lits[1], ci)
				continue
			}

			c.status = statusConflict
			s.conflictIdx = ci
			j += copy(ws[j:], ws[i+1:])
			s.watches[wi] = ws[:j]
			return false
		}
		s.watches[wi] = ws[:j]
	}
	return true
}

// pickPhase selects the polarity of the next decision by rotating over the
// saved phase, its inversion, the default polarity, and a random one.
func (s *Solver) pickPhase(v int) bool {
	c := s.decisionCount % s.opts.PhasePeriod
	s.decisionCount++
	switch c {
	case 0:
		return s.phases[v]
	case 1:
		return !s.phases[v]
	case 3:
		return s.rng.Intn(2) == 1
	default:
		return false
	}
}

// decide opens a new decision level and assigns variable v to pol.
func (s *Solver) decide(v int, pol bool) {
	s.decisions = append(s.decisions, len(s.trail))
	if pol {
		s.assign(PositiveLiteral(v), reasonDecision)
	} else {
		s.assign(NegativeLiteral(v), reasonDecision)
	}
}

// shrinkTrail unassigns every trail entry at position cut and beyond. Saved
// phases are retained and unassigned variables go back in the ordering heap.
func (s *Solver) shrinkTrail(cut int) {
	for i := len(s.trail) - 1; i >= cut; i-- {
		l := s.trail[i]
		v := l.Var()
		s.assigns[v] = Unknown
		s.levels[v] = -1
		s.varPos[v] = -1
		if r := s.reasons[i]; r != reasonDecision {
			s.form.clause(r).isReason = false
		}
		s.order.reinsert(v)
	}
	s.trail = s.trail[:cut]
	s.reasons = s.reasons[:cut]
	s.head = cut
}

// cancelUntil undoes every assignment above the given decision level.
func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	cut := s.decisions[level]
	s.shrinkTrail(cut)
	s.decisions = s.decisions[:level]
}

// backjump returns to the given level, registers the learnt clause, and
// asserts its first literal with the clause as reason. The propagation head
// is left on the asserted literal.
func (s *Solver) backjump(level int, lits []Literal, lbd int) {
	if level >= s.decisionLevel() {
		panic(fmt.Sprintf("sat: backjump target %d not below current level %d", level, s.decisionLevel()))
	}
	s.cancelUntil(level)

	c := newClause(append([]Literal(nil), lits...), true)
	c.lbd = lbd
	c.tier = tierForLBD(lbd)
	c.lastConflict = s.TotalConflicts

	ci := s.form.addLearnt(c)
	s.bumpClauseActivity(c)
	if len(c.lits) >= 2 {
		s.watch(ci, c.lits[0])
		s.watch(ci, c.lits[1])
	}
	s.assign(c.lits[0], ci)
}

// restart abandons the current decision stack while keeping the root-level
// assignments, then advances the reluctant-doubling schedule: the conflict
// budget doubles until it exceeds the current ceiling, at which point the
// ceiling doubles and the budget resets.
func (s *Solver) restart() {
	s.TotalRestarts++
	s.cancelUntil(0)
	s.conflicts = 0
	s.restartLimit *= 2
	if s.restartLimit > s.maxLimit {
		s.maxLimit *= 2
		s.restartLimit = s.opts.RestartBase
	}

	if s.log.IsLevelEnabled(logrus.DebugLevel) {
		s.log.WithFields(logrus.Fields{
			"restarts": s.TotalRestarts,
			"budget":   s.restartLimit,
			"ceiling":  s.maxLimit,
		}).Debug("restart")
	}
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.assigns[i+1]
		if lb == Unknown {
			panic("sat: not a model")
		}
		model[i] = lb == True
	}
	s.model = model
}

// Solve runs the CDCL search and reports whether the formula is satisfiable.
// Unknown is returned only when a stop condition fired before the search
// finished. After a True result, Model holds a satisfying assignment.
func (s *Solver) Solve() LBool {
	s.startTime = time.Now()

	if s.unsat {
		return False
	}
	if !s.propagate() {
		s.unsat = true
		return False
	}

	for {
		if s.shouldStop() {
			s.cancelUntil(0)
			return Unknown
		}
		s.TotalIterations++

		v := s.order.nextVar(s.assigns)
		if v == 0 { // every variable is assigned
			s.saveModel()
			s.cancelUntil(0)
			return True
		}
		s.decide(v, s.pickPhase(v))

		for !s.propagate() {
			s.TotalConflicts++
			s.conflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				return False
			}
			if s.conflicts >= s.restartLimit {
				s.restart()
				s.maybeReduceDB()
				break
			}

			learnt, level, lbd := s.analyze(s.conflictIdx)
			s.order.decayScores()
			s.decayClauseActivity()

			if level == 0 && len(learnt) == 0 {
				s.unsat = true
				return False
			}
			s.backjump(level, learnt, lbd)
			s.maybeReduceDB()
		}
	}
}

// Stats is a snapshot of the search counters.
type Stats struct {
	Iterations int64
	Conflicts  int64
	Restarts   int64
	Learnts    int
	AvgLBD     float64
}

func (s *Solver) Stats() Stats {
	return Stats{
		Iterations: s.TotalIterations,
		Conflicts:  s.TotalConflicts,
		Restarts:   s.TotalRestarts,
		Learnts:    s.NumLearnts(),
		AvgLBD:     s.lbdEMA.val(),
	}
}
