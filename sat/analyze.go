package sat

import (
	"github.com/sirupsen/logrus"
)

// analyze derives a learnt clause from the conflicting clause using first-UIP
// resolution. It returns the learnt literals (asserting literal first, a
// literal of the highest remaining level second), the level to backjump to,
// and the literal block distance of the clause.
//
// The learnt clause contains the negations of the assignments that caused
// the conflict: the first unique implication point of the current level plus
// every contributing literal from lower levels.
func (s *Solver) analyze(conflIdx int) ([]Literal, int, int) {
	d := s.decisionLevel()
	s.seenVar.Clear()

	s.tmpLearnt = s.tmpLearnt[:0]
	s.tmpLearnt = append(s.tmpLearnt, 0) // reserved for the asserting literal

	// Number of marked literals of the current decision level that have not
	// been resolved yet. The resolution reached the first UIP when a single
	// one remains.
	pathCount := 0

	// Cursor over the trail used to pick the next literal to resolve without
	// actually undoing any assignment.
	idx := len(s.trail) - 1

	uip := Literal(0) // previously resolved implication point
	curr := conflIdx

	for {
		c := s.form.clause(curr)
		s.touchClause(c)

		for _, q := range c.lits {
			if q == uip {
				continue
			}
			v := q.Var()
			if s.levels[v] <= 0 || s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.order.bumpScore(v)

			if s.levels[v] < d {
				s.tmpLearnt = append(s.tmpLearnt, q)
			} else {
				pathCount++
			}
		}

		// Select the next literal to resolve.
		for !s.seenVar.Contains(s.trail[idx].Var()) {
			idx--
		}
		uip = s.trail[idx]
		s.seenVar.Remove(uip.Var())
		pathCount--

		if pathCount <= 0 {
			break
		}
		curr = s.reasons[idx]
		if curr == reasonDecision {
			panic("sat: resolving the reason of a decision literal")
		}
		idx--
	}

	s.tmpLearnt[0] = uip.Flip()
	learnt := s.simplifyLearnt(s.tmpLearnt)

	// Put a literal of the highest remaining level at position 1: it is the
	// second watch of the learnt clause and determines the backjump level.
	level := 0
	if len(learnt) > 1 {
		maxI := 1
		for i := 2; i < len(learnt); i++ {
			if s.levels[learnt[i].Var()] > s.levels[learnt[maxI].Var()] {
				maxI = i
			}
		}
		learnt[1], learnt[maxI] = learnt[maxI], learnt[1]
		level = s.levels[learnt[1].Var()]
	}

	lbd := s.computeLBD(learnt)
	s.lbdEMA.add(float64(lbd))
	s.seenVar.Clear()

	if s.log.IsLevelEnabled(logrus.DebugLevel) {
		s.log.WithFields(logrus.Fields{
			"conflicts": s.TotalConflicts,
			"size":      len(learnt),
			"lbd":       lbd,
			"backjump":  level,
		}).Debug("conflict analyzed")
	}

	return learnt, level, lbd
}

// touchClause refreshes the bookkeeping of a clause that participates in a
// resolution: its activity is bumped, its last-conflict counter updated, and
// its LBD lowered if the clause got better since it was learnt.
func (s *Solver) touchClause(c *clause) {
	if !c.learnt {
		return
	}
	s.bumpClauseActivity(c)
	c.lastConflict = s.TotalConflicts
	if lbd := s.computeLBD(c.lits); lbd < c.lbd {
		c.lbd = lbd
		c.tier = tierForLBD(lbd)
	}
}

// simplifyLearnt removes the literals that are implied by the rest of the
// clause: a literal is redundant when every other literal of its reason is a
// root-level assignment or is already part of the clause. The asserting
// literal at position 0 is always kept. Compaction happens in place.
func (s *Solver) simplifyLearnt(learnt []Literal) []Literal {
	j := 1
	for i := 1; i < len(learnt); i++ {
		l := learnt[i]
		r := s.reasons[s.varPos[l.Var()]]
		if r == reasonDecision || !s.redundant(l, r) {
			learnt[j] = l
			j++
		}
	}
	return learnt[:j]
}

func (s *Solver) redundant(l Literal, reason int) bool {
	for _, q := range s.form.clause(reason).lits {
		if q.Var() == l.Var() {
			continue
		}
		if s.levels[q.Var()] > 0 && !s.seenVar.Contains(q.Var()) {
			return false
		}
	}
	return true
}

// computeLBD returns the number of distinct decision levels among the given
// literals.
func (s *Solver) computeLBD(lits []Literal) int {
	s.seenLevel.Clear()
	n := 0
	for _, l := range lits {
		lvl := s.levels[l.Var()]
		if lvl < 0 {
			continue
		}
		if !s.seenLevel.Contains(lvl) {
			s.seenLevel.Add(lvl)
			n++
		}
	}
	return n
}
