package sat

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// bumpClauseActivity increases the activity of a learnt clause, rescaling
// the whole database when an activity overflows.
func (s *Solver) bumpClauseActivity(c *clause) {
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100 // important to keep proportions
		for _, lc := range s.form.learnt {
			if lc != nil {
				lc.activity *= 1e-100
			}
		}
	}
}

// decayClauseActivity grows the increment applied to future bumps, which
// decays the relative weight of all past ones.
func (s *Solver) decayClauseActivity() {
	s.clauseInc /= s.clauseDecay
	if s.clauseInc > 1e100 {
		s.clauseInc *= 1e-100 // important to keep proportions
		for _, lc := range s.form.learnt {
			if lc != nil {
				lc.activity *= 1e-100
			}
		}
	}
}

// maybeReduceDB runs the periodic learnt database maintenance. It is called
// once per conflict, after the learnt clause has been recorded or the restart
// triggered by the conflict has been performed.
func (s *Solver) maybeReduceDB() {
	if s.opts.DemotePeriod > 0 && s.TotalConflicts%s.opts.DemotePeriod == 0 {
		s.demote()
	}
	if s.opts.ForgetPeriod > 0 && s.TotalConflicts%s.opts.ForgetPeriod == 0 {
		s.forget()
	}
}

// demote moves MID clauses that have not participated in a conflict within
// the demotion window down to the LOCAL tier.
func (s *Solver) demote() {
	demoted := 0
	for _, c := range s.form.learnt {
		if c == nil || c.tier != tierMid {
			continue
		}
		if s.TotalConflicts-c.lastConflict > s.opts.DemoteWindow {
			c.tier = tierLocal
			demoted++
		}
	}

	if demoted > 0 && s.log.IsLevelEnabled(logrus.DebugLevel) {
		s.log.WithFields(logrus.Fields{
			"conflicts": s.TotalConflicts,
			"demoted":   demoted,
		}).Debug("clause demotion")
	}
}

// forget invalidates the least active half of the LOCAL clauses and recycles
// their slots. Clauses currently acting as a reason on the trail are kept.
func (s *Solver) forget() {
	candidates := make([]int, 0, len(s.form.learnt))
	for slot, c := range s.form.learnt {
		if c == nil || c.tier != tierLocal || c.isReason {
			continue
		}
		candidates = append(candidates, slot)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return s.form.learnt[candidates[i]].activity < s.form.learnt[candidates[j]].activity
	})

	dropped := candidates[:len(candidates)/2]
	for _, slot := range dropped {
		ci := s.form.numBase() + slot
		c := s.form.learnt[slot]
		if len(c.lits) >= 2 {
			s.unwatch(ci, c.lits[0])
			s.unwatch(ci, c.lits[1])
		}
		s.form.invalidate(ci)
	}

	if len(dropped) > 0 && s.log.IsLevelEnabled(logrus.DebugLevel) {
		s.log.WithFields(logrus.Fields{
			"conflicts": s.TotalConflicts,
			"forgotten": len(dropped),
			"learnts":   s.form.numLearnts(),
		}).Debug("clause forgetting")
	}
}
