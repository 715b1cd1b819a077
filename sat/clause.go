package sat

import "strings"

// clauseStatus is the signal reported by the watched-literal machinery the
// last time a clause was visited. It is refreshed during propagation and is
// not kept up to date in between visits.
type clauseStatus uint8

const (
	statusUndetermined clauseStatus = iota
	statusSatisfied
	statusConflict
	statusUnit
)

// tier classifies learnt clauses by their literal block distance. CORE
// clauses are kept forever, MID clauses are demoted to LOCAL when they stop
// participating in conflicts, and LOCAL clauses are candidates for removal.
type tier uint8

const (
	tierCore tier = iota
	tierMid
	tierLocal
)

const (
	coreLBD = 3
	midLBD  = 6
)

func tierForLBD(lbd int) tier {
	switch {
	case lbd <= coreLBD:
		return tierCore
	case lbd <= midLBD:
		return tierMid
	default:
		return tierLocal
	}
}

type clause struct {
	// Whether the clause was learnt or not.
	learnt bool

	status clauseStatus

	// The clause's literals. Positions 0 and 1 hold the two watched literals
	// whenever the clause has two or more of them.
	lits []Literal

	// Learnt clause bookkeeping.
	lbd          int
	tier         tier
	lastConflict int64
	activity     float64

	// Whether the clause is currently the reason of a trail literal. Clauses
	// acting as a reason must not be removed from the database.
	isReason bool
}

// newClause returns a clause over the given literals. The slice is owned by
// the clause afterwards. Base clauses whose literals are all identical are
// degenerate units.
func newClause(lits []Literal, learnt bool) *clause {
	c := &clause{learnt: learnt, lits: lits}
	switch {
	case len(lits) == 0:
		c.status = statusConflict
	case len(lits) == 1:
		c.status = statusUnit
	default:
		c.status = statusUndetermined
		if !learnt && allEqual(lits) {
			c.status = statusUnit
		}
	}
	return c
}

func allEqual(lits []Literal) bool {
	for _, l := range lits[1:] {
		if l != lits[0] {
			return false
		}
	}
	return true
}

func (c *clause) String() string {
	if len(c.lits) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.lits[0].String())
	for _, l := range c.lits[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
