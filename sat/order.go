package sat

import (
	"github.com/rhartert/yagh"
)

// VarOrder maintains the order in which unassigned variables are selected as
// decisions, following their activity scores.
type VarOrder struct {
	// Binary heap to access the next variable with the highest score. The
	// heap is a min-heap over negated scores and breaks ties using variable
	// IDs, which corresponds to the order in which variables are declared.
	order *yagh.IntMap[float64]

	scores     []float64 // in [0, 1e100)
	scoreInc   float64   // in (0, 1e100)
	scoreDecay float64   // in (0, 1]
}

// newVarOrder returns a new initialized VarOrder. The slot of the reserved
// variable 0 is never inserted in the heap.
func newVarOrder(decay float64) *VarOrder {
	return &VarOrder{
		order:      yagh.New[float64](1),
		scores:     make([]float64, 1),
		scoreInc:   1,
		scoreDecay: decay,
	}
}

// addVar adds a new variable with the given initial score.
func (vo *VarOrder) addVar(initScore float64) {
	v := len(vo.scores)
	vo.scores = append(vo.scores, initScore)
	vo.order.GrowBy(1)
	vo.order.Put(v, -initScore)
}

// reinsert adds variable v back to the set of decision candidates. This must
// be called by the solver whenever v is being unassigned.
func (vo *VarOrder) reinsert(v int) {
	vo.order.Put(v, -vo.scores[v])
}

// decayScores slightly decreases the weight of all past bumps by growing the
// increment applied to future ones.
func (vo *VarOrder) decayScores() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescale()
	}
}

// bumpScore increases the score of the given variable. Bumping might trigger
// a rescale of all scores if the score of v exceeds a given threshold. The
// rescale conserves the relative importance of the variables.
func (vo *VarOrder) bumpScore(v int) {
	vo.scores[v] += vo.scoreInc
	if vo.order.Contains(v) {
		vo.order.Put(v, -vo.scores[v])
	}
	if vo.scores[v] > 1e100 {
		vo.rescale()
	}
}

// nextVar returns the unassigned variable with the highest score, discarding
// stale heap entries along the way. It returns 0 when no unassigned variable
// is left.
func (vo *VarOrder) nextVar(assigns []LBool) int {
	for {
		next, ok := vo.order.Pop()
		if !ok {
			return 0
		}
		if assigns[next.Elem] == Unknown {
			return next.Elem
		}
	}
}

func (vo *VarOrder) rescale() {
	vo.scoreInc *= 1e-100 // important to keep proportions
	for v := 1; v < len(vo.scores); v++ {
		newScore := vo.scores[v] * 1e-100
		vo.scores[v] = newScore
		if vo.order.Contains(v) {
			vo.order.Put(v, -newScore)
		}
	}
}
