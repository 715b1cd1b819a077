package sat

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Options struct {
	// Activity decays applied after every conflict.
	ClauseDecay   float64
	VariableDecay float64

	// PhasePeriod is the length of the decision polarity rotation: saved
	// phase, inverted saved phase, default false, random.
	PhasePeriod int

	// Restart schedule (reluctant doubling). The conflict budget starts at
	// RestartBase and doubles after each restart until it exceeds the current
	// ceiling, at which point the ceiling doubles and the budget resets.
	RestartBase    int64
	RestartCeiling int64

	// Learnt clause database maintenance. Every DemotePeriod conflicts, MID
	// clauses unused for more than DemoteWindow conflicts become LOCAL. Every
	// ForgetPeriod conflicts, the least active half of the LOCAL clauses is
	// dropped.
	DemotePeriod int64
	DemoteWindow int64
	ForgetPeriod int64

	// Seed of the random source used by the polarity rotation. Two solves of
	// the same formula with the same seed behave identically.
	Seed int64

	// Stop conditions. Negative values disable them.
	MaxConflicts int64
	Timeout      time.Duration

	// Logger receives trace diagnostics. A nil logger disables them.
	Logger *logrus.Logger
}

var DefaultOptions = Options{
	ClauseDecay:    0.999,
	VariableDecay:  0.95,
	PhasePeriod:    4,
	RestartBase:    100,
	RestartCeiling: 1000,
	DemotePeriod:   10000,
	DemoteWindow:   30000,
	ForgetPeriod:   15000,
	Seed:           1,
	MaxConflicts:   -1,
	Timeout:        -1,
}
