package rng

import "go.uber.org/zap"

// Roller wraps a Source and logger so every probabilistic roll in the
// simulation leaves an audit trail. A run can be bit-verified against its
// debug log.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil {
		panic("rng.NewRoller: src must not be nil")
	}
	if logger == nil {
		panic("rng.NewRoller: logger must not be nil")
	}
	return &Roller{src: src, logger: logger}
}

// Percent returns a uniform roll in [0, 100) tagged with reason.
//
// Postcondition: result is in [0, 100) and is logged at debug level.
func (r *Roller) Percent(reason string) int {
	v := r.src.Intn(100)
	r.logger.Debug("percent roll",
		zap.String("reason", reason),
		zap.Int("roll", v),
	)
	return v
}

// Chance rolls against a probability p in [0, 1] and reports success.
//
// Postcondition: returns true with probability p; the roll is logged.
func (r *Roller) Chance(reason string, p float64) bool {
	v := r.src.Float64()
	hit := v < p
	r.logger.Debug("chance roll",
		zap.String("reason", reason),
		zap.Float64("p", p),
		zap.Float64("roll", v),
		zap.Bool("hit", hit),
	)
	return hit
}

// Jitter returns a uniform value in [-spread, +spread] tagged with reason.
// Used for spawn position jitter.
func (r *Roller) Jitter(reason string, spread float64) float64 {
	v := (r.src.Float64()*2 - 1) * spread
	r.logger.Debug("jitter roll",
		zap.String("reason", reason),
		zap.Float64("spread", spread),
		zap.Float64("value", v),
	)
	return v
}

// Intn returns a uniform int in [0, n) without a reason tag. Intended for
// internal plumbing where the caller logs context itself.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}
