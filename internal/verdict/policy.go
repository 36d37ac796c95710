package verdict

// Policy holds the penalty schedule and decision bounds of the aggregator.
// The penalty bounds are deliberately stricter than the analyzers' own
// flag thresholds.
type Policy struct {
	StartConfidence float64

	ELAPenaltyBound float64
	ELAPenalty      float64

	CopyMovePenaltyBound int
	CopyMovePenalty      float64

	TextPenalty float64

	NoisePenaltyBound float64
	NoisePenalty      float64

	EdgePenalty float64

	OverrideProbability float64
	AuthenticThreshold  float64
}

// DefaultPolicy returns the production penalty schedule
func DefaultPolicy() Policy {
	return Policy{
		StartConfidence:      100,
		ELAPenaltyBound:      20,
		ELAPenalty:           10,
		CopyMovePenaltyBound: 1200,
		CopyMovePenalty:      15,
		TextPenalty:          10,
		NoisePenaltyBound:    25,
		NoisePenalty:         5,
		EdgePenalty:          5,
		OverrideProbability:  0.8,
		AuthenticThreshold:   60,
	}
}
