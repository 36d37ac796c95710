package verdict

import (
	"math"

	"go-id-inspector/internal/classifier"
	"go-id-inspector/pkg/models"
)

// Aggregator folds per-check evidence and the classifier decision into
// a single report
type Aggregator struct {
	policy Policy
	rules  []Rule
}

// NewAggregator creates an aggregator for the given policy
func NewAggregator(policy Policy) *Aggregator {
	return &Aggregator{
		policy: policy,
		rules:  policy.Rules(),
	}
}

// Aggregate builds the final report. The checks map is copied; the
// classification record is added to the copy.
func (a *Aggregator) Aggregate(checks map[string]models.CheckRecord, outcome classifier.Outcome) *models.DetectionReport {
	report := &models.DetectionReport{
		Checks:  make(map[string]models.CheckRecord, len(checks)+1),
		Reasons: []string{},
	}
	for name, record := range checks {
		report.Checks[name] = record
	}

	confidence := a.policy.StartConfidence
	for _, rule := range a.rules {
		record, ok := checks[rule.Check]
		if !ok || !rule.Applies(record) {
			continue
		}
		confidence -= rule.Penalty
		report.Reasons = append(report.Reasons, rule.Reason)
	}

	report.Checks[models.CheckMLClassification] = models.MLClassification{
		Label:      outcome.Label.String(),
		Confidence: Round2(outcome.Probability * 100),
	}

	overridden := false
	if outcome.Label == classifier.Tampered && outcome.Probability > a.policy.OverrideProbability {
		overridden = true
		confidence = outcome.Probability * 100
		report.Reasons = append(report.Reasons, models.ModelOverrideReason)
	}

	report.Confidence = Round2(clamp(confidence, 0, 100))
	if overridden {
		report.IsAuthentic = false
	} else {
		report.IsAuthentic = report.Confidence >= a.policy.AuthenticThreshold
	}
	return report
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
