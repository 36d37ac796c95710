package verdict

import (
	"go-id-inspector/pkg/models"
)

// Reasons appended when a rule fires
const (
	ReasonELA      = "High ELA difference indicates possible tampering"
	ReasonCopyMove = "Potential copy-move forgery (many keypoints matched)"
	ReasonText     = "Text inconsistencies detected"
	ReasonNoise    = "Unusual noise pattern"
	ReasonEdge     = "Irregular edge patterns detected"
)

// Rule is one step of the penalty fold
type Rule struct {
	Check   string
	Penalty float64
	Reason  string
	Applies func(record models.CheckRecord) bool
}

// Rules returns the penalty rules in evaluation order
func (p Policy) Rules() []Rule {
	return []Rule{
		{
			Check:  models.CheckExifMetadata,
			Reason: models.MissingMetadataReason,
			Applies: func(r models.CheckRecord) bool {
				meta, ok := r.(models.ExifMetadata)
				return ok && !meta.Exists
			},
		},
		{
			Check:   models.CheckErrorLevel,
			Penalty: p.ELAPenalty,
			Reason:  ReasonELA,
			Applies: func(r models.CheckRecord) bool {
				ela, ok := r.(models.ErrorLevelAnalysis)
				return ok && ela.TamperIndication && ela.DifferenceMean > p.ELAPenaltyBound
			},
		},
		{
			Check:   models.CheckCopyMove,
			Penalty: p.CopyMovePenalty,
			Reason:  ReasonCopyMove,
			Applies: func(r models.CheckRecord) bool {
				cm, ok := r.(models.CopyMoveDetection)
				return ok && cm.HasCopyMove && cm.Keypoints > p.CopyMovePenaltyBound
			},
		},
		{
			Check:   models.CheckTextAnalysis,
			Penalty: p.TextPenalty,
			Reason:  ReasonText,
			Applies: func(r models.CheckRecord) bool {
				text, ok := r.(models.TextAnalysis)
				return ok && text.Inconsistencies
			},
		},
		{
			// The analyzer's own inconsistent_noise flag is ignored here
			Check:   models.CheckNoiseAnalysis,
			Penalty: p.NoisePenalty,
			Reason:  ReasonNoise,
			Applies: func(r models.CheckRecord) bool {
				noise, ok := r.(models.NoiseAnalysis)
				return ok && noise.StdDev > p.NoisePenaltyBound
			},
		},
		{
			Check:   models.CheckEdgeAnalysis,
			Penalty: p.EdgePenalty,
			Reason:  ReasonEdge,
			Applies: func(r models.CheckRecord) bool {
				edge, ok := r.(models.EdgeAnalysis)
				return ok && edge.InconsistentEdges
			},
		},
	}
}
