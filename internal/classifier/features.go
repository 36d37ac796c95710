package classifier

import (
	"go-id-inspector/pkg/models"
)

// FeatureSize is the length of the classifier input
const FeatureSize = 5

// FeatureNames lists the vector slots in order. The order is a contract
// with the trained artifact.
var FeatureNames = [FeatureSize]string{
	"has_exif",
	"ela_difference_mean",
	"copy_move_keypoint_count",
	"noise_std_dev",
	"edge_inconsistent",
}

// FeatureVector is the fixed-order numeric summary fed to the classifier
type FeatureVector [FeatureSize]float64

// NewFeatureVector packs analyzer evidence into classifier order
func NewFeatureVector(hasExif bool, elaMean float64, keypoints int, noiseStdDev float64, edgeInconsistent bool) FeatureVector {
	return FeatureVector{
		boolFeature(hasExif),
		elaMean,
		float64(keypoints),
		noiseStdDev,
		boolFeature(edgeInconsistent),
	}
}

// FromChecks builds the vector from a report's check records. Missing or
// degraded checks contribute their conservative zero values.
func FromChecks(checks map[string]models.CheckRecord) FeatureVector {
	var (
		hasExif          bool
		elaMean          float64
		keypoints        int
		noiseStdDev      float64
		edgeInconsistent bool
	)
	if r, ok := checks[models.CheckExifMetadata].(models.ExifMetadata); ok {
		hasExif = r.Exists
	}
	if r, ok := checks[models.CheckErrorLevel].(models.ErrorLevelAnalysis); ok {
		elaMean = r.DifferenceMean
	}
	if r, ok := checks[models.CheckCopyMove].(models.CopyMoveDetection); ok {
		keypoints = r.Keypoints
	}
	if r, ok := checks[models.CheckNoiseAnalysis].(models.NoiseAnalysis); ok {
		noiseStdDev = r.StdDev
	}
	if r, ok := checks[models.CheckEdgeAnalysis].(models.EdgeAnalysis); ok {
		edgeInconsistent = r.InconsistentEdges
	}
	return NewFeatureVector(hasExif, elaMean, keypoints, noiseStdDev, edgeInconsistent)
}

// Slice returns a copy of the vector as a slice
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureSize)
	copy(out, v[:])
	return out
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
