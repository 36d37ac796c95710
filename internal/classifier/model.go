package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ArtifactFormat identifies the on-disk classifier layout
const ArtifactFormat = "softmax-linear/v1"

// ErrInvalidArtifact is wrapped by every artifact validation failure
var ErrInvalidArtifact = errors.New("invalid classifier artifact")

// Model is a fitted 3-class classifier over FeatureVector
type Model interface {
	Predict(v FeatureVector) (Label, error)
	PredictProba(v FeatureVector) ([]float64, error)
}

// Artifact is the serialized form of a standardized softmax-linear model:
// z = coef · ((x - mean) / scale) + intercept, proba = softmax(z)
type Artifact struct {
	Format       string      `json:"format"`
	Classes      []string    `json:"classes"`
	FeatureNames []string    `json:"feature_names"`
	Mean         []float64   `json:"mean"`
	Scale        []float64   `json:"scale"`
	Coef         [][]float64 `json:"coef"`
	Intercept    []float64   `json:"intercept"`
}

// softmaxModel is read-only after construction and safe for concurrent use
type softmaxModel struct {
	mean      []float64
	scale     []float64
	weights   *mat.Dense
	intercept *mat.VecDense
}

// LoadModel reads and validates a classifier artifact from disk
func LoadModel(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier artifact: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes and validates a classifier artifact
func ParseModel(data []byte) (Model, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return NewModel(a)
}

// NewModel builds a model from an in-memory artifact
func NewModel(a Artifact) (Model, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	weights := mat.NewDense(NumClasses, FeatureSize, nil)
	for i, row := range a.Coef {
		weights.SetRow(i, row)
	}

	return &softmaxModel{
		mean:      append([]float64(nil), a.Mean...),
		scale:     append([]float64(nil), a.Scale...),
		weights:   weights,
		intercept: mat.NewVecDense(NumClasses, append([]float64(nil), a.Intercept...)),
	}, nil
}

func (a Artifact) validate() error {
	if a.Format != ArtifactFormat {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidArtifact, a.Format)
	}
	if len(a.Classes) != NumClasses {
		return fmt.Errorf("%w: expected %d classes, got %d", ErrInvalidArtifact, NumClasses, len(a.Classes))
	}
	for i, name := range a.Classes {
		if name != Label(i).String() {
			return fmt.Errorf("%w: class %d is %q, expected %q", ErrInvalidArtifact, i, name, Label(i))
		}
	}
	if len(a.FeatureNames) != FeatureSize {
		return fmt.Errorf("%w: expected %d features, got %d", ErrInvalidArtifact, FeatureSize, len(a.FeatureNames))
	}
	for i, name := range a.FeatureNames {
		if name != FeatureNames[i] {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrInvalidArtifact, i, name, FeatureNames[i])
		}
	}
	if len(a.Mean) != FeatureSize || len(a.Scale) != FeatureSize {
		return fmt.Errorf("%w: mean and scale must have %d entries", ErrInvalidArtifact, FeatureSize)
	}
	for i, s := range a.Scale {
		if s == 0 || !finite(s) {
			return fmt.Errorf("%w: scale[%d] must be finite and non-zero", ErrInvalidArtifact, i)
		}
	}
	if len(a.Coef) != NumClasses || len(a.Intercept) != NumClasses {
		return fmt.Errorf("%w: coef and intercept must have %d rows", ErrInvalidArtifact, NumClasses)
	}
	for i, row := range a.Coef {
		if len(row) != FeatureSize {
			return fmt.Errorf("%w: coef row %d has %d entries", ErrInvalidArtifact, i, len(row))
		}
		if !allFinite(row) {
			return fmt.Errorf("%w: coef row %d is not finite", ErrInvalidArtifact, i)
		}
	}
	if !allFinite(a.Mean) || !allFinite(a.Intercept) {
		return fmt.Errorf("%w: mean and intercept must be finite", ErrInvalidArtifact)
	}
	return nil
}

// PredictProba returns one probability per class, summing to 1
func (m *softmaxModel) PredictProba(v FeatureVector) ([]float64, error) {
	x := v.Slice()
	if !allFinite(x) {
		return nil, fmt.Errorf("feature vector is not finite: %v", x)
	}
	floats.Sub(x, m.mean)
	floats.Div(x, m.scale)

	var z mat.VecDense
	z.MulVec(m.weights, mat.NewVecDense(FeatureSize, x))
	z.AddVec(&z, m.intercept)

	logits := make([]float64, NumClasses)
	for i := range logits {
		logits[i] = z.AtVec(i)
	}
	return softmax(logits), nil
}

// Predict returns the most probable class
func (m *softmaxModel) Predict(v FeatureVector) (Label, error) {
	proba, err := m.PredictProba(v)
	if err != nil {
		return 0, err
	}
	return Label(floats.MaxIdx(proba)), nil
}

func softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	copy(out, logits)
	floats.AddConst(-floats.Max(out), out)
	for i := range out {
		out[i] = math.Exp(out[i])
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if !finite(x) {
			return false
		}
	}
	return true
}
