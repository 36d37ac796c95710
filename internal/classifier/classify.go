package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Outcome is the classifier decision for one document
type Outcome struct {
	Label       Label
	Probability float64
}

// Classify runs the model and pairs its label with the highest class
// probability
func Classify(m Model, v FeatureVector) (Outcome, error) {
	label, err := m.Predict(v)
	if err != nil {
		return Outcome{}, fmt.Errorf("classifier predict failed: %w", err)
	}
	if !label.Valid() {
		return Outcome{}, fmt.Errorf("classifier returned unknown label %d", int(label))
	}

	proba, err := m.PredictProba(v)
	if err != nil {
		return Outcome{}, fmt.Errorf("classifier predict_proba failed: %w", err)
	}
	if len(proba) != NumClasses {
		return Outcome{}, fmt.Errorf("classifier returned %d probabilities, expected %d", len(proba), NumClasses)
	}

	return Outcome{Label: label, Probability: floats.Max(proba)}, nil
}
