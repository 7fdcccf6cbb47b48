package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ClassModel holds the sparse weights of a single label.
type ClassModel struct {
	Label   string
	Weights Weights
}

func NewClassModel(label string) *ClassModel {
	return &ClassModel{Label: label, Weights: NewWeights()}
}

// UpdateSparse adds amount to the weight of each of the given features.
func (c *ClassModel) UpdateSparse(features []string, amount float64) {
	c.Weights.AddScaled(features, amount)
}

func (c *ClassModel) Copy() *ClassModel {
	return &ClassModel{Label: c.Label, Weights: c.Weights.Copy()}
}

// Model is a set of class models keyed by label. The label set is fixed at
// construction time.
type Model struct {
	Labels  LabelMap
	Classes map[string]*ClassModel
}

func NewModel(labels ...string) *Model {
	m := &Model{
		Labels:  NewLabelMap(labels...),
		Classes: make(map[string]*ClassModel, len(labels)),
	}
	for _, label := range m.Labels.IndexToLabel {
		m.Classes[label] = NewClassModel(label)
	}
	return m
}

// Class returns the class model of label or nil when the label is unknown.
func (m *Model) Class(label string) *ClassModel {
	return m.Classes[label]
}

// Copy returns a deep copy of the model.
func (m *Model) Copy() *Model {
	copied := &Model{
		Labels:  NewLabelMap(m.Labels.IndexToLabel...),
		Classes: make(map[string]*ClassModel, len(m.Classes)),
	}
	for label, class := range m.Classes {
		copied.Classes[label] = class.Copy()
	}
	return copied
}

// Validate checks that every label of the map has a class model.
func (m *Model) Validate() error {
	if m.Labels.Size() == 0 {
		return fmt.Errorf("model has no labels")
	}
	for _, label := range m.Labels.IndexToLabel {
		if m.Classes[label] == nil {
			return fmt.Errorf("model has no weights for label %s", label)
		}
	}
	return nil
}

// ScoredLabel is a label with its model score.
type ScoredLabel struct {
	Label string
	Score float64
}

// Scores returns the score of every label for the active features, indexed
// like m.Labels.
func (m *Model) Scores(features []string) []float64 {
	scores := make([]float64, m.Labels.Size())
	for i, label := range m.Labels.IndexToLabel {
		scores[i] = m.Classes[label].Weights.Score(features)
	}
	return scores
}

// Predict returns the best scoring label for the active features. Labels are
// scored in lexical order and the first maximum wins ties.
func (m *Model) Predict(features []string) ScoredLabel {
	scores := m.Scores(features)
	if len(scores) == 0 {
		return ScoredLabel{}
	}
	best := floats.MaxIdx(scores)
	return ScoredLabel{Label: m.Labels.Label(best), Score: scores[best]}
}
