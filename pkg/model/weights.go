package model

import "sort"

// Weights is a sparse feature weight vector. Features that were never written
// weigh zero. Entries are never removed, even when their weight returns to zero.
type Weights map[string]float64

func NewWeights() Weights {
	return Weights{}
}

func (w Weights) Get(feature string) float64 {
	return w[feature]
}

func (w Weights) Put(feature string, value float64) {
	w[feature] = value
}

// AddScaled adds delta to the weight of every feature in features.
func (w Weights) AddScaled(features []string, delta float64) {
	for _, feature := range features {
		w[feature] += delta
	}
}

// Score returns the sum of the weights of the given features.
func (w Weights) Score(features []string) float64 {
	score := 0.0
	for _, feature := range features {
		score += w[feature]
	}
	return score
}

func (w Weights) Copy() Weights {
	copied := make(Weights, len(w))
	for feature, value := range w {
		copied[feature] = value
	}
	return copied
}

// Features returns the materialized feature keys in lexical order.
func (w Weights) Features() []string {
	result := make([]string, 0, len(w))
	for feature := range w {
		result = append(result, feature)
	}
	sort.Strings(result)
	return result
}

func (w Weights) Size() int {
	return len(w)
}
