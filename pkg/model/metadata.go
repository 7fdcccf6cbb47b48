package model

import "sort"

// LabelMap implements a bidirectional mapping between a label and its index.
// Indexes follow the lexical order of the labels, which fixes the scoring order.
type LabelMap struct {
	LabelToIndex map[string]int
	IndexToLabel []string
}

func NewLabelMap(labels ...string) LabelMap {
	unique := map[string]struct{}{}
	for _, label := range labels {
		unique[label] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for label := range unique {
		sorted = append(sorted, label)
	}
	sort.Strings(sorted)

	m := LabelMap{
		LabelToIndex: make(map[string]int, len(sorted)),
		IndexToLabel: sorted,
	}
	for i, label := range sorted {
		m.LabelToIndex[label] = i
	}
	return m
}

func (m LabelMap) Size() int {
	return len(m.IndexToLabel)
}

func (m LabelMap) Index(label string) (int, bool) {
	index, ok := m.LabelToIndex[label]
	return index, ok
}

func (m LabelMap) Contains(label string) bool {
	_, ok := m.LabelToIndex[label]
	return ok
}

func (m LabelMap) Label(index int) string {
	return m.IndexToLabel[index]
}
