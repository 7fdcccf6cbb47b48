package io

import (
	"sort"

	"github.com/nlpodyssey/spago/pkg/mat/rand"
)

// DataSet is an ordered list of sentences that can be iterated in its
// original order or in a random permutation.
type DataSet struct {
	Sentences    []*Sentence
	Rand         *rand.LockedRand
	currentOrder []int
	currentIndex int
}

type DatasetOrder int

const (
	OriginalOrder DatasetOrder = iota
	RandomOrder
)

func NewDataSet(sentences []*Sentence) *DataSet {
	ds := &DataSet{Sentences: sentences}
	ds.ResetOrder(OriginalOrder)
	return ds
}

// ResetOrder restarts the iteration. RandomOrder draws a new permutation from
// d.Rand on every call.
func (d *DataSet) ResetOrder(order DatasetOrder) {
	if len(d.currentOrder) != len(d.Sentences) {
		d.currentOrder = make([]int, len(d.Sentences))
	}
	switch order {
	case OriginalOrder:
		for i := range d.currentOrder {
			d.currentOrder[i] = i
		}
	case RandomOrder:
		if d.Rand == nil {
			d.Rand = rand.NewLockedRand(42)
		}
		copy(d.currentOrder, d.Rand.Perm(len(d.currentOrder)))
	}
	d.currentIndex = 0
}

// Next returns the next sentence in the current order, or nil at the end.
func (d *DataSet) Next() *Sentence {
	if d.currentIndex >= len(d.currentOrder) {
		return nil
	}
	s := d.Sentences[d.currentOrder[d.currentIndex]]
	d.currentIndex++
	return s
}

func (d *DataSet) Size() int {
	return len(d.Sentences)
}

func (d *DataSet) TokenCount() int {
	count := 0
	for _, s := range d.Sentences {
		count += len(s.Tokens)
	}
	return count
}

// Labels returns every label observed in the data set, in lexical order.
func (d *DataSet) Labels() []string {
	seen := map[string]struct{}{}
	for _, s := range d.Sentences {
		for _, token := range s.Tokens {
			seen[token.Label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// EntityCount returns the number of named entities in the data set.
func (d *DataSet) EntityCount() int {
	count := 0
	for _, s := range d.Sentences {
		count += len(s.NamedEntities())
	}
	return count
}
