package io

import (
	"strings"

	"github.com/pkg/errors"
)

// NamedEntity is a span of tokens [Start, End) sharing an entity type.
type NamedEntity struct {
	Type  string
	Start int
	End   int
}

type Sentence struct {
	Content string
	Tokens  []*Token
}

func NewSentence(tokens []*Token) *Sentence {
	words := make([]string, len(tokens))
	for i, token := range tokens {
		words[i] = token.Word
	}
	return &Sentence{Content: strings.Join(words, " "), Tokens: tokens}
}

// Labels returns the token labels in order.
func (s *Sentence) Labels() []string {
	labels := make([]string, len(s.Tokens))
	for i, token := range s.Tokens {
		labels[i] = token.Label
	}
	return labels
}

// NamedEntities derives the entity spans from the token positions. BEGIN and
// UNIT always open a new span; INSIDE and LAST extend an open span of the
// same type and open one otherwise. UNIT and LAST close the span.
func (s *Sentence) NamedEntities() []NamedEntity {
	var entities []NamedEntity
	open := false
	var current NamedEntity

	closeCurrent := func() {
		if open {
			entities = append(entities, current)
			open = false
		}
	}

	for i, token := range s.Tokens {
		switch token.Position {
		case Outside:
			closeCurrent()
			continue
		case Begin, Unit:
			closeCurrent()
		case Inside, Last:
			if open && current.Type != token.Type {
				closeCurrent()
			}
		}
		if !open {
			current = NamedEntity{Type: token.Type, Start: i}
			open = true
		}
		current.End = i + 1
		if token.Position == Unit || token.Position == Last {
			closeCurrent()
		}
	}
	closeCurrent()
	return entities
}

// MatchingEntities returns the entities of reference that also appear in this
// sentence with the same type and boundaries.
func (s *Sentence) MatchingEntities(reference []NamedEntity) []NamedEntity {
	own := map[NamedEntity]struct{}{}
	for _, entity := range s.NamedEntities() {
		own[entity] = struct{}{}
	}
	var result []NamedEntity
	for _, entity := range reference {
		if _, ok := own[entity]; ok {
			result = append(result, entity)
		}
	}
	return result
}

// Relabel returns a copy of the sentence with the given labels.
func (s *Sentence) Relabel(labels []string) (*Sentence, error) {
	if len(labels) != len(s.Tokens) {
		return nil, errors.Wrapf(ErrStructureMismatch, "%d labels for %d tokens", len(labels), len(s.Tokens))
	}
	tokens := make([]*Token, len(s.Tokens))
	for i, token := range s.Tokens {
		relabeled, err := token.WithLabel(labels[i])
		if err != nil {
			return nil, err
		}
		tokens[i] = relabeled
	}
	return &Sentence{Content: s.Content, Tokens: tokens}, nil
}
