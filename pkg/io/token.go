package io

import (
	"strings"

	"github.com/pkg/errors"
)

// Position is the place of a token inside a named entity.
type Position int

const (
	Outside Position = iota
	Begin
	Inside
	Last
	Unit
)

// OutsideLabel is the label of tokens that are not part of a named entity.
const OutsideLabel = "OUTSIDE"

var positionNames = map[Position]string{
	Outside: "OUTSIDE",
	Begin:   "BEGIN",
	Inside:  "INSIDE",
	Last:    "LAST",
	Unit:    "UNIT",
}

var namePositions = map[string]Position{
	"BEGIN":  Begin,
	"INSIDE": Inside,
	"LAST":   Last,
	"UNIT":   Unit,
}

func (p Position) String() string {
	return positionNames[p]
}

// Label builds the label of an entity type at a position.
func Label(entityType string, position Position) string {
	if position == Outside {
		return OutsideLabel
	}
	return entityType + "_" + position.String()
}

// ParseLabel splits a label of the form TYPE_POSITION into its entity type and
// position. OUTSIDE has an empty type.
func ParseLabel(label string) (string, Position, error) {
	if label == OutsideLabel {
		return "", Outside, nil
	}
	sep := strings.LastIndex(label, "_")
	if sep <= 0 || sep == len(label)-1 {
		return "", Outside, errors.Errorf("malformed label %q", label)
	}
	position, ok := namePositions[label[sep+1:]]
	if !ok {
		return "", Outside, errors.Errorf("unknown position %q in label %q", label[sep+1:], label)
	}
	return label[:sep], position, nil
}

// Token is a word with its gold or predicted label.
type Token struct {
	Word       string
	Normalized string
	Label      string
	Type       string
	Position   Position
}

func NewToken(word, normalized, label string) (*Token, error) {
	entityType, position, err := ParseLabel(label)
	if err != nil {
		return nil, err
	}
	if normalized == "" {
		normalized = word
	}
	return &Token{
		Word:       word,
		Normalized: normalized,
		Label:      label,
		Type:       entityType,
		Position:   position,
	}, nil
}

// WithLabel returns a copy of the token carrying a different label.
func (t *Token) WithLabel(label string) (*Token, error) {
	return NewToken(t.Word, t.Normalized, label)
}
