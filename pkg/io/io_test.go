package io

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pner/pkg/model"
)

const testData = `# two sentences
Ali PERSON_BEGIN
Veli PERSON_INSIDE
geldi OUTSIDE

Ankara'ya ankara'ya LOCATION_UNIT
gitti OUTSIDE
`

func TestReadData(t *testing.T) {
	data, dataErrors, err := ReadData(strings.NewReader(testData))
	require.NoError(t, err)
	require.Empty(t, dataErrors)
	require.Equal(t, 2, data.Size())
	require.Equal(t, 5, data.TokenCount())
	require.Equal(t, "Ali Veli geldi", data.Sentences[0].Content)
	require.Equal(t, []string{"LOCATION_UNIT", "OUTSIDE", "PERSON_BEGIN", "PERSON_INSIDE"}, data.Labels())

	token := data.Sentences[1].Tokens[0]
	require.Equal(t, "Ankara'ya", token.Word)
	require.Equal(t, "ankara'ya", token.Normalized)
	require.Equal(t, "LOCATION", token.Type)
	require.Equal(t, Unit, token.Position)
	require.Equal(t, "Veli", data.Sentences[0].Tokens[1].Normalized)
}

func TestReadData_Errors(t *testing.T) {
	input := "Ali PERSON_BEGIN\nbozuk\n\nVeli PERSON_NOWHERE\n\ngeldi OUTSIDE\n"
	data, dataErrors, err := ReadData(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, data.Size())
	require.Equal(t, "geldi", data.Sentences[0].Content)
	require.Len(t, dataErrors, 2)
	require.Equal(t, 2, dataErrors[0].Line)
	require.Equal(t, 4, dataErrors[1].Line)
}

func TestWriteData(t *testing.T) {
	data, _, err := ReadData(strings.NewReader(testData))
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, WriteData(&b, data))

	reread, dataErrors, err := ReadData(&b)
	require.NoError(t, err)
	require.Empty(t, dataErrors)
	require.Equal(t, data.Sentences, reread.Sentences)
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		label      string
		entityType string
		position   Position
		fails      bool
	}{
		{label: "OUTSIDE", position: Outside},
		{label: "PERSON_BEGIN", entityType: "PERSON", position: Begin},
		{label: "LOC_ORG_LAST", entityType: "LOC_ORG", position: Last},
		{label: "PERSON_", fails: true},
		{label: "_BEGIN", fails: true},
		{label: "PERSON", fails: true},
		{label: "PERSON_OUTSIDE", fails: true},
	}
	for _, tt := range tests {
		entityType, position, err := ParseLabel(tt.label)
		if tt.fails {
			require.Error(t, err, tt.label)
			continue
		}
		require.NoError(t, err, tt.label)
		require.Equal(t, tt.entityType, entityType)
		require.Equal(t, tt.position, position)
		require.Equal(t, tt.label, Label(entityType, position))
	}
}

func sentenceOf(t *testing.T, labels ...string) *Sentence {
	tokens := make([]*Token, len(labels))
	for i, label := range labels {
		token, err := NewToken("w", "", label)
		require.NoError(t, err)
		tokens[i] = token
	}
	return NewSentence(tokens)
}

func TestSentence_NamedEntities(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		expected []NamedEntity
	}{
		{
			name:   "no entities",
			labels: []string{"OUTSIDE", "OUTSIDE"},
		},
		{
			name:     "begin inside",
			labels:   []string{"PER_BEGIN", "PER_INSIDE", "OUTSIDE"},
			expected: []NamedEntity{{Type: "PER", Start: 0, End: 2}},
		},
		{
			name:   "adjacent begins",
			labels: []string{"PER_BEGIN", "PER_BEGIN", "PER_INSIDE"},
			expected: []NamedEntity{
				{Type: "PER", Start: 0, End: 1},
				{Type: "PER", Start: 1, End: 3},
			},
		},
		{
			name:   "type change",
			labels: []string{"PER_BEGIN", "LOC_INSIDE", "LOC_LAST", "OUTSIDE", "ORG_UNIT"},
			expected: []NamedEntity{
				{Type: "PER", Start: 0, End: 1},
				{Type: "LOC", Start: 1, End: 3},
				{Type: "ORG", Start: 4, End: 5},
			},
		},
		{
			name:   "last closes span",
			labels: []string{"PER_BEGIN", "PER_LAST", "PER_INSIDE"},
			expected: []NamedEntity{
				{Type: "PER", Start: 0, End: 2},
				{Type: "PER", Start: 2, End: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, sentenceOf(t, tt.labels...).NamedEntities())
		})
	}
}

func TestSentence_MatchingEntities(t *testing.T) {
	reference := sentenceOf(t, "PER_BEGIN", "PER_INSIDE", "OUTSIDE", "LOC_UNIT")
	prediction := sentenceOf(t, "PER_BEGIN", "OUTSIDE", "OUTSIDE", "LOC_UNIT")

	matches := prediction.MatchingEntities(reference.NamedEntities())
	require.Equal(t, []NamedEntity{{Type: "LOC", Start: 3, End: 4}}, matches)
	require.Len(t, reference.MatchingEntities(reference.NamedEntities()), 2)
}

func TestSentence_Relabel(t *testing.T) {
	s := sentenceOf(t, "OUTSIDE", "OUTSIDE")
	relabeled, err := s.Relabel([]string{"PER_BEGIN", "PER_INSIDE"})
	require.NoError(t, err)
	require.Equal(t, []string{"PER_BEGIN", "PER_INSIDE"}, relabeled.Labels())
	require.Equal(t, []string{"OUTSIDE", "OUTSIDE"}, s.Labels())

	_, err = s.Relabel([]string{"OUTSIDE"})
	require.True(t, errors.Is(err, ErrStructureMismatch))
}

func TestDataSet_Order(t *testing.T) {
	var sentences []*Sentence
	for i := 0; i < 20; i++ {
		sentences = append(sentences, sentenceOf(t, "OUTSIDE"))
	}
	visit := func(d *DataSet) []*Sentence {
		var order []*Sentence
		for s := d.Next(); s != nil; s = d.Next() {
			order = append(order, s)
		}
		return order
	}

	d := NewDataSet(sentences)
	require.Equal(t, sentences, visit(d))

	d.ResetOrder(RandomOrder)
	shuffled := visit(d)
	require.Len(t, shuffled, len(sentences))
	require.ElementsMatch(t, sentences, shuffled)

	d.ResetOrder(OriginalOrder)
	require.Equal(t, sentences, visit(d))
}

func TestAlign(t *testing.T) {
	a := NewDataSet([]*Sentence{sentenceOf(t, "OUTSIDE", "OUTSIDE")})
	b := NewDataSet([]*Sentence{sentenceOf(t, "OUTSIDE")})
	c := NewDataSet(nil)

	require.NoError(t, Align(a, a))
	require.True(t, errors.Is(Align(a, b), ErrStructureMismatch))
	require.True(t, errors.Is(Align(a, c), ErrStructureMismatch))
}

func TestSaveLoadModel(t *testing.T) {
	m := model.NewModel("OUTSIDE", "PERSON_BEGIN")
	m.Class("PERSON_BEGIN").UpdateSparse([]string{"w=ali"}, 1.5)

	var b bytes.Buffer
	require.NoError(t, SaveModel(m, &b))
	loaded, err := LoadModel(&b)
	require.NoError(t, err)
	require.Equal(t, m.Labels, loaded.Labels)
	require.Equal(t, 1.5, loaded.Class("PERSON_BEGIN").Weights.Get("w=ali"))
	require.NotNil(t, loaded.Class("OUTSIDE").Weights)
	require.Equal(t, m.Predict([]string{"w=ali"}), loaded.Predict([]string{"w=ali"}))

	_, err = LoadModel(strings.NewReader("garbage"))
	require.Error(t, err)
}
