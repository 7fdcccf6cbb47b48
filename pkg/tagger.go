package pkg

import (
	"fmt"

	"pner/pkg/features"
	"pner/pkg/io"
	"pner/pkg/model"
)

// Tagger labels sentences greedily from left to right. History features use
// the labels already predicted for the sentence.
type Tagger struct {
	Model     *model.Model
	Extractor features.Extractor
}

func NewTagger(m *model.Model, extractor features.Extractor) *Tagger {
	return &Tagger{Model: m, Extractor: extractor}
}

// decodeToken builds the active features of the token at index and scores them.
func decodeToken(m *model.Model, extractor features.Extractor, sentence *io.Sentence, index int, predicted []string) ([]string, model.ScoredLabel) {
	active := features.WithHistory(extractor.Features(sentence, index), predicted, index)
	return active, m.Predict(active)
}

// TagSentence returns a copy of sentence carrying the predicted labels.
func (t *Tagger) TagSentence(sentence *io.Sentence) (*io.Sentence, error) {
	predicted := make([]string, len(sentence.Tokens))
	for i := range sentence.Tokens {
		_, scored := decodeToken(t.Model, t.Extractor, sentence, i, predicted)
		predicted[i] = scored.Label
	}
	return sentence.Relabel(predicted)
}

// Tag labels every sentence of data, keeping sentence order.
func (t *Tagger) Tag(data *io.DataSet) (*io.DataSet, error) {
	result := make([]*io.Sentence, len(data.Sentences))
	for i, sentence := range data.Sentences {
		tagged, err := t.TagSentence(sentence)
		if err != nil {
			return nil, fmt.Errorf("error tagging sentence %d: %w", i, err)
		}
		result[i] = tagged
	}
	return io.NewDataSet(result), nil
}
