package pkg

import (
	"fmt"
	"os"

	"github.com/nlpodyssey/spago/pkg/mat/rand"
	"github.com/rs/zerolog/log"

	"pner/pkg/features"
	"pner/pkg/io"
	"pner/pkg/model"
)

// Trainer learns an averaged perceptron tagger. The live model is used for
// decoding during training; averages accumulates every update scaled by the
// update count of its label at the time of the update.
type Trainer struct {
	params    TrainingParameters
	extractor features.Extractor
	model     *model.Model
	averages  *model.Model
	counts    map[string]int
	epoch     int
	finalized bool
}

type EpochResult struct {
	Epoch    int
	Mistakes int
	Tokens   int
}

func (r EpochResult) TokenErrorRatio() float64 {
	return ratio(r.Mistakes, r.Tokens)
}

// NewTrainer creates a trainer with an empty live and average model for each
// of the labels.
func NewTrainer(params TrainingParameters, extractor features.Extractor, labels []string) (*Trainer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to train")
	}
	for _, label := range labels {
		if _, _, err := io.ParseLabel(label); err != nil {
			return nil, err
		}
	}
	counts := make(map[string]int, len(labels))
	for _, label := range labels {
		counts[label] = 0
	}
	return &Trainer{
		params:    params,
		extractor: extractor,
		model:     model.NewModel(labels...),
		averages:  model.NewModel(labels...),
		counts:    counts,
	}, nil
}

// Train runs all epochs over train, evaluating an averaged copy of the model
// on dev after each epoch when dev is not empty, and returns the averaged model.
func (t *Trainer) Train(train, dev *io.DataSet) (*model.Model, error) {
	train.Rand = rand.NewLockedRand(t.params.RndSeed)
	for epoch := 0; epoch < t.params.NumEpochs; epoch++ {
		result, err := t.Epoch(train)
		if err != nil {
			return nil, err
		}
		log.Info().Int("Epoch", result.Epoch).
			Float64("TokenError", result.TokenErrorRatio()).
			Int("Mistakes", result.Mistakes).
			Int("Tokens", result.Tokens).
			Msg("")

		if dev != nil && dev.Size() > 0 {
			testResult, err := t.Interim(dev)
			if err != nil {
				return nil, err
			}
			testResult.LogMetrics()
		}
	}
	m, err := t.Finalize()
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Training finished")
	return m, nil
}

// Epoch makes one pass over data, in random order when shuffling is enabled.
func (t *Trainer) Epoch(data *io.DataSet) (EpochResult, error) {
	if t.finalized {
		return EpochResult{}, fmt.Errorf("trainer already finalized")
	}
	t.epoch++
	result := EpochResult{Epoch: t.epoch}

	if t.params.Shuffle {
		data.ResetOrder(io.RandomOrder)
	} else {
		data.ResetOrder(io.OriginalOrder)
	}
	for sentence := data.Next(); sentence != nil; sentence = data.Next() {
		mistakes, err := t.trainSentence(sentence)
		if err != nil {
			return result, err
		}
		result.Mistakes += mistakes
		result.Tokens += len(sentence.Tokens)
	}
	return result, nil
}

func (t *Trainer) trainSentence(sentence *io.Sentence) (int, error) {
	mistakes := 0
	predicted := make([]string, len(sentence.Tokens))
	for i, token := range sentence.Tokens {
		if !t.model.Labels.Contains(token.Label) {
			return mistakes, fmt.Errorf("unknown label %s in sentence %q", token.Label, sentence.Content)
		}
		active, scored := decodeToken(t.model, t.extractor, sentence, i, predicted)
		predicted[i] = scored.Label
		if t.update(token.Label, scored.Label, active) {
			mistakes++
		}
	}
	return mistakes, nil
}

// update applies the perceptron rule for one token and reports whether the
// prediction was wrong. A correct prediction only increments the count of its
// label.
func (t *Trainer) update(gold, predicted string, active []string) bool {
	t.counts[gold]++
	if predicted == gold {
		return false
	}
	t.counts[predicted]++

	rate := t.params.LearningRate
	t.model.Class(gold).UpdateSparse(active, rate)
	t.model.Class(predicted).UpdateSparse(active, -rate)

	t.averages.Class(gold).UpdateSparse(active, float64(t.counts[gold])*rate)
	t.averages.Class(predicted).UpdateSparse(active, -float64(t.counts[predicted])*rate)
	return true
}

// AveragedModel returns an averaged copy of the live model. The trainer state
// is left untouched.
func (t *Trainer) AveragedModel() *model.Model {
	copied := t.model.Copy()
	averageWeights(t.averages, copied, t.counts)
	return copied
}

// Interim evaluates an averaged copy of the current model on dev.
func (t *Trainer) Interim(dev *io.DataSet) (*TestResult, error) {
	tagger := NewTagger(t.AveragedModel(), t.extractor)
	prediction, err := tagger.Tag(dev)
	if err != nil {
		return nil, err
	}
	return Evaluate(dev, prediction)
}

// Finalize averages the live model in place and hands it over. It can only be
// called once.
func (t *Trainer) Finalize() (*model.Model, error) {
	if t.finalized {
		return nil, fmt.Errorf("trainer already finalized")
	}
	t.finalized = true
	averageWeights(t.averages, t.model, t.counts)
	return t.model, nil
}

// averageWeights sets every weight w of m to w - a/count where a is the
// accumulated weight and count the update count of the label. Labels with a
// zero count keep their weights.
func averageWeights(averages, m *model.Model, counts map[string]int) {
	for label, class := range m.Classes {
		count := counts[label]
		if count == 0 {
			continue
		}
		accumulated := averages.Class(label).Weights
		for feature, value := range class.Weights {
			class.Weights[feature] = value - accumulated.Get(feature)/float64(count)
		}
	}
}

// Train reads the training (and optional development) data, trains a model and
// saves it to outputFileName.
func Train(trainFile, devFile, outputFileName string, params TrainingParameters) error {
	train, dataErrors, err := io.LoadData(trainFile)
	if err != nil {
		return fmt.Errorf("error reading training data: %w", err)
	}
	printDataErrors(dataErrors)
	if train.Size() == 0 {
		return fmt.Errorf("no data to train")
	}

	var dev *io.DataSet
	if devFile != "" {
		dev, dataErrors, err = io.LoadData(devFile)
		if err != nil {
			return fmt.Errorf("error reading development data: %w", err)
		}
		printDataErrors(dataErrors)
	}

	log.Info().Int("Sentences", train.Size()).
		Int("Tokens", train.TokenCount()).
		Int("Entities", train.EntityCount()).
		Strs("Labels", train.Labels()).
		Msg("Training data loaded")

	extractor := features.NewTextualExtractor()
	trainer, err := NewTrainer(params, extractor, train.Labels())
	if err != nil {
		return err
	}
	m, err := trainer.Train(train, dev)
	if err != nil {
		return err
	}

	outputFile, err := os.Create(outputFileName)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", outputFileName, err)
	}
	defer outputFile.Close()

	if err := io.SaveModel(m, outputFile); err != nil {
		return fmt.Errorf("error saving model to %s: %w", outputFileName, err)
	}
	log.Info().Str("File", outputFileName).Msg("Model saved")
	return nil
}
