package pkg

import (
	"bufio"
	"fmt"
	gio "io"
	"math"
	"os"
	"sort"

	"github.com/nlpodyssey/spago/pkg/ml/stats"
	"github.com/rs/zerolog/log"

	"pner/pkg/features"
	"pner/pkg/io"
)

// TestResult holds the token and entity level counts of an evaluation. Ratios
// with an empty denominator are NaN.
type TestResult struct {
	ErrorCount              int
	TokenCount              int
	TruePositives           int
	FalsePositives          int
	FalseNegatives          int
	NamedEntityCount        int
	CorrectNamedEntityCount int

	// Classes holds per-label counts: agreement is a true positive of the
	// label, disagreement a false negative of the reference label and a false
	// positive of the predicted one.
	Classes map[string]*stats.ClassMetrics
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return math.NaN()
	}
	return float64(numerator) / float64(denominator)
}

func (r *TestResult) TokenErrorRatio() float64 {
	return ratio(r.ErrorCount, r.TokenCount)
}

func (r *TestResult) TokenPrecision() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalsePositives)
}

func (r *TestResult) TokenRecall() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalseNegatives)
}

func (r *TestResult) TokenF1() float64 {
	precision, recall := r.TokenPrecision(), r.TokenRecall()
	if math.IsNaN(precision) || math.IsNaN(recall) || precision+recall == 0 {
		return math.NaN()
	}
	return 2 * precision * recall / (precision + recall)
}

func (r *TestResult) ExactMatch() float64 {
	return ratio(r.CorrectNamedEntityCount, r.NamedEntityCount)
}

func (r *TestResult) String() string {
	return fmt.Sprintf("Token Error ratio = %.6f NE Token Precision = %.6f NE Token Recall = %.6f Exact NER match = %.6f",
		r.TokenErrorRatio(), r.TokenPrecision(), r.TokenRecall(), r.ExactMatch())
}

func (r *TestResult) LogMetrics() {
	for _, label := range sortClasses(r.Classes) {
		result := r.Classes[label]
		log.Info().Str("Class", label).
			Int("TP", result.TruePos).
			Int("FP", result.FalsePos).
			Int("FN", result.FalseNeg).
			Float64("Precision", float64(result.Precision())).
			Float64("Recall", float64(result.Recall())).
			Float64("F1", float64(result.F1Score())).
			Msg("")
	}
	log.Info().Float64("TokenError", r.TokenErrorRatio()).
		Float64("Precision", r.TokenPrecision()).
		Float64("Recall", r.TokenRecall()).
		Float64("F1", r.TokenF1()).
		Float64("ExactMatch", r.ExactMatch()).
		Msg("")
}

func (r *TestResult) class(label string) *stats.ClassMetrics {
	metrics, ok := r.Classes[label]
	if !ok {
		metrics = stats.NewMetricCounter()
		r.Classes[label] = metrics
	}
	return metrics
}

// Evaluate compares prediction against reference. Both must have the same
// sentences and tokens in the same order.
func Evaluate(reference, prediction *io.DataSet) (*TestResult, error) {
	if err := io.Align(reference, prediction); err != nil {
		return nil, err
	}
	result := &TestResult{Classes: map[string]*stats.ClassMetrics{}}

	for i, ts := range reference.Sentences {
		ps := prediction.Sentences[i]
		for j, tt := range ts.Tokens {
			pt := ps.Tokens[j]
			if tt.Label != pt.Label {
				result.ErrorCount++
				if tt.Position == io.Outside {
					result.FalsePositives++
				}
				if pt.Position == io.Outside {
					result.FalseNegatives++
				}
				result.class(tt.Label).IncFalseNeg()
				result.class(pt.Label).IncFalsePos()
			} else {
				if tt.Position != io.Outside {
					result.TruePositives++
				}
				result.class(tt.Label).IncTruePos()
			}
			result.TokenCount++
		}
		entities := ts.NamedEntities()
		result.NamedEntityCount += len(entities)
		result.CorrectNamedEntityCount += len(ps.MatchingEntities(entities))
	}
	return result, nil
}

// WriteReport writes every reference sentence followed by one line per token
// with its reference and predicted labels, then the aggregate metrics.
func WriteReport(w gio.Writer, reference, prediction *io.DataSet) (*TestResult, error) {
	result, err := Evaluate(reference, prediction)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(w)
	for i, ts := range reference.Sentences {
		ps := prediction.Sentences[i]
		fmt.Fprintln(bw, ts.Content)
		for j, tt := range ts.Tokens {
			pt := ps.Tokens[j]
			if tt.Word == tt.Normalized {
				fmt.Fprintf(bw, "%s %s -> %s\n", tt.Word, tt.Label, pt.Label)
			} else {
				fmt.Fprintf(bw, "%s:%s %s -> %s\n", tt.Word, tt.Normalized, tt.Label, pt.Label)
			}
		}
	}
	fmt.Fprintln(bw, result.String())
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("error writing report: %w", err)
	}
	return result, nil
}

// Test tags inputFileName with the model in modelFileName and logs the
// evaluation against its labels. A report is written when reportFileName is
// not empty.
func Test(modelFileName, inputFileName, reportFileName string) error {
	tagger, err := loadTagger(modelFileName)
	if err != nil {
		return err
	}
	reference, dataErrors, err := io.LoadData(inputFileName)
	if err != nil {
		return fmt.Errorf("error loading data from %s: %w", inputFileName, err)
	}
	printDataErrors(dataErrors)
	if reference.Size() == 0 {
		return fmt.Errorf("no data to test")
	}

	prediction, err := tagger.Tag(reference)
	if err != nil {
		return err
	}

	var result *TestResult
	if reportFileName != "" {
		reportFile, err := os.Create(reportFileName)
		if err != nil {
			return fmt.Errorf("error opening report file %s: %w", reportFileName, err)
		}
		defer reportFile.Close()
		result, err = WriteReport(reportFile, reference, prediction)
		if err != nil {
			return err
		}
	} else {
		result, err = Evaluate(reference, prediction)
		if err != nil {
			return err
		}
	}
	result.LogMetrics()
	return nil
}

// Tag labels inputFileName with the model in modelFileName and writes the
// predicted labels to outputFileName.
func Tag(modelFileName, inputFileName, outputFileName string) error {
	tagger, err := loadTagger(modelFileName)
	if err != nil {
		return err
	}
	data, dataErrors, err := io.LoadData(inputFileName)
	if err != nil {
		return fmt.Errorf("error loading data from %s: %w", inputFileName, err)
	}
	printDataErrors(dataErrors)

	prediction, err := tagger.Tag(data)
	if err != nil {
		return err
	}

	outputFile, err := os.Create(outputFileName)
	if err != nil {
		return fmt.Errorf("error opening output file %s: %w", outputFileName, err)
	}
	defer outputFile.Close()
	return io.WriteData(outputFile, prediction)
}

func loadTagger(modelFileName string) (*Tagger, error) {
	modelFile, err := os.Open(modelFileName)
	if err != nil {
		return nil, fmt.Errorf("error opening model file %s: %w", modelFileName, err)
	}
	defer modelFile.Close()

	m, err := io.LoadModel(modelFile)
	if err != nil {
		return nil, fmt.Errorf("error loading model from file %s: %w", modelFileName, err)
	}
	return NewTagger(m, features.NewTextualExtractor()), nil
}

func sortClasses(metrics map[string]*stats.ClassMetrics) []string {
	result := make([]string, 0, len(metrics))
	for class := range metrics {
		result = append(result, class)
	}
	sort.Strings(result)
	return result
}
