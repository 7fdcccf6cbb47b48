package io

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"pner/pkg/model"
)

// ErrStructureMismatch is returned when two data sets that should be aligned
// differ in sentence or token counts.
var ErrStructureMismatch = errors.New("data sets are not aligned")

type DataError struct {
	Line  int
	Error string
}

// LoadData reads a labeled data file. See ReadData for the format.
func LoadData(dataFile string) (*DataSet, []DataError, error) {
	inputFile, err := os.Open(dataFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error opening file")
	}
	defer inputFile.Close()
	return ReadData(inputFile)
}

// ReadData reads one token per line as "word label" or "word normalized label".
// Empty lines separate sentences and lines starting with # are ignored. A
// sentence holding a malformed line is dropped and the line reported as a
// DataError.
func ReadData(input io.Reader) (*DataSet, []DataError, error) {
	var dataErrors []DataError
	var sentences []*Sentence
	var tokens []*Token
	broken := false

	flush := func() {
		if len(tokens) > 0 && !broken {
			sentences = append(sentences, NewSentence(tokens))
		}
		tokens = nil
		broken = false
	}

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	currentLine := 0
	for scanner.Scan() {
		currentLine++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		token, err := parseToken(line)
		if err != nil {
			dataErrors = append(dataErrors, DataError{Line: currentLine, Error: err.Error()})
			broken = true
			continue
		}
		tokens = append(tokens, token)
	}
	if err := scanner.Err(); err != nil {
		return nil, dataErrors, errors.Wrapf(err, "error reading data at line %d", currentLine)
	}
	flush()

	return NewDataSet(sentences), dataErrors, nil
}

func parseToken(line string) (*Token, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 2:
		return NewToken(fields[0], "", fields[1])
	case 3:
		return NewToken(fields[0], fields[1], fields[2])
	default:
		return nil, errors.Errorf("expected 2 or 3 fields, got %d", len(fields))
	}
}

// WriteData writes the data set in the format read by ReadData.
func WriteData(w io.Writer, data *DataSet) error {
	bw := bufio.NewWriter(w)
	for i, s := range data.Sentences {
		if i > 0 {
			if _, err := fmt.Fprintln(bw); err != nil {
				return errors.Wrap(err, "error writing data")
			}
		}
		for _, token := range s.Tokens {
			var err error
			if token.Word == token.Normalized {
				_, err = fmt.Fprintf(bw, "%s %s\n", token.Word, token.Label)
			} else {
				_, err = fmt.Fprintf(bw, "%s %s %s\n", token.Word, token.Normalized, token.Label)
			}
			if err != nil {
				return errors.Wrap(err, "error writing data")
			}
		}
	}
	return errors.Wrap(bw.Flush(), "error writing data")
}

// Align checks that prediction has the same sentence and token counts as
// reference.
func Align(reference, prediction *DataSet) error {
	if reference.Size() != prediction.Size() {
		return errors.Wrapf(ErrStructureMismatch, "%d reference sentences, %d predicted", reference.Size(), prediction.Size())
	}
	for i, s := range reference.Sentences {
		p := prediction.Sentences[i]
		if len(s.Tokens) != len(p.Tokens) {
			return errors.Wrapf(ErrStructureMismatch, "sentence %d has %d reference tokens, %d predicted", i, len(s.Tokens), len(p.Tokens))
		}
	}
	return nil
}

func SaveModel(model *model.Model, writer io.Writer) error {
	encoder := gob.NewEncoder(writer)
	err := encoder.Encode(model)
	if err != nil {
		return errors.Wrap(err, "error encoding model")
	}
	return nil
}

func LoadModel(input io.Reader) (*model.Model, error) {
	decoder := gob.NewDecoder(input)
	m := model.Model{}
	err := decoder.Decode(&m)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding model")
	}
	// gob drops empty maps
	if m.Classes == nil {
		m.Classes = map[string]*model.ClassModel{}
	}
	if m.Labels.LabelToIndex == nil {
		m.Labels = model.NewLabelMap(m.Labels.IndexToLabel...)
	}
	for _, class := range m.Classes {
		if class.Weights == nil {
			class.Weights = model.NewWeights()
		}
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	return &m, nil
}
