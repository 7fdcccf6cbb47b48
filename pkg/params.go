package pkg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type TrainingParameters struct {
	NumEpochs    int     `yaml:"num_epochs"`
	LearningRate float64 `yaml:"learning_rate"`
	RndSeed      uint64  `yaml:"random_seed"`
	// Shuffle reorders the training sentences at the start of every epoch.
	Shuffle bool `yaml:"shuffle"`
}

func DefaultTrainingParameters() TrainingParameters {
	return TrainingParameters{
		NumEpochs:    7,
		LearningRate: 0.1,
		RndSeed:      42,
		Shuffle:      true,
	}
}

func (p TrainingParameters) Validate() error {
	if p.NumEpochs < 1 {
		return fmt.Errorf("number of epochs must be positive, got %d", p.NumEpochs)
	}
	if p.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %f", p.LearningRate)
	}
	return nil
}

// LoadTrainingParameters reads parameters from a YAML file. Keys missing from
// the file keep their values in defaults.
func LoadTrainingParameters(fileName string, defaults TrainingParameters) (TrainingParameters, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return defaults, fmt.Errorf("error reading config file %s: %w", fileName, err)
	}
	params := defaults
	if err := yaml.Unmarshal(data, &params); err != nil {
		return defaults, fmt.Errorf("error parsing config file %s: %w", fileName, err)
	}
	return params, nil
}
