package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTrainingParameters(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "train.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte("num_epochs: 3\nlearning_rate: 0.25\nshuffle: false\n"), 0644))

	params, err := LoadTrainingParameters(fileName, DefaultTrainingParameters())
	require.NoError(t, err)
	require.Equal(t, TrainingParameters{
		NumEpochs:    3,
		LearningRate: 0.25,
		RndSeed:      42,
		Shuffle:      false,
	}, params)
	require.NoError(t, params.Validate())

	_, err = LoadTrainingParameters(filepath.Join(dir, "missing.yaml"), DefaultTrainingParameters())
	require.Error(t, err)

	require.NoError(t, os.WriteFile(fileName, []byte("num_epochs: [1"), 0644))
	_, err = LoadTrainingParameters(fileName, DefaultTrainingParameters())
	require.Error(t, err)
}

func TestTrainingParameters_Validate(t *testing.T) {
	params := DefaultTrainingParameters()
	require.NoError(t, params.Validate())

	params.NumEpochs = 0
	require.Error(t, params.Validate())

	params = DefaultTrainingParameters()
	params.LearningRate = -1
	require.Error(t, params.Validate())
}
