package classification

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

//go:embed data/seed_corpus.yaml
var seedCorpus []byte

type corpusFile struct {
	Examples []model.TrainingExample `yaml:"examples"`
}

// SeedCorpus returns the labelled descriptions the classifier starts from.
func SeedCorpus() ([]model.TrainingExample, error) {
	return LoadCorpus(bytes.NewReader(seedCorpus))
}

// LoadCorpus parses a YAML list of training examples.
func LoadCorpus(r io.Reader) ([]model.TrainingExample, error) {
	var file corpusFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode training corpus: %w", err)
	}

	for i, ex := range file.Examples {
		if strings.TrimSpace(ex.Text) == "" || ex.Category == "" || ex.Subcategory == "" {
			return nil, fmt.Errorf("training example %d is incomplete", i)
		}
	}
	return file.Examples, nil
}
