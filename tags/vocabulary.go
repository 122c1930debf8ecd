package tags

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// vocabularyFile is the on-disk shape of a curated vocabulary.
type vocabularyFile struct {
	Tags []string `yaml:"tags"`
}

// LoadVocabulary reads a curated tag vocabulary from a YAML file:
//
//	tags:
//	  - 投資
//	  - 台股
//	  - machine learning
//
// A missing or empty vocabulary is a configuration error, fatal at startup.
func LoadVocabulary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}

	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	if len(file.Tags) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyVocabulary)
	}
	return file.Tags, nil
}
