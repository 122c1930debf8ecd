package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryLexicon is one category's weighted keyword configuration.
// Keywords contribute the direct weight per hit; Partials (looser surface
// forms, tag names) contribute the partial weight.
type CategoryLexicon struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Partials []string `yaml:"partials"`
}

type lexiconFile struct {
	Categories []CategoryLexicon `yaml:"categories"`
}

// LoadLexicons reads category keyword sets from a YAML file:
//
//	categories:
//	  - name: business
//	    keywords: [投資, 台股, 股票]
//	    partials: [財經, 金融]
//	  - name: education
//	    keywords: [學習, 教育]
//	    partials: [課程]
//
// The lexicons are external configuration; a missing or empty file is a
// configuration error, fatal at startup.
func LoadLexicons(path string) ([]CategoryLexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category lexicons %s: %w", path, err)
	}

	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing category lexicons %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrTooFewCategories)
	}
	return file.Categories, nil
}
