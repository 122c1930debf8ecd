package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/podrec/podrec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLexicons() []CategoryLexicon {
	return []CategoryLexicon{
		{
			Name:     "business",
			Keywords: []string{"投資", "台股", "股票"},
			Partials: []string{"財經", "金融"},
		},
		{
			Name:     "education",
			Keywords: []string{"學習", "教育", "課程"},
			Partials: []string{"讀書"},
		},
	}
}

func TestNewClassifier(t *testing.T) {
	t.Run("valid lexicons", func(t *testing.T) {
		c, err := NewClassifier(testLexicons())
		require.NoError(t, err)
		assert.Equal(t, []string{"business", "education"}, c.Categories())
	})

	t.Run("too few categories", func(t *testing.T) {
		_, err := NewClassifier(testLexicons()[:1])
		assert.ErrorIs(t, err, ErrTooFewCategories)
	})

	t.Run("unnamed category", func(t *testing.T) {
		lexicons := testLexicons()
		lexicons[0].Name = ""
		_, err := NewClassifier(lexicons)
		assert.ErrorIs(t, err, ErrUnnamedCategory)
	})

	t.Run("empty keyword set", func(t *testing.T) {
		lexicons := testLexicons()
		lexicons[1].Keywords = nil
		_, err := NewClassifier(lexicons)
		assert.ErrorIs(t, err, ErrEmptyKeywordSet)
	})

	t.Run("invalid weights", func(t *testing.T) {
		_, err := NewClassifier(testLexicons(), WithWeights(1.0, 2.0))
		assert.ErrorIs(t, err, ErrInvalidWeights)
	})

	t.Run("invalid dual margin", func(t *testing.T) {
		_, err := NewClassifier(testLexicons(), WithDualMargin(1.5))
		assert.ErrorIs(t, err, ErrInvalidDualMargin)
	})
}

func TestCategorize_SingleCategory(t *testing.T) {
	c, err := NewClassifier(testLexicons())
	require.NoError(t, err)

	result := c.Categorize("台股投資分析")
	assert.Equal(t, "business", result.Category)
	assert.Greater(t, result.Confidence, 0.5)
	assert.Contains(t, result.MatchedKeywords, "台股")
	assert.Contains(t, result.MatchedKeywords, "投資")
}

func TestCategorize_ScoreOrdering(t *testing.T) {
	c, err := NewClassifier(testLexicons())
	require.NoError(t, err)

	// A query with only business keywords must score business strictly
	// above every other category.
	result := c.Categorize("台股投資股票")
	for name, score := range result.Scores {
		if name == "business" {
			continue
		}
		assert.Greater(t, result.Scores["business"], score)
	}
}

func TestCategorize_DirectOutweighsPartial(t *testing.T) {
	c, err := NewClassifier(testLexicons())
	require.NoError(t, err)

	// One business partial hit vs one education direct hit: the direct
	// keyword must win.
	result := c.Categorize("財經課程")
	assert.Equal(t, "education", result.Category)
}

func TestCategorize_DualOutcome(t *testing.T) {
	c, err := NewClassifier(testLexicons())
	require.NoError(t, err)

	// One direct hit for each category: a dead heat.
	result := c.Categorize("投資教育")
	assert.Equal(t, core.CategoryDual, result.Category)
	assert.InDelta(t, 0.5, result.Confidence, 0.01)
}

func TestCategorize_GeneralFallback(t *testing.T) {
	c, err := NewClassifier(testLexicons())
	require.NoError(t, err)

	t.Run("empty query", func(t *testing.T) {
		result := c.Categorize("")
		assert.Equal(t, core.CategoryGeneral, result.Category)
		assert.Less(t, result.Confidence, 0.5)
	})

	t.Run("unmatched query", func(t *testing.T) {
		result := c.Categorize("天氣真好")
		assert.Equal(t, core.CategoryGeneral, result.Category)
		assert.Less(t, result.Confidence, 0.5)
		assert.Zero(t, result.Scores["business"])
		assert.Zero(t, result.Scores["education"])
	})
}

func TestCategorize_ConfidenceReflectsGap(t *testing.T) {
	c, err := NewClassifier(testLexicons())
	require.NoError(t, err)

	// Three business hits vs one education hit.
	wide := c.Categorize("台股投資股票學習")
	// Two business hits vs one education hit.
	narrow := c.Categorize("台股投資學習")

	require.Equal(t, "business", wide.Category)
	assert.Greater(t, wide.Confidence, narrow.Confidence)
}

func TestLoadLexicons(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "categories.yaml")
		content := `categories:
  - name: business
    keywords: [投資, 台股]
    partials: [財經]
  - name: education
    keywords: [學習]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		lexicons, err := LoadLexicons(path)
		require.NoError(t, err)
		require.Len(t, lexicons, 2)
		assert.Equal(t, "business", lexicons[0].Name)
		assert.Equal(t, []string{"財經"}, lexicons[0].Partials)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLexicons(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "categories.yaml")
		require.NoError(t, os.WriteFile(path, []byte("categories: []\n"), 0644))
		_, err := LoadLexicons(path)
		assert.ErrorIs(t, err, ErrTooFewCategories)
	})
}
