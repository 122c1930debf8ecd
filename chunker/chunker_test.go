package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		c, err := New(200, 20)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("zero max chunk size", func(t *testing.T) {
		_, err := New(0, 0)
		assert.ErrorIs(t, err, ErrInvalidMaxChunkSize)
	})

	t.Run("overlap not smaller than max", func(t *testing.T) {
		_, err := New(100, 100)
		assert.ErrorIs(t, err, ErrInvalidOverlapSize)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(100, -1)
		assert.ErrorIs(t, err, ErrInvalidOverlapSize)
	})
}

func TestSplit_EmptyInput(t *testing.T) {
	c, err := New(100, 10)
	require.NoError(t, err)

	assert.Empty(t, c.Chunks(""))
	assert.Empty(t, c.Chunks("   \n\n\t  "))
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c, err := New(200, 20)
	require.NoError(t, err)

	chunks := c.Chunks("今天聊聊台股。資產配置很重要。")
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "台股")
	assert.Contains(t, chunks[0], "資產配置")
}

func TestSplit_Deterministic(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("第一句話。第二句話比較長一點。", 20)

	first := c.Chunks(text)
	second := c.Chunks(text)
	assert.Equal(t, first, second)

	// Restarting the lazy sequence itself must also replay identically.
	seq := c.Split(text)
	var replayA, replayB []string
	for chunk := range seq {
		replayA = append(replayA, chunk)
	}
	for chunk := range seq {
		replayB = append(replayB, chunk)
	}
	assert.Equal(t, replayA, replayB)
}

func TestSplit_RespectsMaxSize(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("這是一段測試文字,用來驗證長度限制。", 30)
	chunks := c.Chunks(text)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 50)
	}
}

func TestSplit_NearBudgetSentencesRespectMaxSize(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	// Sentences longer than maxChunkSize-overlapSize but within the budget:
	// the overlap seed must not push any chunk past the limit.
	text := strings.Repeat("實", 44) + "。" + strings.Repeat("驗", 44) + "。"
	chunks := c.Chunks(text)
	require.Len(t, chunks, 2)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 50)
	}
	assert.Contains(t, chunks[0], "實")
	assert.Contains(t, chunks[1], "驗")
}

func TestSplit_Coverage(t *testing.T) {
	c, err := New(60, 10)
	require.NoError(t, err)

	sentences := []string{
		"台股今天大漲。",
		"半導體類股表現強勢。",
		"投資人需要注意風險控管。",
		"資產配置是長期報酬的關鍵。",
	}
	text := strings.Join(sentences, "")
	chunks := c.Chunks(text)
	require.NotEmpty(t, chunks)

	// Every sentence must appear intact in at least one chunk.
	joined := strings.Join(chunks, "\n")
	for _, sentence := range sentences {
		assert.Contains(t, joined, strings.TrimSuffix(sentence, "。"))
	}
}

func TestSplit_OverlapBetweenChunks(t *testing.T) {
	c, err := New(30, 10)
	require.NoError(t, err)

	text := "第一句在這裡結束。第二句內容接著來。第三句讓文字超過單一段落的長度上限。"
	chunks := c.Chunks(text)
	require.Greater(t, len(chunks), 1)

	// The head of each later chunk repeats the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-3:])
		assert.Contains(t, chunks[i], tail)
	}
}

func TestSplit_HardCutOversizedSentence(t *testing.T) {
	c, err := New(40, 5)
	require.NoError(t, err)

	// One sentence with no terminators, longer than the budget.
	text := strings.Repeat("字", 100)
	chunks := c.Chunks(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 40)
	}
}

func TestSplit_ParagraphBoundariesPreferred(t *testing.T) {
	c, err := New(100, 0)
	require.NoError(t, err)

	text := "第一段的內容。\n\n第二段的內容。"
	chunks := c.Chunks(text)
	require.NotEmpty(t, chunks)
	// Paragraphs are short enough to pack together, but never mid-split.
	joined := strings.Join(chunks, "")
	assert.Contains(t, joined, "第一段的內容")
	assert.Contains(t, joined, "第二段的內容")
}

func TestSplit_LatinText(t *testing.T) {
	c, err := New(80, 10)
	require.NoError(t, err)

	text := "First sentence here. Second sentence follows! Third one asks a question? Done."
	chunks := c.Chunks(text)
	require.NotEmpty(t, chunks)
	assert.Contains(t, strings.Join(chunks, " "), "Second sentence follows")
}
