package recommend

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	t.Run("weighted sum", func(t *testing.T) {
		confidence := Combine(SubScores{
			ResponseLength: 1.0,
			SourceCount:    0.8,
			Relevance:      0.5,
			Latency:        0.0,
			Structure:      0.2,
		})
		// 1.0*0.20 + 0.8*0.25 + 0.5*0.30 + 0*0.15 + 0.2*0.10
		assert.InDelta(t, 0.57, confidence, 1e-9)
	})

	t.Run("all perfect", func(t *testing.T) {
		confidence := Combine(SubScores{1, 1, 1, 1, 1})
		assert.InDelta(t, 1.0, confidence, 1e-9)
	})

	t.Run("all zero", func(t *testing.T) {
		assert.Zero(t, Combine(SubScores{}))
	})

	t.Run("out of range sub-scores are clamped", func(t *testing.T) {
		confidence := Combine(SubScores{
			ResponseLength: 7.0,
			SourceCount:    -2.0,
			Relevance:      1.5,
			Latency:        1.0,
			Structure:      1.0,
		})
		// Clamps to {1, 0, 1, 1, 1}.
		assert.InDelta(t, 0.75, confidence, 1e-9)
		assert.LessOrEqual(t, confidence, 1.0)
	})
}

func TestControllerScore(t *testing.T) {
	controller, err := NewController()
	require.NoError(t, err)

	t.Run("good response scores high", func(t *testing.T) {
		response := strings.Repeat("台股投資要分散風險。", 25)
		confidence := controller.Score("台股投資", response, 5, 200*time.Millisecond)
		assert.Greater(t, confidence, 0.7)
	})

	t.Run("empty response scores low", func(t *testing.T) {
		confidence := controller.Score("台股投資", "", 0, 200*time.Millisecond)
		assert.Less(t, confidence, 0.3)
	})

	t.Run("slow response scores lower than fast", func(t *testing.T) {
		response := strings.Repeat("台股投資要分散風險。", 25)
		fast := controller.Score("台股投資", response, 5, 100*time.Millisecond)
		slow := controller.Score("台股投資", response, 5, 10*time.Second)
		assert.Greater(t, fast, slow)
	})

	t.Run("irrelevant response scores lower than relevant", func(t *testing.T) {
		relevant := controller.Score("台股投資", "台股投資的重點是風險。", 3, time.Second)
		irrelevant := controller.Score("台股投資", "今天天氣很好。", 3, time.Second)
		assert.Greater(t, relevant, irrelevant)
	})

	t.Run("more sources never lowers the score", func(t *testing.T) {
		response := strings.Repeat("台股投資要分散風險。", 10)
		prev := controller.Score("台股投資", response, 0, time.Second)
		for sources := 1; sources <= 8; sources++ {
			confidence := controller.Score("台股投資", response, sources, time.Second)
			assert.GreaterOrEqual(t, confidence, prev,
				"confidence dropped going from %d to %d sources", sources-1, sources)
			prev = confidence
		}
	})
}

func TestShouldFallback(t *testing.T) {
	t.Run("below threshold", func(t *testing.T) {
		controller, err := NewController()
		require.NoError(t, err)
		assert.True(t, controller.ShouldFallback(0.5))
		assert.False(t, controller.ShouldFallback(0.9))
	})

	t.Run("at threshold does not fall back", func(t *testing.T) {
		controller, err := NewController(WithThreshold(0.7))
		require.NoError(t, err)
		assert.False(t, controller.ShouldFallback(0.7))
	})

	t.Run("disabled never falls back", func(t *testing.T) {
		controller, err := NewController(WithFallbackEnabled(false))
		require.NoError(t, err)
		assert.False(t, controller.ShouldFallback(0.01))
	})
}

func TestControllerStats(t *testing.T) {
	controller, err := NewController(WithThreshold(0.5))
	require.NoError(t, err)

	high := controller.Score("台股投資", strings.Repeat("台股投資重點。", 40), 5, 100*time.Millisecond)
	low := controller.Score("台股投資", "", 0, 10*time.Second)

	controller.ShouldFallback(high)
	controller.ShouldFallback(low)

	stats := controller.Stats()
	assert.Equal(t, 2, stats.TotalQueries)
	assert.Equal(t, 1, stats.LowConfidenceCount)
	assert.Equal(t, 1, stats.FallbackCount)
	assert.InDelta(t, (high+low)/2, stats.MeanConfidence, 1e-9)
}

func TestUpdateThreshold(t *testing.T) {
	controller, err := NewController()
	require.NoError(t, err)
	assert.InDelta(t, DefaultThreshold, controller.Threshold(), 1e-9)

	require.NoError(t, controller.UpdateThreshold(0.9))
	assert.InDelta(t, 0.9, controller.Threshold(), 1e-9)
	assert.True(t, controller.ShouldFallback(0.85))

	assert.ErrorIs(t, controller.UpdateThreshold(1.2), ErrInvalidThreshold)
	assert.ErrorIs(t, controller.UpdateThreshold(-0.1), ErrInvalidThreshold)

	_, err = NewController(WithThreshold(2))
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
