package nlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name       string
		question   string
		wantIntent Intent
		wantMatch  bool
	}{
		{
			name:       "current trend with symbol keyword",
			question:   "What is the trend on symbol 230011 today?",
			wantIntent: IntentTrendCurrent,
			wantMatch:  true,
		},
		{
			name:       "current trend with stock keyword",
			question:   "Show the trend for stock 230011",
			wantIntent: IntentTrendCurrent,
			wantMatch:  true,
		},
		{
			name:       "current trend phrased as how trending",
			question:   "How is 230011 trending?",
			wantIntent: IntentTrendCurrent,
			wantMatch:  true,
		},
		{
			name:       "trend change uptrend to downtrend",
			question:   "When was the last time symbol 230011 moved from uptrend to downtrend?",
			wantIntent: IntentTrendChange,
			wantMatch:  true,
		},
		{
			name:       "trend change long to short",
			question:   "last time 230011 changed from long to short",
			wantIntent: IntentTrendChange,
			wantMatch:  true,
		},
		{
			name:       "trend history without symbol keyword",
			question:   "Show me the trend history for 230011",
			wantIntent: IntentTrendHistory,
			wantMatch:  true,
		},
		{
			name:       "no rule matches",
			question:   "Which stocks had the highest volume yesterday?",
			wantIntent: IntentGeneral,
			wantMatch:  false,
		},
		{
			name:       "empty question",
			question:   "",
			wantIntent: IntentGeneral,
			wantMatch:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := classifier.Classify(tt.question)

			assert.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.wantIntent, rule.Intent)
			if tt.wantMatch {
				assert.NotEmpty(t, rule.SQLTemplate)
			}
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	classifier := NewClassifier()

	// "trend history ... symbol <n>" satisfies both the current-trend and
	// history rules; the earlier rule must win regardless of specificity.
	rule, ok := classifier.Classify("Show me the trend history for symbol 230011 over the last 7 days")

	require.True(t, ok)
	assert.Equal(t, IntentTrendCurrent, rule.Intent)
}

func TestClassifyCaseInsensitive(t *testing.T) {
	classifier := NewClassifier()

	rule, ok := classifier.Classify("WHAT IS THE TREND ON SYMBOL 230011 TODAY?")

	require.True(t, ok)
	assert.Equal(t, IntentTrendCurrent, rule.Intent)
}
