package nlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSymbol(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name       string
		question   string
		wantSymbol string
		wantOK     bool
	}{
		{
			name:       "symbol keyword",
			question:   "What is the trend on symbol 230011 today?",
			wantSymbol: "230011",
			wantOK:     true,
		},
		{
			name:       "stock keyword",
			question:   "How is stock 629014 doing?",
			wantSymbol: "629014",
			wantOK:     true,
		},
		{
			name:       "bare digit run",
			question:   "Show me 230011 trend history",
			wantSymbol: "230011",
			wantOK:     true,
		},
		{
			name:       "keyword wins over earlier digit run",
			question:   "In the last 9999 days what happened to symbol 230011?",
			wantSymbol: "230011",
			wantOK:     true,
		},
		{
			name:     "short digit run is not a symbol",
			question: "What happened over the last 30 days?",
			wantOK:   false,
		},
		{
			name:     "no digits at all",
			question: "What is the market doing?",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbol, ok := extractor.ExtractSymbol(tt.question)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSymbol, symbol)
		})
	}
}

func TestExtractDays(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name     string
		question string
		want     int
	}{
		{
			name:     "explicit span",
			question: "trend history for 230011 over the last 30 days",
			want:     30,
		},
		{
			name:     "single day",
			question: "what changed in 1 day",
			want:     1,
		},
		{
			name:     "trading days phrasing",
			question: "show 14 trading days of history",
			want:     14,
		},
		{
			name:     "no span defaults",
			question: "trend history for symbol 230011",
			want:     DefaultHistoryDays,
		},
		{
			name:     "symbol digits not mistaken for days",
			question: "trend history for 230011",
			want:     DefaultHistoryDays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.ExtractDays(tt.question))
		})
	}
}

func TestExtract(t *testing.T) {
	extractor := NewExtractor()

	entities := extractor.Extract("Show me the trend history for symbol 230011 over the last 7 days")

	assert.Equal(t, "230011", entities["symbol"])
	assert.Equal(t, "7", entities["days"])
}

func TestExtractOmitsAbsentSymbol(t *testing.T) {
	extractor := NewExtractor()

	entities := extractor.Extract("What is the market trend?")

	_, hasSymbol := entities["symbol"]
	assert.False(t, hasSymbol)
	assert.Equal(t, "7", entities["days"])
}
