package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentiment_Index(t *testing.T) {
	assert.Equal(t, 0, SentimentNegative.Index())
	assert.Equal(t, 1, SentimentPositive.Index())
	assert.Equal(t, -1, Sentiment("neutral").Index())
}

func TestClasses_Order(t *testing.T) {
	assert.Equal(t, []Sentiment{SentimentNegative, SentimentPositive}, Classes())
	for i, c := range Classes() {
		assert.Equal(t, i, c.Index())
		back, err := SentimentFromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
}

func TestSentimentFromIndex_OutOfRange(t *testing.T) {
	_, err := SentimentFromIndex(2)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		lenient bool
		want    Sentiment
		wantErr bool
	}{
		{"positive", "positive", false, SentimentPositive, false},
		{"negative", "negative", false, SentimentNegative, false},
		{"mixed case and spaces", "  Positive ", false, SentimentPositive, false},
		{"unknown strict", "neutral", false, "", true},
		{"empty strict", "", false, "", true},
		{"unknown lenient", "neutral", true, SentimentNegative, false},
		{"numeric lenient", "1", true, SentimentNegative, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSentiment(tt.raw, tt.lenient)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabels(t *testing.T) {
	reviews := []Review{
		{Text: "a", Sentiment: SentimentPositive},
		{Text: "b", Sentiment: SentimentNegative},
		{Text: "c", Sentiment: SentimentPositive},
	}
	assert.Equal(t, []int{1, 0, 1}, Labels(reviews))
}

func TestSummarise(t *testing.T) {
	reviews := []Review{
		{Sentiment: SentimentPositive},
		{Sentiment: SentimentNegative},
		{Sentiment: SentimentPositive},
		{Sentiment: SentimentNegative},
	}
	s := Summarise("data.csv", reviews)
	assert.Equal(t, "data.csv", s.Path)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Positive)
	assert.Equal(t, 2, s.Negative)
	assert.True(t, s.Balanced())

	skewed := Summarise("", append(reviews, Review{Sentiment: SentimentPositive}, Review{Sentiment: SentimentPositive}))
	assert.False(t, skewed.Balanced())
	assert.False(t, DatasetSummary{}.Balanced())
}
