package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrediction(t *testing.T) {
	tests := []struct {
		name      string
		proba     [NumClasses]float64
		sentiment Sentiment
		pos       float64
	}{
		{"positive", [2]float64{0.2, 0.8}, SentimentPositive, 0.8},
		{"negative", [2]float64{0.9, 0.1}, SentimentNegative, 0.1},
		{"unnormalised", [2]float64{1, 3}, SentimentPositive, 0.75},
		{"tie favours negative", [2]float64{0.5, 0.5}, SentimentNegative, 0.5},
		{"all zero", [2]float64{0, 0}, SentimentNegative, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrediction(tt.proba)
			assert.Equal(t, tt.sentiment, p.Sentiment)
			assert.InDelta(t, tt.pos, p.ProbabilityPositive, 1e-12)
			assert.InDelta(t, 1.0, p.ProbabilityPositive+p.ProbabilityNegative, 1e-12)
			if p.Sentiment == SentimentPositive {
				assert.Equal(t, p.ProbabilityPositive, p.Confidence)
			} else {
				assert.Equal(t, p.ProbabilityNegative, p.Confidence)
			}
		})
	}
}
