package domain

// Prediction is the classification of a single review text.
type Prediction struct {
	// Sentiment is the predicted label.
	Sentiment Sentiment `json:"sentiment"`

	// Confidence is the probability of the predicted label.
	Confidence float64 `json:"confidence"`

	// ProbabilityPositive is P(positive).
	ProbabilityPositive float64 `json:"probability_positive"`

	// ProbabilityNegative is P(negative). The two probabilities sum to 1.
	ProbabilityNegative float64 `json:"probability_negative"`

	// Fallback is true when the text produced no known features and the
	// answer is the training majority class with prior probabilities.
	Fallback bool `json:"fallback,omitempty"`

	// ArtifactID identifies the model that answered.
	ArtifactID string `json:"artifact_id,omitempty"`
}

// NewPrediction builds a prediction from a class probability pair in
// class-index order. Probabilities are renormalised to sum to one; the
// predicted label is the argmax, ties favouring negative.
func NewPrediction(proba [NumClasses]float64) Prediction {
	neg, pos := proba[0], proba[1]
	if neg < 0 {
		neg = 0
	}
	if pos < 0 {
		pos = 0
	}
	sum := neg + pos
	if sum <= 0 {
		neg, pos = 0.5, 0.5
	} else {
		neg /= sum
		pos = 1 - neg
	}

	p := Prediction{
		ProbabilityPositive: pos,
		ProbabilityNegative: neg,
	}
	if pos > neg {
		p.Sentiment = SentimentPositive
		p.Confidence = pos
	} else {
		p.Sentiment = SentimentNegative
		p.Confidence = neg
	}
	return p
}
