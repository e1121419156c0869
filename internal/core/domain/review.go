package domain

import (
	"fmt"
	"strings"
)

// Sentiment is the polarity label attached to a review.
type Sentiment string

// Available sentiment labels.
const (
	// SentimentNegative is class index 0.
	SentimentNegative Sentiment = "negative"

	// SentimentPositive is class index 1.
	SentimentPositive Sentiment = "positive"
)

// NumClasses is the number of sentiment classes.
const NumClasses = 2

// Classes returns the labels in class-index order (negative, positive).
// Confusion matrices and probability vectors use this order.
func Classes() []Sentiment {
	return []Sentiment{SentimentNegative, SentimentPositive}
}

// IsValid returns true if the sentiment is recognised.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentNegative, SentimentPositive:
		return true
	default:
		return false
	}
}

// Index returns the class index (0 = negative, 1 = positive).
// Unknown labels map to -1.
func (s Sentiment) Index() int {
	switch s {
	case SentimentNegative:
		return 0
	case SentimentPositive:
		return 1
	default:
		return -1
	}
}

// String returns the string representation.
func (s Sentiment) String() string {
	return string(s)
}

// SentimentFromIndex maps a class index back to its label.
func SentimentFromIndex(i int) (Sentiment, error) {
	switch i {
	case 0:
		return SentimentNegative, nil
	case 1:
		return SentimentPositive, nil
	default:
		return "", fmt.Errorf("%w: class index %d", ErrInvalidInput, i)
	}
}

// ParseSentiment converts a raw dataset label to a Sentiment.
// Labels are trimmed and compared case-insensitively.
// When lenient is true any label other than "positive" becomes negative;
// otherwise unknown labels are rejected.
func ParseSentiment(raw string, lenient bool) (Sentiment, error) {
	s := Sentiment(strings.ToLower(strings.TrimSpace(raw)))
	if s.IsValid() {
		return s, nil
	}
	if lenient {
		return SentimentNegative, nil
	}
	return "", fmt.Errorf("%w: unrecognised sentiment label %q", ErrInvalidInput, raw)
}

// Review is a single labelled dataset row. It is immutable once loaded.
type Review struct {
	// Text is the raw review text.
	Text string

	// Sentiment is the gold label.
	Sentiment Sentiment
}

// Labels returns the class indices of the reviews, in order.
func Labels(reviews []Review) []int {
	labels := make([]int, len(reviews))
	for i := range reviews {
		labels[i] = reviews[i].Sentiment.Index()
	}
	return labels
}

// DatasetSummary describes the dataset a run was trained on.
type DatasetSummary struct {
	// Path is where the dataset was read from.
	Path string

	// Total is the number of reviews.
	Total int

	// Positive is the number of positive reviews.
	Positive int

	// Negative is the number of negative reviews.
	Negative int

	// TrainSize is the number of reviews in the training split.
	TrainSize int

	// TestSize is the number of reviews in the held-out split.
	TestSize int
}

// Summarise counts class balance for a set of reviews.
func Summarise(path string, reviews []Review) DatasetSummary {
	summary := DatasetSummary{Path: path, Total: len(reviews)}
	for i := range reviews {
		switch reviews[i].Sentiment {
		case SentimentPositive:
			summary.Positive++
		case SentimentNegative:
			summary.Negative++
		}
	}
	return summary
}

// Balanced reports whether neither class exceeds 60% of the dataset.
func (d DatasetSummary) Balanced() bool {
	if d.Total == 0 {
		return false
	}
	major := d.Positive
	if d.Negative > major {
		major = d.Negative
	}
	return float64(major)/float64(d.Total) <= 0.6
}
