package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/critic/internal/core/domain"
)

func TestOutput_PlainForBuffers(t *testing.T) {
	out := newOutput(new(bytes.Buffer))
	assert.False(t, out.styled)

	assert.Equal(t, "Models\n======", out.Heading("Models"))
	assert.Equal(t, "positive", out.Sentiment(domain.SentimentPositive))
	assert.Equal(t, "note", out.Muted("note"))
}

func TestOutput_TableContainsCells(t *testing.T) {
	out := newOutput(new(bytes.Buffer))

	rendered := out.Table([]string{"Model", "Accuracy"}, [][]string{
		{"Naive Bayes", "0.8500"},
		{"Linear SVM", "0.8900"},
	})

	assert.Contains(t, rendered, "Model")
	assert.Contains(t, rendered, "Naive Bayes")
	assert.Contains(t, rendered, "0.8900")
	assert.Contains(t, rendered, "+")
}

func TestOutput_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, isTerminal(new(bytes.Buffer)))
}
