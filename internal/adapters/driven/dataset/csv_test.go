package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/critic/internal/core/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestCSVReader_Read(t *testing.T) {
	path := writeCSV(t, "review,sentiment\n"+
		"\"Great movie, loved it\",positive\n"+
		"Terrible plot,negative\n"+
		"\"Multi\nline, \"\"quoted\"\"\", Positive \n")

	reviews, err := NewCSVReader().Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	assert.Equal(t, domain.Review{Text: "Great movie, loved it", Sentiment: domain.SentimentPositive}, reviews[0])
	assert.Equal(t, domain.SentimentNegative, reviews[1].Sentiment)
	assert.Equal(t, "Multi\nline, \"quoted\"", reviews[2].Text)
	assert.Equal(t, domain.SentimentPositive, reviews[2].Sentiment)
}

func TestCSVReader_ColumnsInAnyOrder(t *testing.T) {
	path := writeCSV(t, "\ufeffid,Sentiment,Review\n1,negative,Dull\n2,positive,Fun\n")

	reviews, err := NewCSVReader().Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Dull", reviews[0].Text)
	assert.Equal(t, domain.SentimentPositive, reviews[1].Sentiment)
}

func TestCSVReader_CustomColumns(t *testing.T) {
	path := writeCSV(t, "text,label\nNice,positive\n")

	reviews, err := NewCSVReaderFromSettings(domain.DatasetSettings{TextColumn: "text", LabelColumn: "label"}).
		Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Nice", reviews[0].Text)
}

func TestCSVReader_MissingColumns(t *testing.T) {
	path := writeCSV(t, "text,stars\nNice,5\n")

	_, err := NewCSVReader().Read(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "review, sentiment")
}

func TestCSVReader_LabelPolicy(t *testing.T) {
	path := writeCSV(t, "review,sentiment\nOk,positive\nMeh,neutral\n")

	_, err := NewCSVReader().Read(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "line 3")

	reviews, err := NewCSVReader(WithLenientLabels(true)).Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, domain.SentimentNegative, reviews[1].Sentiment)
}

func TestCSVReader_EmptyInputs(t *testing.T) {
	_, err := NewCSVReader().Read(context.Background(), writeCSV(t, ""))
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)

	reviews, err := NewCSVReader().Read(context.Background(), writeCSV(t, "review,sentiment\n"))
	require.NoError(t, err)
	assert.Empty(t, reviews)

	reviews, err = NewCSVReader().Read(context.Background(), writeCSV(t, "review,sentiment\n,positive\n"))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "", reviews[0].Text)
}

func TestCSVReader_MalformedRow(t *testing.T) {
	path := writeCSV(t, "review,sentiment\nonly one field\n")

	_, err := NewCSVReader().Read(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCSVReader_MissingFile(t *testing.T) {
	_, err := NewCSVReader().Read(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVReader_Cancelled(t *testing.T) {
	var b strings.Builder
	b.WriteString("review,sentiment\n")
	for i := 0; i < 10001; i++ {
		b.WriteString("Fine,positive\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVReader().decode(ctx, strings.NewReader(b.String()))
	assert.ErrorIs(t, err, context.Canceled)
}
