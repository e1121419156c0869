package tfidf

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/critic/internal/core/domain"
)

func fit(t *testing.T, e *Extractor, texts []string) *Vocabulary {
	t.Helper()
	v, err := e.Fit(context.Background(), texts)
	require.NoError(t, err)
	vocab, ok := v.(*Vocabulary)
	require.True(t, ok)
	return vocab
}

func TestAnalyse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lo, hi int
		want   []string
	}{
		{"unigrams", "great movie", 1, 1, []string{"great", "movie"}},
		{"uni and bigrams", "great movie ever", 1, 2, []string{"great", "movie", "ever", "great movie", "movie ever"}},
		{"bigrams only", "a great movie", 2, 2, []string{"great movie"}},
		{"single letters dropped", "a b cd", 1, 1, []string{"cd"}},
		{"lowercased", "GREAT", 1, 1, []string{"great"}},
		{"empty", "", 1, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyse(tt.text, tt.lo, tt.hi))
		})
	}
}

func TestFit_AlphabeticalIndices(t *testing.T) {
	vocab := fit(t, New(WithNgramRange(1, 1)), []string{"zebra apple", "mango apple"})

	assert.Equal(t, []string{"apple", "mango", "zebra"}, vocab.Terms())
	idx, ok := vocab.Index("mango")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestFit_SmoothIDF(t *testing.T) {
	vocab := fit(t, New(WithNgramRange(1, 1)), []string{"good film", "good plot", "bad film"})

	// n=3; df(good)=2, df(plot)=1
	assert.InDelta(t, math.Log(4.0/3.0)+1, vocab.IDF("good"), 1e-12)
	assert.InDelta(t, math.Log(4.0/2.0)+1, vocab.IDF("plot"), 1e-12)
	assert.Equal(t, 0.0, vocab.IDF("unknown"))
}

func TestFit_MaxFeatures(t *testing.T) {
	texts := []string{
		"great great great acting",
		"great plot acting",
		"boring plot",
	}
	vocab := fit(t, New(WithMaxFeatures(3), WithNgramRange(1, 1)), texts)

	// great=4, acting=2, plot=2, boring=1
	assert.Equal(t, []string{"acting", "great", "plot"}, vocab.Terms())
}

func TestFit_MaxFeatures_TieBreakAlphabetical(t *testing.T) {
	vocab := fit(t, New(WithMaxFeatures(2), WithNgramRange(1, 1)), []string{"delta charlie bravo alpha"})
	assert.Equal(t, []string{"alpha", "bravo"}, vocab.Terms())
}

func TestFit_Bigrams(t *testing.T) {
	vocab := fit(t, New(), []string{"not good", "very good"})
	assert.Equal(t, []string{"good", "not", "not good", "very", "very good"}, vocab.Terms())
}

func TestFit_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New().Fit(ctx, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = New().Fit(ctx, []string{"", "a"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = New(WithNgramRange(2, 1)).Fit(ctx, []string{"good film"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = New().Fit(cancelled, []string{"good film"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTransform_L2Normalised(t *testing.T) {
	vocab := fit(t, New(), []string{"good film", "bad film", "good good plot"})

	m := vocab.Transform([]string{"good film", "good good plot"})
	require.Equal(t, 2, m.NumRows())
	assert.Equal(t, vocab.Size(), m.Cols)
	for _, row := range m.Rows {
		assert.InDelta(t, 1.0, row.Norm(), 1e-12)
		for i := 1; i < len(row.Indices); i++ {
			assert.Less(t, row.Indices[i-1], row.Indices[i])
		}
	}
}

func TestTransform_RawTermFrequency(t *testing.T) {
	vocab := fit(t, New(WithNgramRange(1, 1)), []string{"good plot", "plot"})

	row := vocab.TransformOne("good good plot")
	goodIdx, _ := vocab.Index("good")
	plotIdx, _ := vocab.Index("plot")

	good := 2 * vocab.IDF("good")
	plot := vocab.IDF("plot")
	norm := math.Sqrt(good*good + plot*plot)
	assert.InDelta(t, good/norm, row.At(goodIdx), 1e-12)
	assert.InDelta(t, plot/norm, row.At(plotIdx), 1e-12)
}

func TestTransform_EmptyAndUnknown(t *testing.T) {
	vocab := fit(t, New(), []string{"good film"})

	assert.True(t, vocab.TransformOne("").IsZero())
	assert.True(t, vocab.TransformOne("completely unseen words").IsZero())
}

func TestTransform_VocabularyFrozen(t *testing.T) {
	vocab := fit(t, New(), []string{"good film"})
	before := vocab.Terms()

	vocab.Transform([]string{"brand new terms here", "good film sequel"})

	assert.Equal(t, before, vocab.Terms())
	assert.Equal(t, len(before), vocab.Size())
}

func TestTransform_Concurrent(t *testing.T) {
	vocab := fit(t, New(), []string{"good film", "bad film", "great plot"})
	want := vocab.TransformOne("good plot")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, vocab.TransformOne("good plot"))
		}()
	}
	wg.Wait()
}

func TestEncodeDecode_PreservesTransform(t *testing.T) {
	vocab := fit(t, New(), []string{"good film", "bad film", "great plot twist"})

	data, err := vocab.Encode()
	require.NoError(t, err)

	decoded, err := New().Decode(data)
	require.NoError(t, err)

	texts := []string{"good plot", "bad twist film"}
	assert.Equal(t, vocab.Transform(texts), decoded.Transform(texts))
	lo, hi := decoded.(*Vocabulary).NgramRange()
	assert.Equal(t, 1, lo)
	assert.Equal(t, 2, hi)
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"wrong version", `{"version":9,"ngram_range":[1,2],"terms":[],"idf":[]}`},
		{"bad range", `{"version":1,"ngram_range":[0,2],"terms":[],"idf":[]}`},
		{"length mismatch", `{"version":1,"ngram_range":[1,2],"terms":["a"],"idf":[]}`},
		{"unsorted", `{"version":1,"ngram_range":[1,2],"terms":["b","a"],"idf":[1,1]}`},
		{"zero idf", `{"version":1,"ngram_range":[1,2],"terms":["a"],"idf":[0]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.True(t, errors.Is(err, domain.ErrArtifactCorrupt))
		})
	}
}
