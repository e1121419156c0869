package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(name string, acc float64, proba bool) ModelResult {
	return ModelResult{
		Name:          name,
		Evaluation:    Evaluation{Accuracy: acc},
		SupportsProba: proba,
	}
}

func TestResultRegistry_AddAndGet(t *testing.T) {
	r := NewResultRegistry()
	require.NoError(t, r.Add(result("a", 0.8, true)))
	require.NoError(t, r.Add(result("b", 0.7, true)))

	assert.Equal(t, 2, r.Len())
	got, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 0.8, got.Evaluation.Accuracy)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestResultRegistry_NoOverwrite(t *testing.T) {
	r := NewResultRegistry()
	require.NoError(t, r.Add(result("a", 0.8, true)))

	err := r.Add(result("a", 0.99, true))
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	got, _ := r.Get("a")
	assert.Equal(t, 0.8, got.Evaluation.Accuracy)
}

func TestResultRegistry_EmptyName(t *testing.T) {
	r := NewResultRegistry()
	assert.True(t, errors.Is(r.Add(ModelResult{}), ErrInvalidInput))
}

func TestResultRegistry_FailedEntry(t *testing.T) {
	r := NewResultRegistry()
	require.NoError(t, r.Add(ModelResult{Name: "broken", Err: errors.New("diverged")}))

	got, _ := r.Get("broken")
	assert.True(t, got.Failed())
	assert.Equal(t, "diverged", got.Error)
}

func TestResultRegistry_AllOrder(t *testing.T) {
	r := NewResultRegistry()
	for _, name := range []string{"z", "a", "m"} {
		require.NoError(t, r.Add(result(name, 0.5, true)))
	}
	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "z", all[0].Name)
	assert.Equal(t, "a", all[1].Name)
	assert.Equal(t, "m", all[2].Name)
}

func TestResultRegistry_Best(t *testing.T) {
	r := NewResultRegistry()
	require.NoError(t, r.Add(result("lr", 0.85, true)))
	require.NoError(t, r.Add(result("svm", 0.90, false)))
	require.NoError(t, r.Add(result("nb", 0.85, true)))
	require.NoError(t, r.Add(ModelResult{Name: "rf", Err: errors.New("boom")}))

	best, ok := r.Best(nil)
	require.True(t, ok)
	assert.Equal(t, "svm", best.Name)

	withProba, ok := r.Best(func(m ModelResult) bool { return m.SupportsProba })
	require.True(t, ok)
	assert.Equal(t, "lr", withProba.Name, "ties go to the first registered")
}

func TestResultRegistry_Best_AllFailed(t *testing.T) {
	r := NewResultRegistry()
	require.NoError(t, r.Add(ModelResult{Name: "x", Err: errors.New("boom")}))
	_, ok := r.Best(nil)
	assert.False(t, ok)
}

func TestSelectBest(t *testing.T) {
	candidates := []CandidateScore{
		{MeanScore: 0.7},
		{MeanScore: 0.9},
		{MeanScore: 0.95, Err: errors.New("failed fold")},
		{MeanScore: 0.9},
	}
	assert.Equal(t, 1, SelectBest(candidates))
	assert.Equal(t, -1, SelectBest([]CandidateScore{{Error: "x"}}))
	assert.Equal(t, -1, SelectBest(nil))
}
