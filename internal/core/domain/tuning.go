package domain

// CandidateScore is the cross-validated score of one grid combination.
type CandidateScore struct {
	// Params is the combination evaluated.
	Params Params `json:"params"`

	// FoldScores holds per-fold accuracy in fold order.
	FoldScores []float64 `json:"fold_scores,omitempty"`

	// MeanScore is the mean fold accuracy.
	MeanScore float64 `json:"mean_score"`

	// StdScore is the standard deviation of fold accuracy.
	StdScore float64 `json:"std_score"`

	// Err is set when any fold failed; the candidate is then skipped.
	Err error `json:"-"`

	// Error mirrors Err for serialisation.
	Error string `json:"error,omitempty"`
}

// Failed returns true if the candidate could not be scored.
func (c CandidateScore) Failed() bool {
	return c.Err != nil || c.Error != ""
}

// TuningResult is the outcome of a grid search.
type TuningResult struct {
	// Kind is the classifier family searched.
	Kind ModelKind `json:"kind"`

	// Folds is the cross-validation fold count.
	Folds int `json:"folds"`

	// Candidates holds every combination in enumeration order.
	Candidates []CandidateScore `json:"candidates"`

	// BestIndex points into Candidates.
	BestIndex int `json:"best_index"`

	// BestParams is the winning combination.
	BestParams Params `json:"best_params"`

	// BestScore is the winning mean CV accuracy.
	BestScore float64 `json:"best_score"`
}

// SelectBest returns the index of the first successful candidate with the
// highest mean score, or -1 if every candidate failed.
func SelectBest(candidates []CandidateScore) int {
	best := -1
	for i := range candidates {
		if candidates[i].Failed() {
			continue
		}
		if best < 0 || candidates[i].MeanScore > candidates[best].MeanScore {
			best = i
		}
	}
	return best
}
