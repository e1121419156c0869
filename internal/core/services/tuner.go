package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/logger"
)

// Tuner runs an exhaustive cross-validated grid search.
type Tuner struct {
	factory driven.ClassifierFactory
	workers int
}

// NewTuner creates a tuner. workers bounds the number of folds fitted at
// once; values below 1 use runtime.NumCPU().
func NewTuner(factory driven.ClassifierFactory, workers int) *Tuner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Tuner{factory: factory, workers: workers}
}

// Workers returns the worker pool size.
func (t *Tuner) Workers() int {
	return t.workers
}

// foldData is one precomputed cross-validation split.
type foldData struct {
	trainX domain.FeatureMatrix
	trainY []int
	valX   domain.FeatureMatrix
	valY   []int
}

// foldJob scores one grid combination on one fold.
type foldJob struct {
	candidate int
	fold      int
}

// Search scores every combination of grid with stratified k-fold accuracy
// on X and y, then refits the best combination on all of X. A combination
// whose fold fails is skipped; the search only fails when no combination
// succeeds or ctx is cancelled.
func (t *Tuner) Search(
	ctx context.Context,
	kind domain.ModelKind,
	grid domain.ParamGrid,
	k int,
	X domain.FeatureMatrix,
	y []int,
) (*domain.TuningResult, driven.Classifier, error) {
	logger.Section("Hyperparameter Tuning")

	combinations := grid.Combinations()
	if len(combinations) == 0 {
		return nil, nil, fmt.Errorf("%w: empty parameter grid", domain.ErrInvalidInput)
	}
	if X.NumRows() != len(y) {
		return nil, nil, fmt.Errorf("%w: %d rows but %d labels", domain.ErrInvalidInput, X.NumRows(), len(y))
	}

	folds, err := StratifiedFolds(y, k)
	if err != nil {
		return nil, nil, fmt.Errorf("forming folds: %w", err)
	}
	data := make([]foldData, len(folds))
	for f, val := range folds {
		train := complement(len(y), val)
		data[f] = foldData{
			trainX: X.Subset(train),
			trainY: domain.SubsetLabels(y, train),
			valX:   X.Subset(val),
			valY:   domain.SubsetLabels(y, val),
		}
	}

	logger.Info("Fitting %d folds for each of %d candidates, totalling %d fits on %d workers",
		k, len(combinations), k*len(combinations), t.workers)

	scores := make([][]float64, len(combinations))
	for c := range scores {
		scores[c] = make([]float64, k)
	}
	failures := make([]error, len(combinations))
	var mu sync.Mutex

	jobs := make(chan foldJob)
	var wg sync.WaitGroup
	for w := 0; w < t.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				acc, err := t.scoreFold(ctx, kind, combinations[job.candidate], data[job.fold])
				mu.Lock()
				if err != nil {
					if failures[job.candidate] == nil {
						failures[job.candidate] = fmt.Errorf("fold %d: %w", job.fold, err)
					}
				} else {
					scores[job.candidate][job.fold] = acc
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for c := range combinations {
		for f := 0; f < k; f++ {
			select {
			case jobs <- foldJob{candidate: c, fold: f}:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	result := &domain.TuningResult{
		Kind:       kind,
		Folds:      k,
		Candidates: make([]domain.CandidateScore, len(combinations)),
		BestIndex:  -1,
	}
	for c, params := range combinations {
		candidate := domain.CandidateScore{Params: params}
		if failures[c] != nil {
			candidate.Err = failures[c]
			candidate.Error = failures[c].Error()
			logger.Warn("Candidate %s failed: %v", params.Format(), failures[c])
		} else {
			candidate.FoldScores = scores[c]
			candidate.MeanScore, candidate.StdScore = stat.PopMeanStdDev(scores[c], nil)
			logger.Debug("Candidate %s: mean %.4f std %.4f", params.Format(), candidate.MeanScore, candidate.StdScore)
		}
		result.Candidates[c] = candidate
	}

	best := domain.SelectBest(result.Candidates)
	if best < 0 {
		return result, nil, fmt.Errorf("%w: every grid candidate failed: %w",
			domain.ErrTraining, errors.Join(failures...))
	}
	result.BestIndex = best
	result.BestParams = result.Candidates[best].Params
	result.BestScore = result.Candidates[best].MeanScore
	logger.Info("Best parameters: %s (CV accuracy %.4f)", result.BestParams.Format(), result.BestScore)

	model, err := t.factory.Build(kind, result.BestParams)
	if err != nil {
		return result, nil, fmt.Errorf("building best candidate: %w", err)
	}
	if err := model.Fit(ctx, X, y); err != nil {
		return result, nil, fmt.Errorf("refitting best candidate: %w", err)
	}
	return result, model, nil
}

// scoreFold fits a fresh model on the fold's training rows and returns its
// accuracy on the validation rows.
func (t *Tuner) scoreFold(ctx context.Context, kind domain.ModelKind, params domain.Params, data foldData) (float64, error) {
	model, err := t.factory.Build(kind, params)
	if err != nil {
		return 0, err
	}
	if err := model.Fit(ctx, data.trainX, data.trainY); err != nil {
		return 0, err
	}
	eval, err := evaluateModel(model, data.valX, data.valY)
	if err != nil {
		return 0, err
	}
	return eval.Accuracy, nil
}
