package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/logger"
)

// trainAndEvaluate fits one model spec on the training split and scores it
// on the test split. Failures are captured in the returned result rather
// than returned, so one broken model does not stop the comparison. The
// fitted classifier is nil when the result is failed.
func trainAndEvaluate(
	ctx context.Context,
	factory driven.ClassifierFactory,
	spec domain.ModelSpec,
	trainX domain.FeatureMatrix, trainY []int,
	testX domain.FeatureMatrix, testY []int,
) (driven.Classifier, domain.ModelResult) {
	start := time.Now()
	result := domain.ModelResult{
		Name:   spec.Name,
		Kind:   spec.Kind,
		Params: spec.Params,
	}

	model, err := factory.Build(spec.Kind, spec.Params)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return nil, result
	}
	result.Params = model.Params()

	if err := model.Fit(ctx, trainX, trainY); err != nil {
		result.Err = fmt.Errorf("fitting %s: %w", spec.Name, err)
		result.Duration = time.Since(start)
		return nil, result
	}

	eval, err := evaluateModel(model, testX, testY)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = fmt.Errorf("evaluating %s: %w", spec.Name, err)
		return nil, result
	}
	result.Evaluation = eval
	_, result.SupportsProba = model.(driven.ProbabilisticClassifier)

	logger.Info("%s: accuracy %.4f (%s)", spec.Name, eval.Accuracy, result.Duration.Round(time.Millisecond))
	return model, result
}

// evaluateModel predicts X and compares against y.
func evaluateModel(model driven.Classifier, X domain.FeatureMatrix, y []int) (domain.Evaluation, error) {
	predicted, err := model.Predict(X)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return domain.NewEvaluation(y, predicted)
}
