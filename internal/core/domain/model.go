package domain

// ModelKind identifies a classifier family.
type ModelKind string

// Available classifier families.
const (
	// ModelLogistic is L1/L2-regularised logistic regression.
	ModelLogistic ModelKind = "logistic"

	// ModelNaiveBayes is multinomial naive Bayes.
	ModelNaiveBayes ModelKind = "naive_bayes"

	// ModelLinearSVM is a linear support vector machine (hinge loss).
	// It produces no probability estimates.
	ModelLinearSVM ModelKind = "linear_svm"

	// ModelRandomForest is a bagged ensemble of CART trees.
	ModelRandomForest ModelKind = "random_forest"
)

// IsValid returns true if the model kind is recognised.
func (k ModelKind) IsValid() bool {
	switch k {
	case ModelLogistic, ModelNaiveBayes, ModelLinearSVM, ModelRandomForest:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ModelKind) String() string {
	return string(k)
}

// Description returns the display name for the family.
func (k ModelKind) Description() string {
	switch k {
	case ModelLogistic:
		return "Logistic Regression"
	case ModelNaiveBayes:
		return "Naive Bayes"
	case ModelLinearSVM:
		return "Support Vector Machine"
	case ModelRandomForest:
		return "Random Forest"
	default:
		return "Unknown"
	}
}

// AllModelKinds returns every supported family in comparison order.
func AllModelKinds() []ModelKind {
	return []ModelKind{ModelLogistic, ModelNaiveBayes, ModelLinearSVM, ModelRandomForest}
}

// ModelSpec names a classifier configuration to train.
type ModelSpec struct {
	// Name is the registry key, e.g. "Logistic Regression".
	Name string

	// Kind selects the classifier family.
	Kind ModelKind

	// Params overrides the family defaults.
	Params Params
}

// DefaultModelSpecs returns the four baseline models compared on every run.
func DefaultModelSpecs() []ModelSpec {
	return []ModelSpec{
		{Name: ModelLogistic.Description(), Kind: ModelLogistic, Params: Params{"max_iter": 1000}},
		{Name: ModelNaiveBayes.Description(), Kind: ModelNaiveBayes, Params: Params{}},
		{Name: ModelLinearSVM.Description(), Kind: ModelLinearSVM, Params: Params{"seed": 42}},
		{Name: ModelRandomForest.Description(), Kind: ModelRandomForest, Params: Params{"n_estimators": 100, "seed": 42}},
	}
}
