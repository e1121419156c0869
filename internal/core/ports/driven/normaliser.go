package driven

// TextNormaliser turns raw review text into a cleaned, space-joined token string.
// Normalise must be deterministic: the same input and lexicon always give
// the same output. Empty output is valid.
type TextNormaliser interface {
	// Normalise cleans a single text.
	Normalise(text string) string

	// LexiconVersion identifies the stopword list and lemma rules in use.
	// It is stored with every artifact so predictions use compatible cleaning.
	LexiconVersion() string

	// Steps describes the cleaning steps, in order, for reports.
	Steps() []string
}
