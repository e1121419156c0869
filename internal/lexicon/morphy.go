package lexicon

import (
	"strings"

	"github.com/aaaton/golem/v4"
)

// minStripLen is the shortest word the suffix rules will touch.
// Shorter words ("gas", "bus", "was") pass through unchanged.
const minStripLen = 4

// Dictionary reports whether a word is a base form worth keeping as a lemma.
type Dictionary interface {
	IsLemma(word string) bool
}

// Morphy lemmatizes English nouns the way WordNet's morphy does: an
// exception table first, then suffix detachment, keeping only candidates
// the dictionary knows.
type Morphy struct {
	exceptions map[string]string
	dict       Dictionary
}

// NewMorphy creates a lemmatizer. The exceptions map is not copied and
// must not be modified afterwards. A nil dictionary accepts every
// detached stem.
func NewMorphy(exceptions map[string]string, dict Dictionary) *Morphy {
	if exceptions == nil {
		exceptions = map[string]string{}
	}
	return &Morphy{exceptions: exceptions, dict: dict}
}

// detachment is a suffix rewrite, applied when the word ends in suffix.
type detachment struct {
	suffix      string
	replacement string
}

// WordNet noun detachment rules. Every matching rule yields a candidate.
var nounRules = []detachment{
	{"s", ""},
	{"ses", "s"},
	{"ves", "f"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// protectedEndings are singular noun or adjective endings that look plural.
var protectedEndings = []string{"ss", "us", "is"}

// Lemma returns the singular form of w, or w itself when no known
// singular exists. Among several known candidates the shortest wins,
// ties going to the earlier rule.
func (m *Morphy) Lemma(w string) string {
	if lemma, ok := m.exceptions[w]; ok {
		return lemma
	}
	if len(w) < minStripLen {
		return w
	}
	for _, end := range protectedEndings {
		if strings.HasSuffix(w, end) {
			return w
		}
	}

	best := ""
	for _, rule := range nounRules {
		if !strings.HasSuffix(w, rule.suffix) {
			continue
		}
		stem := w[:len(w)-len(rule.suffix)] + rule.replacement
		if len(stem) < 2 || !m.known(stem) {
			continue
		}
		if best == "" || len(stem) < len(best) {
			best = stem
		}
	}
	if best == "" {
		return w
	}
	return best
}

func (m *Morphy) known(stem string) bool {
	return m.dict == nil || m.dict.IsLemma(stem)
}

// golemDictionary accepts words that golem lists as a base form.
type golemDictionary struct {
	lemmatizer *golem.Lemmatizer
}

// NewGolemDictionary wraps a golem lemmatizer as a Dictionary.
func NewGolemDictionary(l *golem.Lemmatizer) Dictionary {
	return golemDictionary{lemmatizer: l}
}

func (d golemDictionary) IsLemma(word string) bool {
	return d.lemmatizer.InDict(word) && d.lemmatizer.LemmaLower(word) == word
}
