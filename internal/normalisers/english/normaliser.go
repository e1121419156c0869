// Package english cleans English review text: lowercase, letters only,
// stopwords removed, nouns lemmatized.
package english

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/critic/internal/core/ports/driven"
	"github.com/custodia-labs/critic/internal/lexicon"
)

// Ensure Normaliser implements the interface.
var _ driven.TextNormaliser = (*Normaliser)(nil)

var (
	brTags  = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags = regexp.MustCompile(`<[^>]+>`)
)

// Normaliser implements the review cleaning pipeline.
// It is stateless after construction and safe for concurrent use.
type Normaliser struct {
	lex         *lexicon.Lexicon
	stripMarkup bool
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithMarkupStripping removes HTML tags before cleaning.
func WithMarkupStripping(on bool) Option {
	return func(n *Normaliser) {
		n.stripMarkup = on
	}
}

// New creates a normaliser over the given lexicon.
// A nil lexicon uses lexicon.English().
func New(lex *lexicon.Lexicon, opts ...Option) *Normaliser {
	if lex == nil {
		lex = lexicon.English()
	}
	n := &Normaliser{lex: lex}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// LexiconVersion returns the version of the injected lexicon.
func (n *Normaliser) LexiconVersion() string {
	return n.lex.Version()
}

// Steps describes the cleaning pipeline in order.
func (n *Normaliser) Steps() []string {
	steps := make([]string, 0, 7)
	if n.stripMarkup {
		steps = append(steps, "Stripped HTML markup")
	}
	return append(steps,
		"Converted text to lowercase",
		"Folded accented letters to their base letter",
		"Removed characters other than letters and whitespace",
		"Tokenized on whitespace",
		"Removed English stopwords ("+n.lex.Version()+")",
		"Lemmatized nouns",
	)
}

// Normalise cleans a single review.
func (n *Normaliser) Normalise(text string) string {
	if n.stripMarkup {
		text = stripMarkup(text)
	}

	text = foldMarks(strings.ToLower(text))
	text = strings.Map(keepLetterOrSpace, text)

	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if n.lex.IsStopword(w) {
			continue
		}
		kept = append(kept, n.lex.Lemma(w))
	}
	return strings.Join(kept, " ")
}

func stripMarkup(text string) string {
	text = brTags.ReplaceAllString(text, " ")
	text = allTags.ReplaceAllString(text, " ")
	return html.UnescapeString(text)
}

// foldMarks decomposes the text and drops combining marks, so "café"
// becomes "cafe". A fresh transformer is built per call because
// transform chains carry state.
func foldMarks(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// keepLetterOrSpace keeps ASCII letters and whitespace. Everything else,
// including digits and apostrophes, is removed without inserting a space.
func keepLetterOrSpace(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return r
	case unicode.IsSpace(r):
		return ' '
	default:
		return -1
	}
}
