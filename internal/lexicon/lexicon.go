// Package lexicon holds the linguistic resources used to clean review text:
// a stopword list and a noun lemmatizer, bundled under a version string.
//
// The version is recorded with every trained artifact. Cleaning at
// prediction time must use the same lexicon the model was trained with.
package lexicon

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// EnglishVersion identifies the built-in English lexicon.
const EnglishVersion = "en-nltk-3.8-wn"

//go:embed stopwords_en.txt
var stopwordsEN []byte

//go:embed noun_exceptions_en.txt
var exceptionsEN []byte

// Lemmatizer reduces an inflected word to its base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Lexicon is an immutable set of cleaning resources.
type Lexicon struct {
	version    string
	stopwords  map[string]struct{}
	lemmatizer Lemmatizer
}

// New creates a lexicon. A nil lemmatizer leaves words unchanged.
func New(version string, stopwords []string, lemmatizer Lemmatizer) *Lexicon {
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[w] = struct{}{}
	}
	return &Lexicon{
		version:    version,
		stopwords:  set,
		lemmatizer: lemmatizer,
	}
}

// Version returns the lexicon identifier.
func (l *Lexicon) Version() string {
	return l.version
}

// IsStopword reports whether w is in the stopword list.
// Expects lowercase input.
func (l *Lexicon) IsStopword(w string) bool {
	_, ok := l.stopwords[w]
	return ok
}

// StopwordCount returns the size of the stopword list.
func (l *Lexicon) StopwordCount() int {
	return len(l.stopwords)
}

// Lemma returns the base form of w.
func (l *Lexicon) Lemma(w string) string {
	if l.lemmatizer == nil {
		return w
	}
	return l.lemmatizer.Lemma(w)
}

var (
	englishOnce sync.Once
	english     *Lexicon
)

// English returns the built-in English lexicon.
// The embedded resources are parsed once.
func English() *Lexicon {
	englishOnce.Do(func() {
		words, err := ParseWordList(bytes.NewReader(stopwordsEN))
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded stopwords: %v", err))
		}
		exc, err := ParseExceptions(bytes.NewReader(exceptionsEN))
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded exceptions: %v", err))
		}
		dict, err := golem.New(en.New())
		if err != nil {
			panic(fmt.Sprintf("lexicon: english dictionary: %v", err))
		}
		english = New(EnglishVersion, words, NewMorphy(exc, NewGolemDictionary(dict)))
	})
	return english
}

// ParseWordList reads one word per line. Blank lines and lines
// starting with '#' are skipped.
func ParseWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return words, nil
}

// ParseExceptions reads "<inflected> <lemma>" pairs, one per line.
func ParseExceptions(r io.Reader) (map[string]string, error) {
	exc := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("exceptions line %d: expected 2 fields, got %d", lineNo, len(fields))
		}
		exc[strings.ToLower(fields[0])] = strings.ToLower(fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading exceptions: %w", err)
	}
	return exc, nil
}
