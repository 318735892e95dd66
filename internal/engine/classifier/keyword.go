package classifier

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pesanmasa/chatbot/internal/engine/vocabulary"
	"github.com/pesanmasa/chatbot/internal/model"
)

var stopWords = map[string]bool{
	"saya": true, "aku": true, "ke": true, "di": true, "dan": true, "atau": true,
	"untuk": true, "dari": true, "dengan": true, "pada": true, "dalam": true,
	"yang": true, "adalah": true, "akan": true, "itu": true, "ini": true,
	"apa": true, "apakah": true, "ya": true, "dong": true, "sih": true,
	"the": true, "a": true, "an": true, "is": true, "to": true, "of": true,
	"do": true, "you": true, "i": true,
}

type keywordPattern struct {
	index  int
	tokens map[string]bool
}

// Keyword classifies by token overlap with the example patterns of each
// intent. It needs no model files and is used for development and tests.
type Keyword struct {
	patterns []keywordPattern
}

// NewKeyword builds a keyword classifier from catalog records. Class indices
// come from vocab; records whose tag the vocabulary does not know are skipped.
func NewKeyword(records []model.IntentRecord, vocab *vocabulary.Vocabulary) (*Keyword, error) {
	k := &Keyword{}
	for _, rec := range records {
		idx, ok := vocab.Index(rec.Tag)
		if !ok {
			continue
		}
		for _, p := range rec.Patterns {
			toks := tokenSet(p)
			if len(toks) == 0 {
				continue
			}
			k.patterns = append(k.patterns, keywordPattern{index: idx, tokens: toks})
		}
	}
	if len(k.patterns) == 0 {
		return nil, errors.New("classifier: no usable patterns for keyword classifier")
	}
	return k, nil
}

// Classify returns the intent whose best pattern has the highest Dice
// overlap with the text. Ties go to the pattern loaded first.
func (k *Keyword) Classify(text string) (Prediction, error) {
	toks := tokenSet(text)
	if len(toks) == 0 {
		return Prediction{}, fmt.Errorf("%w: no keywords in %q", ErrNoMatch, text)
	}

	best := Prediction{Index: -1}
	for _, p := range k.patterns {
		var overlap int
		for tok := range p.tokens {
			if toks[tok] {
				overlap++
			}
		}
		score := 2 * float64(overlap) / float64(len(p.tokens)+len(toks))
		if score > best.Confidence {
			best = Prediction{Index: p.index, Confidence: score}
		}
	}
	if best.Index < 0 {
		return Prediction{}, fmt.Errorf("%w: %q", ErrNoMatch, text)
	}
	return best, nil
}

// normalize lowercases, strips accents and replaces everything that is not a
// letter or digit with a space.
func normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		out = strings.ToLower(text)
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, out)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(normalize(text)) {
		if len(word) > 1 && !stopWords[word] {
			set[word] = true
		}
	}
	return set
}
