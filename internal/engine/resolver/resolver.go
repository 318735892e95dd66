// Package resolver turns an utterance into an intent tag by running the
// classifier and decoding its class index through the label vocabulary.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pesanmasa/chatbot/internal/engine/classifier"
	"github.com/pesanmasa/chatbot/internal/engine/vocabulary"
)

// Unresolved is returned as the tag when a prediction falls below the
// confidence threshold. It always leads to the fallback response, even when a
// catalog defines a record with the same tag.
const Unresolved = "UNRESOLVED"

// ErrEmptyInput is returned for empty or whitespace-only text. The classifier
// is not called.
var ErrEmptyInput = errors.New("resolver: empty input")

// ResolutionError reports that an utterance could not be mapped to a tag,
// either because the classifier failed or because it produced an index the
// vocabulary does not cover.
type ResolutionError struct {
	Text string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolver: cannot resolve %q: %v", e.Text, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolution is the outcome of resolving one utterance.
type Resolution struct {
	Tag        string
	Index      int
	Confidence float64
}

// Resolver wraps a classifier and the label vocabulary it was trained with.
type Resolver struct {
	classifier classifier.Classifier
	vocab      *vocabulary.Vocabulary
	threshold  float64
}

// New creates a Resolver. A threshold of 0 disables the confidence check.
func New(cls classifier.Classifier, vocab *vocabulary.Vocabulary, threshold float64) *Resolver {
	return &Resolver{classifier: cls, vocab: vocab, threshold: threshold}
}

// Resolve classifies text once and decodes the result.
func (r *Resolver) Resolve(text string) (Resolution, error) {
	if strings.TrimSpace(text) == "" {
		return Resolution{}, ErrEmptyInput
	}

	pred, err := r.classifier.Classify(text)
	if err != nil {
		return Resolution{}, &ResolutionError{Text: text, Err: err}
	}

	tag, err := r.vocab.Decode(pred.Index)
	if err != nil {
		return Resolution{}, &ResolutionError{Text: text, Err: err}
	}

	if r.threshold > 0 && pred.Confidence < r.threshold {
		tag = Unresolved
	}
	return Resolution{Tag: tag, Index: pred.Index, Confidence: pred.Confidence}, nil
}
