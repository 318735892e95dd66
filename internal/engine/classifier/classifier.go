// Package classifier defines the text classification capability the intent
// resolver depends on, plus a model-free keyword backend.
package classifier

import "errors"

// ErrNoMatch is returned by backends that can decline to classify an input.
var ErrNoMatch = errors.New("classifier: no matching intent")

// Prediction is the outcome of classifying one utterance.
type Prediction struct {
	Index      int     // most likely class index
	Confidence float64 // backend score in [0, 1]; meaning depends on the backend
}

// Classifier maps text to a single class index. Implementations must be safe
// to call from multiple goroutines if the host shares them between sessions.
type Classifier interface {
	Classify(text string) (Prediction, error)
}

// Dimensioned is implemented by classifiers that know their output size.
// It is compared against the label vocabulary at startup.
type Dimensioned interface {
	NumLabels() int
}

// Func adapts a plain function to the Classifier interface.
type Func func(text string) (Prediction, error)

// Classify calls f(text).
func (f Func) Classify(text string) (Prediction, error) {
	return f(text)
}
