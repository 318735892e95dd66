// Package bert is the production classifier backend: a fine-tuned BERT
// sequence-classification model exported to ONNX.
package bert

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/pesanmasa/chatbot/internal/engine/classifier"
)

type options struct {
	lowercase bool
	libPath   string
	threads   int
}

// Option configures a Classifier.
type Option func(*options)

// WithLowercase selects uncased (true, default) or cased tokenization.
func WithLowercase(lower bool) Option {
	return func(o *options) { o.lowercase = lower }
}

// WithSharedLibrary sets the path of the ONNX Runtime shared library.
// Default: libonnxruntime.so next to the model file.
func WithSharedLibrary(path string) Option {
	return func(o *options) { o.libPath = path }
}

// WithThreads sets intra-op parallelism. Default: 4.
func WithThreads(n int) Option {
	return func(o *options) { o.threads = n }
}

// Classifier runs tokenize → ONNX inference → argmax over logits.
type Classifier struct {
	session *onnxSession
	tok     *tokenizer
}

var _ classifier.Classifier = (*Classifier)(nil)

// New loads the ONNX model and the WordPiece vocabulary.
func New(modelPath, vocabPath string, opts ...Option) (*Classifier, error) {
	o := options{lowercase: true, threads: 4}
	for _, opt := range opts {
		opt(&o)
	}
	if o.libPath == "" {
		o.libPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}

	tok, err := newTokenizer(vocabPath, o.lowercase)
	if err != nil {
		return nil, fmt.Errorf("bert: %w", err)
	}

	sess, err := newONNXSession(modelPath, o.libPath, o.threads)
	if err != nil {
		return nil, fmt.Errorf("bert: %w", err)
	}

	return &Classifier{session: sess, tok: tok}, nil
}

// Classify returns the argmax class and its softmax probability.
func (c *Classifier) Classify(text string) (classifier.Prediction, error) {
	logits, err := c.session.infer(c.tok.encode(text))
	if err != nil {
		return classifier.Prediction{}, fmt.Errorf("bert: %w", err)
	}
	best := argmax(logits)
	return classifier.Prediction{
		Index:      best,
		Confidence: softmax(logits)[best],
	}, nil
}

// NumLabels returns the width of the model's classification head.
func (c *Classifier) NumLabels() int {
	return int(c.session.numLabels)
}

// Close releases ONNX Runtime resources.
func (c *Classifier) Close() error {
	if c.session != nil {
		return c.session.close()
	}
	return nil
}

func argmax(xs []float32) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

func softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxLogit := float64(logits[argmax(logits)])
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
