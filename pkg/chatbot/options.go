package chatbot

import (
	"log/slog"
	"path/filepath"
)

// Classifier backends accepted by WithBackend.
const (
	BackendBERT    = "bert"
	BackendKeyword = "keyword"
)

type options struct {
	modelDir    string
	modelPath   string
	vocabPath   string
	runtimeLib  string
	labelsPath  string
	intentsPath string
	backend     string
	classifier  Classifier
	threshold   float64
	lowercase   bool
	logger      *slog.Logger
	pick        func(n int) int
}

// Option configures a Bot.
type Option func(*options)

// WithModelDir sets the directory holding model.onnx and vocab.txt.
// Default: "models".
func WithModelDir(dir string) Option {
	return func(o *options) { o.modelDir = dir }
}

// WithModelPaths sets the ONNX model and WordPiece vocabulary explicitly,
// overriding WithModelDir.
func WithModelPaths(model, vocab string) Option {
	return func(o *options) {
		o.modelPath = model
		o.vocabPath = vocab
	}
}

// WithRuntimeLibrary points at the ONNX Runtime shared library. By default
// it is looked up next to the model.
func WithRuntimeLibrary(path string) Option {
	return func(o *options) { o.runtimeLib = path }
}

// WithLabelsPath sets the label vocabulary file. Default: "data/labels.json".
func WithLabelsPath(path string) Option {
	return func(o *options) { o.labelsPath = path }
}

// WithIntentsPath sets the intent catalog file. Default: "data/intents.json".
func WithIntentsPath(path string) Option {
	return func(o *options) { o.intentsPath = path }
}

// WithBackend selects the built-in classifier: "bert" (default) or "keyword".
// The keyword backend matches against intent patterns and needs no model.
func WithBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithClassifier supplies a classifier directly, bypassing the built-in
// backends and the model files. The Bot does not close it.
func WithClassifier(c Classifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithConfidenceThreshold makes predictions scoring below t resolve to no
// intent, which yields the fallback reply. 0 (default) accepts every
// prediction.
func WithConfidenceThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// WithTokenizerLowercase controls lowercasing and accent stripping in the
// BERT tokenizer. Must match how the model was trained. Default: true.
func WithTokenizerLowercase(lower bool) Option {
	return func(o *options) { o.lowercase = lower }
}

// WithLogger sets the logger for load warnings and resolution diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPicker replaces the uniform random choice among an intent's responses.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(o *options) { o.pick = pick }
}

func defaultOptions() options {
	return options{
		labelsPath:  filepath.Join("data", "labels.json"),
		intentsPath: filepath.Join("data", "intents.json"),
		backend:     BackendBERT,
		lowercase:   true,
		logger:      slog.Default(),
	}
}

// modelPaths resolves the model and vocabulary paths. Explicit paths win
// over the model directory.
func (o options) modelPaths() (model, vocab string) {
	if o.modelPath != "" {
		return o.modelPath, o.vocabPath
	}
	dir := o.modelDir
	if dir == "" {
		dir = "models"
	}
	return filepath.Join(dir, "model.onnx"), filepath.Join(dir, "vocab.txt")
}
