package chatbot

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pesanmasa/chatbot/internal/engine"
	"github.com/pesanmasa/chatbot/internal/engine/catalog"
	"github.com/pesanmasa/chatbot/internal/engine/classifier"
	"github.com/pesanmasa/chatbot/internal/engine/classifier/bert"
	"github.com/pesanmasa/chatbot/internal/engine/resolver"
	"github.com/pesanmasa/chatbot/internal/engine/vocabulary"
	"github.com/pesanmasa/chatbot/internal/model"
)

// FallbackResponse is the reply used when no intent could be resolved.
const FallbackResponse = engine.FallbackResponse

// Log is an ordered conversation. The zero value is an empty log.
type Log = model.ConversationLog

// Turn is one entry of a Log.
type Turn = model.Turn

// Role tells who produced a Turn.
type Role = model.Role

// Turn roles.
const (
	RoleUser = model.RoleUser
	RoleBot  = model.RoleBot
)

// Intent is one catalog entry: a tag, example patterns and candidate
// responses.
type Intent = model.IntentRecord

// Prediction is a classifier's answer: a class index into the label
// vocabulary and a confidence in [0, 1].
type Prediction = classifier.Prediction

// Classifier maps text to a class index. Implementations must be safe for
// concurrent use if the Bot is shared.
type Classifier interface {
	Classify(text string) (Prediction, error)
}

// Reply describes how a turn was answered.
type Reply = engine.Reply

// NewLog returns an empty conversation log.
func NewLog() Log {
	return model.NewConversationLog()
}

// Bot is an FAQ chatbot. It is safe for concurrent use.
type Bot struct {
	engine  *engine.Engine
	catalog *catalog.Catalog
	vocab   *vocabulary.Vocabulary
	closer  io.Closer
	drift   []string
}

// New loads the label vocabulary, the intent catalog and the classifier.
// Any load failure is returned; a Bot is never half-initialized.
func New(opts ...Option) (*Bot, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.threshold < 0 || o.threshold > 1 {
		return nil, fmt.Errorf("chatbot: confidence threshold %v outside [0, 1]", o.threshold)
	}

	vocab, err := vocabulary.Load(o.labelsPath)
	if err != nil {
		return nil, fmt.Errorf("chatbot: %w", err)
	}
	cat, err := catalog.Load(o.intentsPath)
	if err != nil {
		return nil, fmt.Errorf("chatbot: %w", err)
	}

	cls, closer, err := o.buildClassifier(cat, vocab)
	if err != nil {
		return nil, fmt.Errorf("chatbot: %w", err)
	}

	if d, ok := cls.(classifier.Dimensioned); ok && d.NumLabels() != vocab.Len() {
		o.logger.Warn("classifier and label vocabulary disagree on class count",
			"classifier", d.NumLabels(), "labels", vocab.Len(), "labels_path", o.labelsPath)
	}

	b := &Bot{catalog: cat, vocab: vocab, closer: closer}
	b.drift = missingFromCatalog(vocab, cat)
	if len(b.drift) > 0 {
		o.logger.Warn("labels without catalog entries will get the fallback reply", "tags", b.drift)
	}
	if extra := missingFromVocabulary(vocab, cat); len(extra) > 0 {
		o.logger.Info("catalog intents the classifier can never predict", "tags", extra)
	}

	engOpts := []engine.Option{engine.WithLogger(o.logger)}
	if o.pick != nil {
		engOpts = append(engOpts, engine.WithPicker(o.pick))
	}
	b.engine = engine.New(resolver.New(cls, vocab, o.threshold), cat, engOpts...)

	o.logger.Debug("chatbot ready", "intents", cat.Len(), "labels", vocab.Len(), "backend", o.backendName())
	return b, nil
}

// Respond answers text and returns the extended log and the reply. Blank
// input returns log unchanged and an empty reply. The log passed in is
// never modified.
func (b *Bot) Respond(log Log, text string) (Log, string) {
	return b.engine.HandleTurn(log, text)
}

// Reply is Respond with details about how the reply was chosen.
func (b *Bot) Reply(log Log, text string) (Log, Reply) {
	return b.engine.Handle(log, text)
}

// Intents returns the catalog in file order.
func (b *Bot) Intents() []Intent {
	return b.catalog.Records()
}

// Labels returns the label vocabulary in class-index order.
func (b *Bot) Labels() []string {
	return b.vocab.Tags()
}

// Drift returns labels the classifier can predict that have no catalog
// entry. Turns resolving to them get FallbackResponse.
func (b *Bot) Drift() []string {
	return append([]string(nil), b.drift...)
}

// Close releases the model session, if the Bot opened one.
func (b *Bot) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (o options) backendName() string {
	if o.classifier != nil {
		return "custom"
	}
	return o.backend
}

func (o options) buildClassifier(cat *catalog.Catalog, vocab *vocabulary.Vocabulary) (classifier.Classifier, io.Closer, error) {
	if o.classifier != nil {
		return o.classifier, nil, nil
	}
	switch o.backend {
	case BackendBERT, "":
		modelPath, vocabPath := o.modelPaths()
		bopts := []bert.Option{bert.WithLowercase(o.lowercase)}
		if o.runtimeLib != "" {
			bopts = append(bopts, bert.WithSharedLibrary(o.runtimeLib))
		}
		c, err := bert.New(modelPath, vocabPath, bopts...)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case BackendKeyword:
		c, err := classifier.NewKeyword(cat.Records(), vocab)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", o.backend)
	}
}

func missingFromCatalog(vocab *vocabulary.Vocabulary, cat *catalog.Catalog) []string {
	var out []string
	for _, tag := range vocab.Tags() {
		if _, ok := cat.ResponsesFor(tag); !ok {
			out = append(out, tag)
		}
	}
	return out
}

func missingFromVocabulary(vocab *vocabulary.Vocabulary, cat *catalog.Catalog) []string {
	var out []string
	for _, tag := range cat.Tags() {
		if _, ok := vocab.Index(tag); !ok {
			out = append(out, tag)
		}
	}
	return out
}
