// Package engine is the dialogue orchestrator: one utterance in, one canned
// reply out, both appended to the conversation log.
package engine

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/pesanmasa/chatbot/internal/engine/resolver"
	"github.com/pesanmasa/chatbot/internal/model"
)

// FallbackResponse is the reply used whenever no catalog entry applies.
const FallbackResponse = "Maaf, saya belum bisa menjawab pertanyaan itu."

// Resolver maps an utterance to an intent.
type Resolver interface {
	Resolve(text string) (resolver.Resolution, error)
}

// Catalog looks up the candidate replies of an intent.
type Catalog interface {
	ResponsesFor(tag string) ([]string, bool)
}

// Reply describes how a turn was answered.
type Reply struct {
	Text       string
	Tag        string  // resolved intent; empty when resolution failed
	Confidence float64 // classifier score, if any
	Fallback   bool    // FallbackResponse was used
	Handled    bool    // false when the input was empty and nothing happened
	Err        error   // resolution failure that led to the fallback
}

// Option configures an Engine.
type Option func(*Engine)

// WithPicker replaces the uniform random choice among candidate replies.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

// WithLogger sets the logger used for resolution diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine holds no per-session state; a single instance can serve any number
// of sessions as long as each call passes that session's log.
type Engine struct {
	resolver Resolver
	catalog  Catalog
	pick     func(n int) int
	logger   *slog.Logger
}

// New creates an Engine from a resolver and a catalog.
func New(res Resolver, cat Catalog, opts ...Option) *Engine {
	e := &Engine{
		resolver: res,
		catalog:  cat,
		pick:     rand.IntN,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn answers one utterance. Empty input leaves the log unchanged and
// yields no response. Otherwise the user turn and the bot turn are appended,
// in that order, and the bot's text is returned.
func (e *Engine) HandleTurn(log model.ConversationLog, text string) (model.ConversationLog, string) {
	next, reply := e.Handle(log, text)
	return next, reply.Text
}

// Handle is HandleTurn with diagnostics about how the reply was chosen.
func (e *Engine) Handle(log model.ConversationLog, text string) (model.ConversationLog, Reply) {
	if strings.TrimSpace(text) == "" {
		return log, Reply{}
	}

	res, err := e.resolver.Resolve(text)
	if errors.Is(err, resolver.ErrEmptyInput) {
		return log, Reply{}
	}

	var reply Reply
	if err != nil {
		e.logger.Debug("intent resolution failed, using fallback", "error", err)
		reply = Reply{Text: FallbackResponse, Fallback: true, Err: err}
	} else {
		reply = e.choose(res)
	}
	reply.Handled = true

	return log.Append(model.UserTurn(text), model.BotTurn(reply.Text)), reply
}

func (e *Engine) choose(res resolver.Resolution) Reply {
	reply := Reply{Tag: res.Tag, Confidence: res.Confidence}

	if res.Tag == resolver.Unresolved {
		e.logger.Debug("confidence below threshold, using fallback", "confidence", res.Confidence)
		reply.Text = FallbackResponse
		reply.Fallback = true
		return reply
	}

	responses, ok := e.catalog.ResponsesFor(res.Tag)
	if !ok || len(responses) == 0 {
		e.logger.Debug("no catalog entry for intent, using fallback", "tag", res.Tag)
		reply.Text = FallbackResponse
		reply.Fallback = true
		return reply
	}

	reply.Text = responses[e.pick(len(responses))]
	return reply
}
