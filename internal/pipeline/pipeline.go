package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pesanmasa/chatbot/internal/engine"
	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/output"
)

// Handler answers one utterance against a conversation log.
// *engine.Engine satisfies it.
type Handler interface {
	Handle(log model.ConversationLog, text string) (model.ConversationLog, engine.Reply)
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithClock sets the time source used for transcript timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger for transcript failures. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session owns one user's conversation: it feeds utterances to a handler,
// keeps the resulting log, and records each exchange to a transcript.
type Session struct {
	id      string
	handler Handler
	out     output.Output
	now     func() time.Time
	logger  *slog.Logger

	mu  sync.Mutex
	log model.ConversationLog
}

// New starts an empty session. out may be nil, in which case no transcript
// is written.
func New(h Handler, out output.Output, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		handler: h,
		out:     out,
		now:     time.Now,
		logger:  slog.Default(),
		log:     model.NewConversationLog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session id stamped on every transcript record.
func (s *Session) ID() string { return s.id }

// Log returns the conversation so far. The returned log is a value and is
// not affected by later turns.
func (s *Session) Log() model.ConversationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}

// Submit handles one utterance. ok is false when the input was empty and
// nothing was said. A transcript failure is returned as err but the turn
// still counts: the log is updated and reply is valid.
func (s *Session) Submit(ctx context.Context, text string) (reply string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	next, r := s.handler.Handle(s.log, text)
	s.log = next
	s.mu.Unlock()

	if !r.Handled {
		return "", false, nil
	}
	if s.out == nil {
		return r.Text, true, nil
	}

	ex := model.Exchange{
		SessionID:  s.id,
		Timestamp:  s.now().UTC(),
		Utterance:  text,
		Response:   r.Text,
		Tag:        r.Tag,
		Confidence: r.Confidence,
		Fallback:   r.Fallback,
	}
	if r.Err != nil {
		ex.Error = r.Err.Error()
	}
	if err := s.out.Write(ctx, ex); err != nil {
		return r.Text, true, fmt.Errorf("pipeline output: %w", err)
	}
	return r.Text, true, nil
}

// Stream submits every utterance read from in until the channel closes or
// ctx is cancelled. onReply, if set, sees the log after each answered turn
// along with the reply. Transcript failures are logged and do not stop the
// conversation; they are returned joined once the stream ends.
func (s *Session) Stream(ctx context.Context, in <-chan string, onReply func(model.ConversationLog, string)) error {
	var errs []error
	for {
		select {
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		case text, open := <-in:
			if !open {
				return errors.Join(errs...)
			}
			reply, ok, err := s.Submit(ctx, text)
			if err != nil {
				if ctx.Err() != nil {
					return errors.Join(append(errs, ctx.Err())...)
				}
				s.logger.Warn("transcript write failed", "session", s.id, "error", err)
				errs = append(errs, err)
			}
			if ok && onReply != nil {
				onReply(s.Log(), reply)
			}
		}
	}
}

// Close closes the transcript output.
func (s *Session) Close() error {
	if s.out == nil {
		return nil
	}
	return s.out.Close()
}
