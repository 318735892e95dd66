package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pesanmasa/chatbot/internal/httpclient"
	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/output"
)

const (
	defaultBatchSize     = 20
	defaultFlushInterval = 5 * time.Second
)

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders adds headers to every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.clientOpts = append(o.clientOpts, httpclient.WithHeaders(h)) }
}

// WithToken authenticates every POST with a bearer token.
func WithToken(token string) Option {
	return func(o *Output) { o.clientOpts = append(o.clientOpts, httpclient.WithToken(token)) }
}

// WithBatchSize sets how many exchanges are sent per POST.
func WithBatchSize(n int) Option {
	return func(o *Output) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithFlushInterval bounds how long a partial batch waits.
func WithFlushInterval(d time.Duration) Option {
	return func(o *Output) { o.flushInterval = d }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.clientOpts = append(o.clientOpts, httpclient.WithTimeout(d)) }
}

// WithBackoff sets the first retry delay; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(o *Output) { o.clientOpts = append(o.clientOpts, httpclient.WithBackoff(d)) }
}

// WithOnError receives failures from timer-driven flushes, which have no
// caller to return to. The default logs a warning.
func WithOnError(f func(error)) Option {
	return func(o *Output) { o.onError = f }
}

// Output POSTs exchanges to an HTTP endpoint as JSON arrays. A batch is sent
// when it fills up, when the flush interval passes, or on Close. Rate
// limiting and server errors are retried with backoff.
type Output struct {
	client        *httpclient.Client
	clientOpts    []httpclient.Option
	verbosity     output.Verbosity
	batchSize     int
	flushInterval time.Duration
	onError       func(error)

	mu      sync.Mutex
	pending []model.Exchange
	timer   *time.Timer
}

// New returns a webhook Output for url.
func New(url string, verbosity output.Verbosity, opts ...Option) *Output {
	o := &Output{
		verbosity:     verbosity,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		onError: func(err error) {
			slog.Warn("transcript webhook flush failed", "error", err)
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.client = httpclient.New(url, o.clientOpts...)
	return o
}

func (o *Output) Write(ctx context.Context, ex model.Exchange) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = append(o.pending, output.FormatExchange(ex, o.verbosity))
	if len(o.pending) >= o.batchSize {
		return o.flushLocked(ctx)
	}
	if o.timer == nil {
		o.timer = time.AfterFunc(o.flushInterval, o.flushOnTimer)
	}
	return nil
}

// Close sends whatever is still pending.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushLocked(context.Background())
}

func (o *Output) flushOnTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.flushLocked(context.Background()); err != nil {
		o.onError(err)
	}
}

// flushLocked requires o.mu.
func (o *Output) flushLocked(ctx context.Context) error {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if len(o.pending) == 0 {
		return nil
	}
	batch := o.pending
	o.pending = nil

	if err := o.client.PostJSON(ctx, batch); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

