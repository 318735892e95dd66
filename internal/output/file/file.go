package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/output"
)

const (
	defaultBufSize    = 32 * 1024
	defaultMaxBackups = 5
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize rotates the transcript once it would grow past n bytes.
// Zero, the default, never rotates.
func WithMaxSize(n int64) Option {
	return func(o *Output) { o.maxSize = n }
}

// WithMaxBackups sets how many rotated transcripts are kept. Default: 5.
func WithMaxBackups(n int) Option {
	return func(o *Output) { o.maxBackups = n }
}

// WithBufSize sets the write buffer size.
func WithBufSize(n int) Option {
	return func(o *Output) { o.bufSize = n }
}

// Output appends exchanges as NDJSON to a file. Rotated transcripts are
// renamed to path.1, path.2 and so on, newest first.
type Output struct {
	mu         sync.Mutex
	path       string
	verbosity  output.Verbosity
	maxSize    int64
	maxBackups int
	bufSize    int

	f    *os.File
	w    *bufio.Writer
	size int64
}

// New opens path for appending, creating it and its directory if needed.
func New(path string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{
		path:       path,
		verbosity:  verbosity,
		maxBackups: defaultMaxBackups,
		bufSize:    defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file output: %w", err)
		}
	}
	if err := o.open(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Output) Write(_ context.Context, ex model.Exchange) error {
	line, err := json.Marshal(output.FormatExchange(ex, o.verbosity))
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	line = append(line, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()

	// A single oversized line still goes into a fresh file rather than
	// rotating forever.
	if o.maxSize > 0 && o.size > 0 && o.size+int64(len(line)) > o.maxSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}
	n, err := o.w.Write(line)
	o.size += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Flush pushes buffered lines to the file without closing it.
func (o *Output) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Flush()
}

func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return errors.Join(o.w.Flush(), o.f.Close())
}

func (o *Output) open() error {
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("file output: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: %w", err)
	}
	o.f, o.w, o.size = f, bufio.NewWriterSize(f, o.bufSize), info.Size()
	return nil
}

func (o *Output) rotate() error {
	if err := errors.Join(o.w.Flush(), o.f.Close()); err != nil {
		return err
	}
	if o.maxBackups > 0 {
		if err := os.Remove(o.backup(o.maxBackups)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		for i := o.maxBackups - 1; i >= 1; i-- {
			if err := os.Rename(o.backup(i), o.backup(i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		if err := os.Rename(o.path, o.backup(1)); err != nil {
			return err
		}
	} else if err := os.Truncate(o.path, 0); err != nil {
		return err
	}
	return o.open()
}

func (o *Output) backup(i int) string {
	return fmt.Sprintf("%s.%d", o.path, i)
}
