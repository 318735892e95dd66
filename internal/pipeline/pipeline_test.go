package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pesanmasa/chatbot/internal/engine"
	"github.com/pesanmasa/chatbot/internal/model"
)

// echoHandler answers every non-blank utterance with its upper-cased text.
// Utterances equal to failOn are answered with the fallback and an error.
type echoHandler struct {
	failOn string
}

func (h echoHandler) Handle(log model.ConversationLog, text string) (model.ConversationLog, engine.Reply) {
	if strings.TrimSpace(text) == "" {
		return log, engine.Reply{}
	}
	r := engine.Reply{Text: strings.ToUpper(text), Tag: "echo", Confidence: 1, Handled: true}
	if text == h.failOn {
		r = engine.Reply{Text: engine.FallbackResponse, Fallback: true, Handled: true, Err: errors.New("no match")}
	}
	return log.Append(model.UserTurn(text), model.BotTurn(r.Text)), r
}

type recordingOutput struct {
	mu     sync.Mutex
	got    []model.Exchange
	err    error
	closed bool
}

func (o *recordingOutput) Write(_ context.Context, ex model.Exchange) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, ex)
	return o.err
}

func (o *recordingOutput) Close() error {
	o.closed = true
	return nil
}

var fixedTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.FixedZone("WIB", 7*3600))

func newTestSession(out *recordingOutput, h Handler) *Session {
	return New(h, out, WithID("sesi-1"), WithClock(func() time.Time { return fixedTime }))
}

func TestSubmitRecordsExchange(t *testing.T) {
	out := &recordingOutput{}
	s := newTestSession(out, echoHandler{})

	reply, ok, err := s.Submit(context.Background(), "halo")
	if err != nil || !ok {
		t.Fatalf("Submit = %q, %v, %v", reply, ok, err)
	}
	if reply != "HALO" {
		t.Fatalf("reply = %q", reply)
	}
	if s.Log().Len() != 2 {
		t.Fatalf("log len = %d, want 2", s.Log().Len())
	}

	if len(out.got) != 1 {
		t.Fatalf("got %d exchanges", len(out.got))
	}
	ex := out.got[0]
	if ex.SessionID != "sesi-1" || ex.Utterance != "halo" || ex.Response != "HALO" || ex.Tag != "echo" {
		t.Fatalf("exchange = %+v", ex)
	}
	if !ex.Timestamp.Equal(fixedTime) || ex.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp = %v, want %v in UTC", ex.Timestamp, fixedTime)
	}
}

func TestSubmitEmptyIsNoOp(t *testing.T) {
	out := &recordingOutput{}
	s := newTestSession(out, echoHandler{})

	for _, in := range []string{"", "   ", "\t\n"} {
		reply, ok, err := s.Submit(context.Background(), in)
		if ok || reply != "" || err != nil {
			t.Fatalf("Submit(%q) = %q, %v, %v", in, reply, ok, err)
		}
	}
	if s.Log().Len() != 0 || len(out.got) != 0 {
		t.Fatalf("empty input changed state: log=%d exchanges=%d", s.Log().Len(), len(out.got))
	}
}

func TestSubmitRecordsFallbackError(t *testing.T) {
	out := &recordingOutput{}
	s := newTestSession(out, echoHandler{failOn: "???"})

	reply, _, _ := s.Submit(context.Background(), "???")
	if reply != engine.FallbackResponse {
		t.Fatalf("reply = %q", reply)
	}
	ex := out.got[0]
	if !ex.Fallback || ex.Error != "no match" || ex.Tag != "" {
		t.Fatalf("exchange = %+v", ex)
	}
}

func TestSubmitOutputFailureKeepsTurn(t *testing.T) {
	out := &recordingOutput{err: errors.New("disk full")}
	s := newTestSession(out, echoHandler{})

	reply, ok, err := s.Submit(context.Background(), "halo")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v", err)
	}
	if !ok || reply != "HALO" {
		t.Fatalf("turn lost: %q %v", reply, ok)
	}
	if s.Log().Len() != 2 {
		t.Fatalf("log len = %d", s.Log().Len())
	}
}

func TestSubmitCancelled(t *testing.T) {
	s := newTestSession(&recordingOutput{}, echoHandler{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := s.Submit(ctx, "halo"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if s.Log().Len() != 0 {
		t.Fatal("cancelled submit changed the log")
	}
}

func TestNilOutput(t *testing.T) {
	s := New(echoHandler{}, nil)
	if s.ID() == "" {
		t.Fatal("expected generated id")
	}
	if _, ok, err := s.Submit(context.Background(), "halo"); !ok || err != nil {
		t.Fatalf("Submit: %v %v", ok, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestGeneratedIDsDiffer(t *testing.T) {
	a, b := New(echoHandler{}, nil), New(echoHandler{}, nil)
	if a.ID() == b.ID() {
		t.Fatalf("two sessions share id %q", a.ID())
	}
}

func TestLogSnapshotIsStable(t *testing.T) {
	s := newTestSession(&recordingOutput{}, echoHandler{})
	s.Submit(context.Background(), "satu")
	snap := s.Log()
	s.Submit(context.Background(), "dua")

	if snap.Len() != 2 {
		t.Fatalf("snapshot grew to %d", snap.Len())
	}
	if s.Log().Len() != 4 {
		t.Fatalf("log len = %d", s.Log().Len())
	}
}

func TestStreamUntilClosed(t *testing.T) {
	out := &recordingOutput{}
	s := newTestSession(out, echoHandler{})

	in := make(chan string, 4)
	in <- "satu"
	in <- " "
	in <- "dua"
	close(in)

	var replies []string
	var lens []int
	err := s.Stream(context.Background(), in, func(log model.ConversationLog, reply string) {
		replies = append(replies, reply)
		lens = append(lens, log.Len())
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if strings.Join(replies, ",") != "SATU,DUA" {
		t.Fatalf("replies = %v", replies)
	}
	if lens[0] != 2 || lens[1] != 4 {
		t.Fatalf("log lengths = %v", lens)
	}
	if len(out.got) != 2 {
		t.Fatalf("exchanges = %d", len(out.got))
	}
}

func TestStreamCancel(t *testing.T) {
	s := newTestSession(&recordingOutput{}, echoHandler{})
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan string)

	answered := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.Stream(ctx, in, func(model.ConversationLog, string) { answered <- struct{}{} })
	}()
	in <- "halo"
	<-answered
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
	if s.Log().Len() != 2 {
		t.Fatalf("log len = %d", s.Log().Len())
	}
}

func TestStreamContinuesPastOutputErrors(t *testing.T) {
	out := &recordingOutput{err: errors.New("webhook down")}
	s := newTestSession(out, echoHandler{})

	in := make(chan string, 2)
	in <- "satu"
	in <- "dua"
	close(in)

	err := s.Stream(context.Background(), in, nil)
	if err == nil || !strings.Contains(err.Error(), "webhook down") {
		t.Fatalf("err = %v", err)
	}
	if s.Log().Len() != 4 {
		t.Fatalf("log len = %d, want 4", s.Log().Len())
	}
}

func TestCloseClosesOutput(t *testing.T) {
	out := &recordingOutput{}
	s := newTestSession(out, echoHandler{})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !out.closed {
		t.Fatal("output not closed")
	}
}
