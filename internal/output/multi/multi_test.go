package multi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pesanmasa/chatbot/internal/model"
)

type recorder struct {
	got    []model.Exchange
	closed bool
	err    error
}

func (r *recorder) Write(_ context.Context, ex model.Exchange) error {
	r.got = append(r.got, ex)
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return r.err
}

func exchange(utterance string) model.Exchange {
	return model.Exchange{
		SessionID: "s-1",
		Timestamp: time.Now(),
		Utterance: utterance,
		Response:  "ok",
	}
}

func TestFanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := New(a, b)

	if err := m.Write(context.Background(), exchange("halo")); err != nil {
		t.Fatalf("write: %v", err)
	}
	for i, r := range []*recorder{a, b} {
		if len(r.got) != 1 || r.got[0].Utterance != "halo" {
			t.Errorf("output %d got %+v", i, r.got)
		}
	}
}

func TestFailureDoesNotBlockOthers(t *testing.T) {
	diskFull := errors.New("disk full")
	failing := &recorder{err: diskFull}
	healthy := &recorder{}
	m := New(failing, healthy)

	err := m.Write(context.Background(), exchange("halo"))
	if !errors.Is(err, diskFull) {
		t.Fatalf("err = %v, want disk full", err)
	}
	if len(healthy.got) != 1 {
		t.Fatalf("healthy output got %d exchanges", len(healthy.got))
	}
}

func TestCloseReachesEveryOutput(t *testing.T) {
	a := &recorder{err: errors.New("a")}
	b := &recorder{}
	m := New(a, b)

	if err := m.Close(); err == nil {
		t.Fatal("expected close error from a")
	}
	if !a.closed || !b.closed {
		t.Fatalf("closed: a=%v b=%v", a.closed, b.closed)
	}
}

func TestEmptyDiscards(t *testing.T) {
	m := New(nil)
	if m.Len() != 0 {
		t.Fatalf("Len = %d", m.Len())
	}
	if err := m.Write(context.Background(), exchange("halo")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
