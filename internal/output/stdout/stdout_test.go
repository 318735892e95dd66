package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/output"
)

func testExchange(utterance string) model.Exchange {
	return model.Exchange{
		SessionID:  "s-1",
		Timestamp:  time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Utterance:  utterance,
		Response:   "Pesanan bisa dilacak di menu Riwayat.",
		Tag:        "lacak_pesanan",
		Confidence: 0.74,
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Standard, false)
	for _, u := range []string{"lacak pesanan", "pesanan saya di mana"} {
		if err := out.Write(context.Background(), testExchange(u)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["utterance"] != "pesanan saya di mana" {
		t.Fatalf("utterance = %v", m["utterance"])
	}
	if m["tag"] != "lacak_pesanan" {
		t.Fatalf("tag = %v", m["tag"])
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Standard, true)
	if err := out.Write(context.Background(), testExchange("halo")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) < 3 {
		t.Fatalf("expected indented output, got %d lines", len(lines))
	}
}

func TestMinimalOmitsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Minimal, false)
	if err := out.Write(context.Background(), testExchange("halo")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.Contains(buf.String(), `"tag"`) || strings.Contains(buf.String(), `"confidence"`) {
		t.Fatalf("minimal output kept diagnostics: %s", buf.String())
	}
}

func TestNoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	out := NewWriter(&buf, output.Standard, false)
	ex := testExchange("ongkir < 10rb & gratis?")
	if err := out.Write(context.Background(), ex); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "ongkir < 10rb & gratis?") {
		t.Fatalf("utterance was escaped: %s", buf.String())
	}
}
