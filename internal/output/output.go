package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/pesanmasa/chatbot/internal/model"
)

// Output is a destination for conversation transcripts. Each Write records
// one completed exchange.
type Output interface {
	Write(ctx context.Context, ex model.Exchange) error
	Close() error
}

// Verbosity controls how much of an exchange reaches a transcript.
type Verbosity int

const (
	// Standard keeps every field.
	Standard Verbosity = iota
	// Minimal keeps the session, timestamp, utterance and response only.
	Minimal
)

func (v Verbosity) String() string {
	switch v {
	case Minimal:
		return "minimal"
	default:
		return "standard"
	}
}

// ParseVerbosity maps a config value to a Verbosity. Empty means Standard.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return Standard, nil
	case "minimal":
		return Minimal, nil
	default:
		return Standard, fmt.Errorf("unknown transcript verbosity %q", s)
	}
}
