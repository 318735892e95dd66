package multi

import (
	"context"
	"errors"

	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/output"
)

// Multi fans an exchange out to several transcripts. A failing transcript
// does not stop delivery to the rest. A Multi with no outputs discards
// everything, which is how "CHATBOT_TRANSCRIPT=none" is served.
type Multi struct {
	outputs []output.Output
}

// New returns a Multi over the non-nil outputs given.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Len reports how many outputs are attached.
func (m *Multi) Len() int { return len(m.outputs) }

func (m *Multi) Write(ctx context.Context, ex model.Exchange) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, ex); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
