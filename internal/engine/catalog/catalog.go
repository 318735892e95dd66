// Package catalog holds the intent catalog: every intent tag with the canned
// responses the bot may reply with.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pesanmasa/chatbot/internal/engine/source"
	"github.com/pesanmasa/chatbot/internal/model"
)

// ErrLoad is returned when a catalog document is malformed or a record is
// invalid.
var ErrLoad = errors.New("catalog: load failed")

// DuplicateTagError reports two records sharing a tag. It matches ErrLoad
// under errors.Is.
type DuplicateTagError struct {
	Tag    string
	First  int
	Second int
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("catalog: duplicate tag %q in records %d and %d", e.Tag, e.First, e.Second)
}

func (e *DuplicateTagError) Unwrap() error {
	return ErrLoad
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type document struct {
	Intents []model.IntentRecord `json:"intents" yaml:"intents"`
}

// Catalog is an immutable set of intent records keyed by tag. Records keep
// the order they were loaded in for listing. Safe for concurrent reads.
type Catalog struct {
	records []model.IntentRecord
	byTag   map[string]int
}

// Load reads a catalog document from path. JSON and YAML share the shape
// {"intents": [{"tag": ..., "patterns": [...], "responses": [...]}]}.
func Load(path string) (*Catalog, error) {
	data, format, err := source.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Parse(data, format)
}

// Parse builds a catalog from a serialized document.
func Parse(data []byte, format source.Format) (*Catalog, error) {
	var doc document
	var err error
	switch format {
	case source.YAML:
		err = yaml.Unmarshal(data, &doc)
	case source.JSON:
		err = json.Unmarshal(data, &doc)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, format, err)
	}
	return New(doc.Intents...)
}

// New validates records and builds a catalog from them.
func New(records ...model.IntentRecord) (*Catalog, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no intents", ErrLoad)
	}
	c := &Catalog{
		records: make([]model.IntentRecord, 0, len(records)),
		byTag:   make(map[string]int, len(records)),
	}
	for i, rec := range records {
		rec.Tag = strings.TrimSpace(rec.Tag)
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", ErrLoad, i, describe(err))
		}
		for j, r := range rec.Responses {
			if strings.TrimSpace(r) == "" {
				return nil, fmt.Errorf("%w: record %d (%s): response %d is blank", ErrLoad, i, rec.Tag, j)
			}
		}
		if first, dup := c.byTag[rec.Tag]; dup {
			return nil, &DuplicateTagError{Tag: rec.Tag, First: first, Second: i}
		}
		c.byTag[rec.Tag] = i
		c.records = append(c.records, model.IntentRecord{
			Tag:       rec.Tag,
			Patterns:  slices.Clone(rec.Patterns),
			Responses: slices.Clone(rec.Responses),
		})
	}
	return c, nil
}

// ResponsesFor returns the candidate replies for tag. The boolean is false
// when the catalog has no such tag; callers treat that as a normal outcome.
func (c *Catalog) ResponsesFor(tag string) ([]string, bool) {
	i, ok := c.byTag[tag]
	if !ok {
		return nil, false
	}
	return slices.Clone(c.records[i].Responses), true
}

// Lookup returns a copy of the record for tag.
func (c *Catalog) Lookup(tag string) (model.IntentRecord, bool) {
	i, ok := c.byTag[tag]
	if !ok {
		return model.IntentRecord{}, false
	}
	return cloneRecord(c.records[i]), true
}

// Records returns copies of all records in load order.
func (c *Catalog) Records() []model.IntentRecord {
	out := make([]model.IntentRecord, len(c.records))
	for i, rec := range c.records {
		out[i] = cloneRecord(rec)
	}
	return out
}

// Tags returns all tags in load order.
func (c *Catalog) Tags() []string {
	out := make([]string, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.Tag
	}
	return out
}

// Len returns the number of intents.
func (c *Catalog) Len() int {
	return len(c.records)
}

func cloneRecord(rec model.IntentRecord) model.IntentRecord {
	rec.Patterns = slices.Clone(rec.Patterns)
	rec.Responses = slices.Clone(rec.Responses)
	return rec
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min":
			parts = append(parts, field+" must not be empty")
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
