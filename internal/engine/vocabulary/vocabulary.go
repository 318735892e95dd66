// Package vocabulary maps classifier output indices to intent tags.
package vocabulary

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pesanmasa/chatbot/internal/engine/source"
)

// ErrLoad is returned when a label source cannot be turned into a vocabulary.
var ErrLoad = errors.New("vocabulary: load failed")

// IndexOutOfRangeError reports a class index the vocabulary has no tag for.
// It means the classifier and the vocabulary disagree on the number of labels.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("vocabulary: index %d out of range [0, %d)", e.Index, e.Len)
}

// Vocabulary is an immutable, injective mapping from class index to tag.
// Safe for concurrent reads.
type Vocabulary struct {
	tags  []string
	index map[string]int
}

// Load reads a label vocabulary from path. The format follows the file
// extension (see source.FormatOf).
func Load(path string) (*Vocabulary, error) {
	data, format, err := source.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Parse(data, format)
}

// Parse builds a vocabulary from serialized data. JSON and YAML documents
// may be an array of tags, an object of index→tag, or an object of tag→index.
// Text documents hold one tag per line.
func Parse(data []byte, format source.Format) (*Vocabulary, error) {
	var (
		entries map[int]string
		err     error
	)
	switch format {
	case source.Text:
		entries, err = parseLines(data)
	case source.YAML:
		var doc any
		if err = yaml.Unmarshal(data, &doc); err == nil {
			entries, err = fromDocument(doc)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var doc any
		if err = dec.Decode(&doc); err == nil {
			if dec.Decode(&struct{}{}) != io.EOF {
				err = errors.New("trailing data after document")
			} else {
				entries, err = fromDocument(doc)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, format, err)
	}
	v, err := build(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return v, nil
}

// New builds a vocabulary from tags in index order.
func New(tags ...string) (*Vocabulary, error) {
	entries := make(map[int]string, len(tags))
	for i, tag := range tags {
		entries[i] = tag
	}
	v, err := build(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return v, nil
}

// Decode returns the tag for a class index.
func (v *Vocabulary) Decode(index int) (string, error) {
	if index < 0 || index >= len(v.tags) {
		return "", &IndexOutOfRangeError{Index: index, Len: len(v.tags)}
	}
	return v.tags[index], nil
}

// Index returns the class index of a tag.
func (v *Vocabulary) Index(tag string) (int, bool) {
	i, ok := v.index[tag]
	return i, ok
}

// Len returns the number of labels, which must equal the classifier's
// output dimensionality.
func (v *Vocabulary) Len() int {
	return len(v.tags)
}

// Tags returns a copy of the tags in index order.
func (v *Vocabulary) Tags() []string {
	out := make([]string, len(v.tags))
	copy(out, v.tags)
	return out
}

func build(entries map[int]string) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, errors.New("no labels")
	}
	tags := make([]string, len(entries))
	index := make(map[string]int, len(entries))
	for i := range tags {
		tag, ok := entries[i]
		if !ok {
			return nil, fmt.Errorf("indices must be contiguous from 0: missing %d", i)
		}
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, fmt.Errorf("empty tag at index %d", i)
		}
		if prev, dup := index[tag]; dup {
			return nil, fmt.Errorf("duplicate tag %q at indices %d and %d", tag, prev, i)
		}
		tags[i] = tag
		index[tag] = i
	}
	return &Vocabulary{tags: tags, index: index}, nil
}

// parseLines reads one tag per line. Trailing blank lines are ignored; blank
// lines between tags are kept so build rejects them.
func parseLines(data []byte) (map[int]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	entries := make(map[int]string, len(lines))
	for i, line := range lines {
		entries[i] = line
	}
	return entries, nil
}

func fromDocument(doc any) (map[int]string, error) {
	switch d := doc.(type) {
	case []any:
		entries := make(map[int]string, len(d))
		for i, item := range d {
			tag, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, want string", i, item)
			}
			entries[i] = tag
		}
		return entries, nil
	case map[string]any:
		pairs := make(map[string]any, len(d))
		for k, val := range d {
			pairs[k] = val
		}
		return fromPairs(pairs)
	case map[any]any:
		pairs := make(map[string]any, len(d))
		for k, val := range d {
			pairs[fmt.Sprint(k)] = val
		}
		return fromPairs(pairs)
	case nil:
		return nil, errors.New("empty document")
	default:
		return nil, fmt.Errorf("unsupported document of type %T", doc)
	}
}

// fromPairs accepts either index→tag or tag→index objects, but not a mix.
func fromPairs(pairs map[string]any) (map[int]string, error) {
	entries := make(map[int]string, len(pairs))
	var byIndex, byTag bool
	for k, val := range pairs {
		if tag, ok := val.(string); ok {
			i, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil {
				return nil, fmt.Errorf("key %q is not an index", k)
			}
			if i < 0 {
				return nil, fmt.Errorf("negative index %d", i)
			}
			if _, dup := entries[i]; dup {
				return nil, fmt.Errorf("index %d assigned twice", i)
			}
			entries[i] = tag
			byIndex = true
			continue
		}
		i, ok := toIndex(val)
		if !ok {
			return nil, fmt.Errorf("value for %q is %T, want tag or index", k, val)
		}
		if i < 0 {
			return nil, fmt.Errorf("negative index %d for %q", i, k)
		}
		if prev, dup := entries[i]; dup {
			return nil, fmt.Errorf("index %d assigned to both %q and %q", i, prev, k)
		}
		entries[i] = k
		byTag = true
	}
	if byIndex && byTag {
		return nil, errors.New("mixed index→tag and tag→index entries")
	}
	return entries, nil
}

func toIndex(val any) (int, bool) {
	switch n := val.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), n <= math.MaxInt32
	case float64:
		return int(n), n == math.Trunc(n)
	default:
		return 0, false
	}
}
