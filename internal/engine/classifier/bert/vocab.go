package bert

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

const (
	padToken = "[PAD]"
	unkToken = "[UNK]"
	clsToken = "[CLS]"
	sepToken = "[SEP]"
)

// vocab is a WordPiece vocabulary. A token's ID is its 0-based line number
// in vocab.txt.
type vocab struct {
	tokenToID map[string]int64
	size      int

	padID int64
	unkID int64
	clsID int64
	sepID int64
}

func loadVocab(path string) (*vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()
	v, err := readVocab(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return v, nil
}

func readVocab(r io.Reader) (*vocab, error) {
	v := &vocab{tokenToID: make(map[string]int64, 32000)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tok := scanner.Text()
		// First occurrence wins, matching HuggingFace's loader.
		if _, seen := v.tokenToID[tok]; !seen {
			v.tokenToID[tok] = int64(v.size)
		}
		v.size++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read error: %w", err)
	}
	if v.size == 0 {
		return nil, fmt.Errorf("vocab: file is empty")
	}

	for _, s := range []struct {
		name string
		dest *int64
	}{
		{padToken, &v.padID},
		{unkToken, &v.unkID},
		{clsToken, &v.clsID},
		{sepToken, &v.sepID},
	} {
		id, ok := v.tokenToID[s.name]
		if !ok {
			return nil, fmt.Errorf("vocab: missing special token %s", s.name)
		}
		*s.dest = id
	}
	return v, nil
}

func (v *vocab) lookup(token string) int64 {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	return v.unkID
}

func (v *vocab) contains(token string) bool {
	_, ok := v.tokenToID[token]
	return ok
}
