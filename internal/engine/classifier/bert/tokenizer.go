package bert

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// maxSeqLen is the position-embedding limit of BERT-base models.
	maxSeqLen = 512
	// maxWordChars mirrors WordPiece's max_input_chars_per_word.
	maxWordChars = 100
)

// encoding is one tokenized utterance without padding.
type encoding struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
}

func (e encoding) len() int64 {
	return int64(len(e.inputIDs))
}

// tokenizer performs BERT basic + WordPiece tokenization.
type tokenizer struct {
	vocab     *vocab
	lowercase bool // uncased models also strip accents
}

func newTokenizer(vocabPath string, lowercase bool) (*tokenizer, error) {
	v, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	return &tokenizer{vocab: v, lowercase: lowercase}, nil
}

// encode returns [CLS] pieces... [SEP] for a single sequence, truncated to
// maxSeqLen.
func (t *tokenizer) encode(text string) encoding {
	ids := []int64{t.vocab.clsID}
	for _, word := range t.basicTokenize(text) {
		for _, piece := range t.wordpiece(word) {
			ids = append(ids, t.vocab.lookup(piece))
		}
	}
	if len(ids) > maxSeqLen-1 {
		ids = ids[:maxSeqLen-1]
	}
	ids = append(ids, t.vocab.sepID)

	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return encoding{
		inputIDs:      ids,
		attentionMask: mask,
		tokenTypeIDs:  make([]int64, len(ids)),
	}
}

// basicTokenize drops control characters, splits on whitespace, and makes
// every punctuation mark and CJK ideograph a token of its own.
func (t *tokenizer) basicTokenize(text string) []string {
	var (
		tokens []string
		word   strings.Builder
	)
	emit := func(s string) {
		if s = t.normalize(s); s != "" {
			tokens = append(tokens, s)
		}
	}
	flush := func() {
		if word.Len() > 0 {
			emit(word.String())
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
		case isWhitespace(r):
			flush()
		case isPunctuation(r) || isCJK(r):
			flush()
			emit(string(r))
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func (t *tokenizer) normalize(s string) string {
	if !t.lowercase {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wordpiece splits a word into the longest vocabulary pieces, left to right.
// A word that cannot be fully covered becomes a single [UNK].
func (t *tokenizer) wordpiece(word string) []string {
	runes := []rune(word)
	if len(runes) > maxWordChars {
		return []string{unkToken}
	}

	var pieces []string
	for start := 0; start < len(runes); {
		end, piece := len(runes), ""
		for ; end > start; end-- {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if t.vocab.contains(sub) {
				piece = sub
				break
			}
		}
		if piece == "" {
			return []string{unkToken}
		}
		pieces = append(pieces, piece)
		start = end
	}
	return pieces
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.Is(unicode.C, r)
}

// isPunctuation follows BERT: every non-alphanumeric ASCII symbol counts,
// plus the Unicode P* categories.
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

// cjk lists the CJK Unified Ideograph blocks BERT splits into single tokens.
var cjk = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2A6DF, Stride: 1},
		{Lo: 0x2A700, Hi: 0x2CEAF, Stride: 1},
		{Lo: 0x2F800, Hi: 0x2FA1F, Stride: 1},
	},
}

func isCJK(r rune) bool {
	return unicode.Is(cjk, r)
}
