// Package sentencepiece implements an api.TokenizerWithSpans based on the SentencePiece tokenizer.
package sentencepiece

import (
	"strings"

	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/gomlx/go-annotations/tokenizers/api"
	"github.com/pkg/errors"
)

// metaspace is U+2581, which SentencePiece uses as the space replacement.
const metaspace = "▁"

// Tokenizer implements api.TokenizerWithSpans based on SentencePiece tokenizer by Google.
type Tokenizer struct {
	*esentencepiece.Processor
	Info *esentencepiece.ModelInfo
}

// Compile time assert that sentencepiece.Tokenizer implements api.TokenizerWithSpans interface.
var _ api.TokenizerWithSpans = &Tokenizer{}

// NewFromFile creates a SentencePiece tokenizer from a "tokenizer.model" file, which must be a
// SentencePiece Model proto.
func NewFromFile(filePath string) (*Tokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", filePath)
	}
	return &Tokenizer{
		Processor: proc,
		Info:      proc.ModelInfo(),
	}, nil
}

// EncodeWithSpans returns the text encoded into a sequence of ids along with their byte spans.
// It implements api.TokenizerWithSpans.
func (p *Tokenizer) EncodeWithSpans(text string) api.EncodingResult {
	tokens := p.Processor.Encode(text)
	return api.EncodingResult{
		IDs:   sliceMap(tokens, func(t esentencepiece.Token) int { return t.ID }),
		Spans: spansFromPieces(text, sliceMap(tokens, func(t esentencepiece.Token) string { return t.Text })),
	}
}

// spansFromPieces recovers the byte span of each piece by matching it forward in text.
//
// A leading metaspace stands for the whitespace before the word and is not part of the span.
// Pieces that don't occur in text (byte-fallback pieces, for instance) advance the position by
// their length; a piece that is only a metaspace gets an empty span.
func spansFromPieces(text string, pieces []string) []api.TokenSpan {
	spans := make([]api.TokenSpan, len(pieces))
	pos := 0
	for i, piece := range pieces {
		matchPiece, hasLeadingSpace := strings.CutPrefix(piece, metaspace)
		if hasLeadingSpace {
			for pos < len(text) && isSpaceByte(text[pos]) {
				pos++
			}
		}
		if matchPiece == "" {
			spans[i] = api.TokenSpan{Start: pos, End: pos}
			continue
		}
		start := pos
		if foundAt := findSubstring(text, matchPiece, pos); foundAt >= 0 {
			start = foundAt
			pos = foundAt + len(matchPiece)
		} else {
			pos = min(pos+len(matchPiece), len(text))
		}
		spans[i] = api.TokenSpan{Start: start, End: pos}
	}
	return spans
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// findSubstring finds the first occurrence of substr in s starting from position start.
// Returns the byte position of the match, or -1 if not found.
func findSubstring(s, substr string, start int) int {
	if start >= len(s) {
		return -1
	}
	idx := strings.Index(s[start:], substr)
	if idx < 0 {
		return -1
	}
	return start + idx
}

// sliceMap executes the given function sequentially for every element on in, and returns a mapped slice.
func sliceMap[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}
