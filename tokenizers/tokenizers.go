// Package tokenizers turns tokenizer output into document tokens.
//
// Tokenizers report byte spans; documents use rune offsets. Tokenize does the
// conversion, and Load picks a tokenizer implementation from a file name.
package tokenizers

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/tokenizers/api"
	"github.com/gomlx/go-annotations/tokenizers/pretokenizer"
	"github.com/gomlx/go-annotations/tokenizers/sentencepiece"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Load returns the tokenizer stored in filePath: a HuggingFace tokenizer.json (its
// pre-tokenizer is used) or a SentencePiece ".model" file. An empty path returns
// pretokenizer.Default().
func Load(filePath string) (api.TokenizerWithSpans, error) {
	if filePath == "" {
		return pretokenizer.Default(), nil
	}
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return pretokenizer.NewFromFile(filePath)
	case ".model":
		return sentencepiece.NewFromFile(filePath)
	}
	return nil, errors.Errorf("unknown tokenizer file %q: expected a tokenizer.json or a SentencePiece .model file", filePath)
}

// Tokenize splits text with tok and returns document tokens with rune offsets.
//
// Spans are widened to rune boundaries, a span starting inside the previous one is
// clipped and empty spans are dropped, so the result is ordered and non-overlapping.
// Token IDs count from 0; Whitespace holds the text up to the next token.
func Tokenize(text string, tok api.TokenizerWithSpans) []document.Token {
	result := tok.EncodeWithSpans(text)
	tokens := make([]document.Token, 0, len(result.Spans))
	byteSpans := make([]api.TokenSpan, 0, len(result.Spans))
	var bytePos, runePos int // runePos is the rune offset of text[bytePos:]
	for _, span := range result.Spans {
		start, end := max(span.Start, 0), min(span.End, len(text))
		for start > 0 && start < len(text) && !utf8.RuneStart(text[start]) {
			start--
		}
		for end > 0 && end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}
		start = max(start, bytePos)
		if end <= start {
			continue
		}
		runeStart := runePos + utf8.RuneCountInString(text[bytePos:start])
		runeEnd := runeStart + utf8.RuneCountInString(text[start:end])
		tokens = append(tokens, document.Token{
			ID:    len(tokens),
			Text:  text[start:end],
			Start: runeStart,
			End:   runeEnd,
		})
		byteSpans = append(byteSpans, api.TokenSpan{Start: start, End: end})
		bytePos, runePos = end, runeEnd
	}
	for i := range tokens {
		next := len(text)
		if i+1 < len(tokens) {
			next = byteSpans[i+1].Start
		}
		tokens[i].Whitespace = text[byteSpans[i].End:next]
	}
	return tokens
}

// Ensure returns a copy of docs where every document without tokens is tokenized
// with tok. Documents that already have tokens are kept as they are, and docs is
// not modified.
func Ensure(docs []document.Document, tok api.TokenizerWithSpans) []document.Document {
	out := make([]document.Document, len(docs))
	tokenized := 0
	for i, doc := range docs {
		if len(doc.Tokens) == 0 && doc.Text != "" {
			doc.Tokens = Tokenize(doc.Text, tok)
			tokenized++
		}
		out[i] = doc
	}
	klog.V(1).Infof("tokenizers: tokenized %d of %d documents", tokenized, len(docs))
	return out
}
