// Package api defines the span-tracking tokenizer interface.
// It's kept apart from `tokenizers` so the implementations can depend on it without
// an import cycle.
package api

// TokenSpan represents the byte span of a token in the original text.
// Start and End are byte offsets (not rune offsets), suitable for slicing
// Go strings directly: originalText[span.Start:span.End].
// tokenizers.Tokenize converts them to the rune offsets used by documents.
type TokenSpan struct {
	Start int // start byte position (inclusive)
	End   int // end byte position (exclusive)
}

// Empty reports whether the span covers no bytes.
func (s TokenSpan) Empty() bool {
	return s.End <= s.Start
}

// EncodingResult contains tokens with their spans in the original text.
type EncodingResult struct {
	IDs   []int       // token IDs; word ordinals for tokenizers without a vocabulary
	Spans []TokenSpan // byte spans for each token (use originalText[span.Start:span.End] to extract)
}

// TokenizerWithSpans splits text into tokens and reports where each token came from.
// Spans must be in text order; they may be empty for tokens that stand for no text.
type TokenizerWithSpans interface {
	// EncodeWithSpans returns tokens along with their byte spans in the original text.
	EncodeWithSpans(text string) EncodingResult
}
