// Package pretokenizer implements word-level tokenization configured like the
// "pre_tokenizer" section of HuggingFace's tokenizer.json format.
//
// Unlike the full HuggingFace pipeline, no normalizer is applied and no vocabulary is
// involved: the output is the sequence of words with their byte spans in the original
// text, which is what annotation tools need as token boundaries.
package pretokenizer

import (
	"encoding/json"
	"os"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/gomlx/go-annotations/tokenizers/api"
	"github.com/pkg/errors"
)

// TokenizerJSON is the subset of HuggingFace's tokenizer.json used here.
type TokenizerJSON struct {
	Version      string  `json:"version"`
	PreTokenizer *Config `json:"pre_tokenizer"`
}

// Pattern for regex-based operations. Exactly one of the fields is set.
type Pattern struct {
	Regex  string `json:"Regex,omitempty"`
	String string `json:"String,omitempty"`
}

// Config represents the pre-tokenizer configuration.
type Config struct {
	Type             string   `json:"type"`
	AddPrefixSpace   bool     `json:"add_prefix_space"`
	PreTokenizers    []Config `json:"pretokenizers"`
	Pattern          *Pattern `json:"pattern"`
	Behavior         string   `json:"behavior"`
	Invert           bool     `json:"invert"`
	IndividualDigits bool     `json:"individual_digits"`
	UseRegex         *bool    `json:"use_regex"`
}

// Split behaviors, as named in tokenizer.json.
const (
	Removed            = "Removed"
	Isolated           = "Isolated"
	MergedWithPrevious = "MergedWithPrevious"
	MergedWithNext     = "MergedWithNext"
	Contiguous         = "Contiguous"
)

// step refines a list of spans of text into a finer list.
type step func(text string, spans []api.TokenSpan) []api.TokenSpan

// PreTokenizer splits text into words. It is immutable and safe for concurrent use.
type PreTokenizer struct {
	config Config
	split  step
}

// Compile time assert that PreTokenizer implements api.TokenizerWithSpans interface.
var _ api.TokenizerWithSpans = &PreTokenizer{}

// New compiles a pre-tokenizer configuration.
func New(config Config) (*PreTokenizer, error) {
	split, err := compile(&config)
	if err != nil {
		return nil, err
	}
	return &PreTokenizer{config: config, split: split}, nil
}

// Default returns the BERT pre-tokenizer: whitespace separates words and every
// punctuation character is a word of its own.
func Default() *PreTokenizer {
	p, err := New(Config{Type: "BertPreTokenizer"})
	if err != nil {
		panic(err)
	}
	return p
}

// NewFromFile creates a pre-tokenizer from a local tokenizer.json file path.
func NewFromFile(filePath string) (*PreTokenizer, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tokenizer.json file %q", filePath)
	}
	return NewFromContent(content)
}

// NewFromContent creates a pre-tokenizer from tokenizer.json content. A file without
// a pre_tokenizer splits on whitespace.
func NewFromContent(content []byte) (*PreTokenizer, error) {
	var tj TokenizerJSON
	if err := json.Unmarshal(content, &tj); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer.json")
	}
	if tj.PreTokenizer == nil {
		return New(Config{Type: "WhitespaceSplit"})
	}
	return New(*tj.PreTokenizer)
}

// Config returns the configuration the pre-tokenizer was built from.
func (p *PreTokenizer) Config() Config {
	return p.config
}

// EncodeWithSpans splits text into words. Spans are trimmed of surrounding whitespace
// and empty words are dropped; IDs are word ordinals.
func (p *PreTokenizer) EncodeWithSpans(text string) api.EncodingResult {
	spans := p.split(text, []api.TokenSpan{{Start: 0, End: len(text)}})
	result := api.EncodingResult{Spans: make([]api.TokenSpan, 0, len(spans))}
	for _, s := range spans {
		s = trimSpace(text, s)
		if s.Empty() {
			continue
		}
		result.IDs = append(result.IDs, len(result.Spans))
		result.Spans = append(result.Spans, s)
	}
	return result
}

// Split returns the words of text.
func (p *PreTokenizer) Split(text string) []string {
	result := p.EncodeWithSpans(text)
	words := make([]string, len(result.Spans))
	for i, s := range result.Spans {
		words[i] = text[s.Start:s.End]
	}
	return words
}

var (
	// wordsOrSymbols is the pattern of the "Whitespace" pre-tokenizer.
	wordsOrSymbols = regexp.MustCompile(`\w+|[^\w\s]+`)

	// byteLevelWords approximates the GPT-2 pattern; Go regexps have no lookahead, so
	// whitespace runs are not split before the last space.
	byteLevelWords = regexp.MustCompile(`'s|'t|'re|'ve|'m|'ll|'d| ?\pL+| ?\pN+| ?[^\s\pL\pN]+|\s+`)
)

func compile(c *Config) (step, error) {
	switch c.Type {
	case "BertPreTokenizer":
		return chain(
			splitOn(isWhitespace, Removed),
			splitOn(isPunctuation, Isolated),
		), nil
	case "WhitespaceSplit":
		return splitOn(isWhitespace, Removed), nil
	case "Whitespace":
		return splitRegex(wordsOrSymbols, Removed, true), nil
	case "Punctuation":
		behavior, err := behaviorOrDefault(c.Behavior, Isolated)
		if err != nil {
			return nil, err
		}
		return splitOn(isPunctuation, behavior), nil
	case "Digits":
		if c.IndividualDigits {
			return splitOn(unicode.IsDigit, Isolated), nil
		}
		return splitOn(unicode.IsDigit, Contiguous), nil
	case "Metaspace":
		return splitOn(isWhitespace, MergedWithNext), nil
	case "ByteLevel":
		if c.UseRegex != nil && !*c.UseRegex {
			return func(_ string, spans []api.TokenSpan) []api.TokenSpan { return spans }, nil
		}
		return splitRegex(byteLevelWords, Removed, true), nil
	case "Split":
		if c.Pattern == nil || (c.Pattern.Regex == "" && c.Pattern.String == "") {
			return nil, errors.New("Split pre-tokenizer requires a pattern")
		}
		expr := c.Pattern.Regex
		if expr == "" {
			expr = regexp.QuoteMeta(c.Pattern.String)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid Split pattern %q", expr)
		}
		behavior, err := behaviorOrDefault(c.Behavior, Removed)
		if err != nil {
			return nil, err
		}
		return splitRegex(re, behavior, c.Invert), nil
	case "Sequence":
		steps := make([]step, len(c.PreTokenizers))
		for i := range c.PreTokenizers {
			s, err := compile(&c.PreTokenizers[i])
			if err != nil {
				return nil, errors.WithMessagef(err, "pretokenizers[%d]", i)
			}
			steps[i] = s
		}
		return chain(steps...), nil
	}
	return nil, errors.Errorf("unsupported pre-tokenizer type %q", c.Type)
}

func behaviorOrDefault(behavior, defaultBehavior string) (string, error) {
	switch behavior {
	case "":
		return defaultBehavior, nil
	case Removed, Isolated, MergedWithPrevious, MergedWithNext, Contiguous:
		return behavior, nil
	}
	return "", errors.Errorf("unknown split behavior %q", behavior)
}

func chain(steps ...step) step {
	return func(text string, spans []api.TokenSpan) []api.TokenSpan {
		for _, s := range steps {
			spans = s(text, spans)
		}
		return spans
	}
}

// splitOn splits at every rune matching isDelimiter; each such rune is one delimiter.
func splitOn(isDelimiter func(rune) bool, behavior string) step {
	return func(text string, spans []api.TokenSpan) []api.TokenSpan {
		var out []api.TokenSpan
		for _, s := range spans {
			var matches []api.TokenSpan
			for pos := s.Start; pos < s.End; {
				r, size := utf8.DecodeRuneInString(text[pos:s.End])
				if isDelimiter(r) {
					matches = append(matches, api.TokenSpan{Start: pos, End: pos + size})
				}
				pos += size
			}
			out = splitWithBehavior(out, s, matches, behavior, false)
		}
		return out
	}
}

// splitRegex splits at every match of re.
func splitRegex(re *regexp.Regexp, behavior string, invert bool) step {
	return func(text string, spans []api.TokenSpan) []api.TokenSpan {
		var out []api.TokenSpan
		for _, s := range spans {
			var matches []api.TokenSpan
			for _, m := range re.FindAllStringIndex(text[s.Start:s.End], -1) {
				if m[0] < m[1] {
					matches = append(matches, api.TokenSpan{Start: s.Start + m[0], End: s.Start + m[1]})
				}
			}
			out = splitWithBehavior(out, s, matches, behavior, invert)
		}
		return out
	}
}

// splitWithBehavior appends to out the pieces of span s delimited by the sorted,
// non-overlapping matches. With invert, the matches are the pieces to keep and
// everything between them acts as the delimiter.
func splitWithBehavior(out []api.TokenSpan, s api.TokenSpan, matches []api.TokenSpan, behavior string, invert bool) []api.TokenSpan {
	if invert {
		matches = complement(s, matches)
	}
	if behavior == Contiguous {
		matches = mergeAdjacent(matches)
	}
	pos := s.Start
	pendingPrefix := -1 // start of a delimiter waiting to be merged with the next piece
	for _, m := range matches {
		gap := api.TokenSpan{Start: pos, End: m.Start}
		if pendingPrefix >= 0 {
			gap.Start = pendingPrefix
			pendingPrefix = -1
		}
		switch behavior {
		case Removed:
			out = appendNonEmpty(out, gap)
		case Isolated, Contiguous:
			out = appendNonEmpty(out, gap)
			out = appendNonEmpty(out, m)
		case MergedWithPrevious:
			out = appendNonEmpty(out, api.TokenSpan{Start: gap.Start, End: m.End})
		case MergedWithNext:
			out = appendNonEmpty(out, gap)
			pendingPrefix = m.Start
		}
		pos = m.End
	}
	tail := api.TokenSpan{Start: pos, End: s.End}
	if pendingPrefix >= 0 {
		tail.Start = pendingPrefix
	}
	return appendNonEmpty(out, tail)
}

func appendNonEmpty(out []api.TokenSpan, s api.TokenSpan) []api.TokenSpan {
	if s.Empty() {
		return out
	}
	return append(out, s)
}

// complement returns the parts of s not covered by matches.
func complement(s api.TokenSpan, matches []api.TokenSpan) []api.TokenSpan {
	var out []api.TokenSpan
	pos := s.Start
	for _, m := range matches {
		out = appendNonEmpty(out, api.TokenSpan{Start: pos, End: m.Start})
		pos = m.End
	}
	return appendNonEmpty(out, api.TokenSpan{Start: pos, End: s.End})
}

func mergeAdjacent(matches []api.TokenSpan) []api.TokenSpan {
	var out []api.TokenSpan
	for _, m := range matches {
		if n := len(out); n > 0 && out[n-1].End == m.Start {
			out[n-1].End = m.End
			continue
		}
		out = append(out, m)
	}
	return out
}

func trimSpace(text string, s api.TokenSpan) api.TokenSpan {
	for s.Start < s.End {
		r, size := utf8.DecodeRuneInString(text[s.Start:s.End])
		if !isWhitespace(r) {
			break
		}
		s.Start += size
	}
	for s.Start < s.End {
		r, size := utf8.DecodeLastRuneInString(text[s.Start:s.End])
		if !isWhitespace(r) {
			break
		}
		s.End -= size
	}
	return s
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isPunctuation(r rune) bool {
	// ASCII punctuation
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}
