package pretokenizer

import (
	"testing"

	"github.com/gomlx/go-annotations/tokenizers/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test tokenizer.json content for a BERT-style sequence of pre-tokenizers.
var testSequenceTokenizerJSON = []byte(`{
  "version": "1.0",
  "truncation": null,
  "padding": null,
  "normalizer": {"type": "BertNormalizer", "lowercase": true},
  "pre_tokenizer": {
    "type": "Sequence",
    "pretokenizers": [
      {"type": "WhitespaceSplit"},
      {"type": "Punctuation", "behavior": "Isolated"},
      {"type": "Digits", "individual_digits": true}
    ]
  },
  "model": {"type": "WordPiece", "vocab": {"[UNK]": 0}}
}`)

func mustNew(t *testing.T, config Config) *PreTokenizer {
	t.Helper()
	p, err := New(config)
	require.NoError(t, err)
	return p
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, []string{"Hello", ",", "world", "!", "It", "'", "s", "3", ".", "5", "%"},
		p.Split("Hello, world! It's 3.5%"))

	result := p.EncodeWithSpans("héllo wörld")
	assert.Equal(t, []api.TokenSpan{{Start: 0, End: 6}, {Start: 7, End: 13}}, result.Spans)
	assert.Equal(t, []int{0, 1}, result.IDs)

	assert.Equal(t, []string{"東京", "タワー"}, p.Split("東京　タワー"))
	assert.Empty(t, p.EncodeWithSpans("  \t ").Spans)
}

func TestPreTokenizerTypes(t *testing.T) {
	testCases := []struct {
		name   string
		config Config
		text   string
		want   []string
	}{
		{"WhitespaceSplit", Config{Type: "WhitespaceSplit"}, "a  b\tc\n", []string{"a", "b", "c"}},
		{"Whitespace", Config{Type: "Whitespace"}, "Hello, world!!", []string{"Hello", ",", "world", "!!"}},
		{"Metaspace", Config{Type: "Metaspace", AddPrefixSpace: true}, "hello big world", []string{"hello", "big", "world"}},
		{"ByteLevel", Config{Type: "ByteLevel"}, "Hello world's 42", []string{"Hello", "world", "'s", "42"}},
		{"Punctuation", Config{Type: "Punctuation"}, "end.", []string{"end", "."}},
		{"DigitsContiguous", Config{Type: "Digits"}, "abc123", []string{"abc", "123"}},
		{"DigitsIndividual", Config{Type: "Digits", IndividualDigits: true}, "abc123", []string{"abc", "1", "2", "3"}},
		{"SplitRemoved", Config{Type: "Split", Pattern: &Pattern{String: "-"}}, "a-b-c", []string{"a", "b", "c"}},
		{"SplitIsolated", Config{Type: "Split", Pattern: &Pattern{String: "-"}, Behavior: Isolated}, "a-b-c", []string{"a", "-", "b", "-", "c"}},
		{"SplitMergedWithPrevious", Config{Type: "Split", Pattern: &Pattern{String: "-"}, Behavior: MergedWithPrevious}, "a-b-c", []string{"a-", "b-", "c"}},
		{"SplitMergedWithNext", Config{Type: "Split", Pattern: &Pattern{String: "-"}, Behavior: MergedWithNext}, "a-b-c", []string{"a", "-b", "-c"}},
		{"SplitContiguous", Config{Type: "Split", Pattern: &Pattern{Regex: "-"}, Behavior: Contiguous}, "a--b", []string{"a", "--", "b"}},
		{"SplitInvert", Config{Type: "Split", Pattern: &Pattern{Regex: `\d+`}, Invert: true}, "ab12cd345", []string{"12", "345"}},
		{"Sequence", Config{Type: "Sequence", PreTokenizers: []Config{{Type: "WhitespaceSplit"}, {Type: "Punctuation"}}},
			"Hi, there.", []string{"Hi", ",", "there", "."}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mustNew(t, tc.config).Split(tc.text))
		})
	}
}

func TestByteLevelWithoutRegex(t *testing.T) {
	noRegex := false
	p := mustNew(t, Config{Type: "ByteLevel", UseRegex: &noRegex})
	assert.Equal(t, []string{"one two"}, p.Split(" one two "))
}

func TestSpansAreOrderedAndDisjoint(t *testing.T) {
	text := "Dr. Smith's patients (n=42) received 3.5mg/kg … twice daily."
	for _, typ := range []string{"BertPreTokenizer", "Whitespace", "WhitespaceSplit", "Metaspace", "ByteLevel"} {
		result := mustNew(t, Config{Type: typ}).EncodeWithSpans(text)
		prevEnd := 0
		for _, s := range result.Spans {
			assert.GreaterOrEqual(t, s.Start, prevEnd, typ)
			assert.Less(t, s.Start, s.End, typ)
			assert.LessOrEqual(t, s.End, len(text), typ)
			prevEnd = s.End
		}
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(Config{Type: "Unknown"})
	assert.Error(t, err)
	_, err = New(Config{Type: "Split"})
	assert.Error(t, err)
	_, err = New(Config{Type: "Split", Pattern: &Pattern{Regex: "("}})
	assert.Error(t, err)
	_, err = New(Config{Type: "Punctuation", Behavior: "Sideways"})
	assert.Error(t, err)
	_, err = New(Config{Type: "Sequence", PreTokenizers: []Config{{Type: "WhitespaceSplit"}, {Type: "Nope"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pretokenizers[1]")
}

func TestNewFromContent(t *testing.T) {
	p, err := NewFromContent(testSequenceTokenizerJSON)
	require.NoError(t, err)
	assert.Equal(t, "Sequence", p.Config().Type)
	assert.Equal(t, []string{"Take", "2", "5", "mg", "."}, p.Split("Take 25mg."))

	p, err = NewFromContent([]byte(`{"version": "1.0", "model": {"type": "BPE"}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"no-pre", "tokenizer"}, p.Split("no-pre tokenizer"))

	_, err = NewFromContent([]byte(`{not json`))
	assert.Error(t, err)
	_, err = NewFromFile("/nonexistent/tokenizer.json")
	assert.Error(t, err)
}
