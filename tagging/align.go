package tagging

import (
	"sort"

	"github.com/gomlx/go-annotations/document"
	"github.com/pkg/errors"
)

// Align returns, in order, the indices of the tokens whose span [Start, End) overlaps
// the annotation's span: token.Start < ann.End && token.End > ann.Start.
//
// Touching is not overlapping: a token ending exactly at ann.Start is not included.
// Align makes no assumption about token order.
func Align(tokens []document.Token, ann document.Annotation) []int {
	var indices []int
	for i, tok := range tokens {
		if tok.Start < ann.End && tok.End > ann.Start {
			indices = append(indices, i)
		}
	}
	return indices
}

// CheckTokens verifies the precondition the encoder relies on: every token has
// Start <= End, tokens are ordered by Start and no two tokens overlap.
func CheckTokens(tokens []document.Token) error {
	for i, tok := range tokens {
		if tok.Start > tok.End {
			return errors.Wrapf(ErrInvalidSpan, "token %d [%d, %d)", i, tok.Start, tok.End)
		}
		if i == 0 {
			continue
		}
		prev := tokens[i-1]
		if tok.Start < prev.Start {
			return errors.Wrapf(ErrTokensOutOfOrder, "token %d starts at %d, before token %d at %d",
				i, tok.Start, i-1, prev.Start)
		}
		if tok.Start < prev.End {
			return errors.Wrapf(ErrTokensOverlap, "token %d [%d, %d) overlaps token %d [%d, %d)",
				i, tok.Start, tok.End, i-1, prev.Start, prev.End)
		}
	}
	return nil
}

// overlapping is Align for tokens that passed CheckTokens. Token ends are then
// non-decreasing, so a binary search finds the first token ending after ann.Start
// and every following token up to the first one starting at or after ann.End
// overlaps.
func overlapping(tokens []document.Token, ann document.Annotation) []int {
	first := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].End > ann.Start
	})
	var indices []int
	for i := first; i < len(tokens) && tokens[i].Start < ann.End; i++ {
		indices = append(indices, i)
	}
	return indices
}
