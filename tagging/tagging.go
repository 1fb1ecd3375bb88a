// Package tagging aligns character-span annotations onto tokens and encodes them as
// per-token tags (BIO, BILOU or IO).
//
// Encoding is last-writer-wins: annotations are applied in ascending Start order
// (stable for equal starts), and an annotation overwrites the tag and confidence of
// every token it shares with an earlier one. Annotations that overlap no token are
// dropped. Both behaviors are the default and can be turned into warnings or errors
// with Options.OnOverlap and Options.OnDroppedAnnotation.
package tagging

import (
	"strings"

	"github.com/pkg/errors"
)

// Outside is the tag of tokens not covered by any annotation.
const Outside = "O"

// Scheme is a token tagging scheme.
type Scheme string

const (
	// BIO tags the first token B-, the rest I-.
	BIO Scheme = "BIO"
	// BILOU tags a single token U-, otherwise first B-, last L-, middle I-.
	BILOU Scheme = "BILOU"
	// IO tags every token I-.
	IO Scheme = "IO"
)

// ParseScheme parses a scheme name, case-insensitively. The empty string maps to BIO.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "BIO":
		return BIO, nil
	case "BILOU":
		return BILOU, nil
	case "IO":
		return IO, nil
	}
	return "", errors.Wrapf(ErrUnknownScheme, "%q", name)
}

// Prefixes returns the tag prefixes the scheme can emit, excluding the bare "O".
func (s Scheme) Prefixes() []string {
	switch s {
	case BILOU:
		return []string{"B", "I", "L", "U"}
	case IO:
		return []string{"I"}
	default:
		return []string{"B", "I"}
	}
}

// DropPolicy selects what happens to an annotation that overlaps no token.
type DropPolicy string

const (
	DropIgnore DropPolicy = "ignore"
	DropWarn   DropPolicy = "warn"
	DropError  DropPolicy = "error"
)

// OverlapPolicy selects what happens when an annotation writes a token already
// tagged by an earlier annotation of the same document.
type OverlapPolicy string

const (
	OverlapLastWins OverlapPolicy = "lastWins"
	OverlapWarn     OverlapPolicy = "warn"
	OverlapError    OverlapPolicy = "error"
)

// ParseDropPolicy parses a DropPolicy. The empty string maps to DropIgnore.
func ParseDropPolicy(name string) (DropPolicy, error) {
	switch p := DropPolicy(strings.TrimSpace(name)); p {
	case "":
		return DropIgnore, nil
	case DropIgnore, DropWarn, DropError:
		return p, nil
	}
	return "", errors.Errorf("unknown dropped-annotation policy %q (want ignore, warn or error)", name)
}

// ParseOverlapPolicy parses an OverlapPolicy. The empty string maps to OverlapLastWins.
func ParseOverlapPolicy(name string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(strings.TrimSpace(name)); p {
	case "":
		return OverlapLastWins, nil
	case OverlapLastWins, OverlapWarn, OverlapError:
		return p, nil
	}
	return "", errors.Errorf("unknown overlap policy %q (want lastWins, warn or error)", name)
}

// Options configures Encode.
type Options struct {
	Scheme              Scheme
	OnDroppedAnnotation DropPolicy
	OnOverlap           OverlapPolicy
}

// DefaultOptions returns BIO with silent drop and last-writer-wins.
func DefaultOptions() Options {
	return Options{
		Scheme:              BIO,
		OnDroppedAnnotation: DropIgnore,
		OnOverlap:           OverlapLastWins,
	}
}

// Errors returned by CheckTokens and Encode. Test with errors.Is.
var (
	ErrUnknownScheme          = errors.New("unknown tagging scheme")
	ErrInvalidSpan            = errors.New("token span has start after end")
	ErrTokensOutOfOrder       = errors.New("tokens are not ordered by start")
	ErrTokensOverlap          = errors.New("tokens overlap")
	ErrDroppedAnnotation      = errors.New("annotation overlaps no token")
	ErrOverlappingAnnotations = errors.New("annotations overlap on a shared token")
)
