package conll

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gomlx/go-annotations/tagging"
	"github.com/gomlx/go-annotations/validation"
)

var tagPatterns = map[tagging.Scheme]*regexp.Regexp{
	tagging.BIO:   regexp.MustCompile(`^(B|I)-\w+$`),
	tagging.BILOU: regexp.MustCompile(`^(B|I|L|U)-\w+$`),
	tagging.IO:    regexp.MustCompile(`^(I)-\w+$`),
}

// tagPattern returns the regexp accepted for non-"O" tags of the scheme.
func tagPattern(scheme tagging.Scheme) *regexp.Regexp {
	if p, ok := tagPatterns[scheme]; ok {
		return p
	}
	return regexp.MustCompile(`^(` + strings.Join(scheme.Prefixes(), "|") + `)-\w+$`)
}

// IsValidTag reports whether tag is "O" or a well-formed tag of the scheme.
func IsValidTag(tag string, scheme tagging.Scheme) bool {
	return tag == tagging.Outside || tagPattern(scheme).MatchString(tag)
}

// ValidateExport re-parses a CoNLL artifact written with the exporter's options.
//
// Errors: fewer than 3 columns (4 with confidence), a non-integer token ID, a tag
// that is neither "O" nor "<prefix>-<label>" for the scheme, or a confidence that is
// not a number in [0, 1] (the "_" placeholder is accepted). Token IDs that do not
// count up from 1 within a document are warnings.
func (e *Exporter) ValidateExport(text string) validation.Report {
	var c validation.Collector
	pattern := tagPattern(e.options.Encoding)
	minColumns := 3
	if e.options.IncludeConfidence {
		minColumns = 4
	}

	expectedID := 1
	for i, line := range strings.Split(text, "\n") {
		lineNumber := i + 1
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			expectedID = 1
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		columns := strings.Split(line, e.options.Separator)
		if len(columns) < minColumns {
			c.Errorf("Line %d: Insufficient columns (expected at least %d, got %d)", lineNumber, minColumns, len(columns))
			continue
		}

		if id, err := strconv.Atoi(strings.TrimSpace(columns[0])); err != nil {
			c.Errorf("Line %d: Invalid token ID %q", lineNumber, columns[0])
			expectedID++
		} else {
			if id != expectedID {
				c.Warnf("Line %d: Token ID %d expected %d", lineNumber, id, expectedID)
			}
			expectedID = id + 1
		}

		tagColumn := len(columns) - 1
		if e.options.IncludeConfidence {
			tagColumn--
		}
		if tag := columns[tagColumn]; tag != tagging.Outside && !pattern.MatchString(tag) {
			c.Errorf("Line %d: Invalid NER tag format %q", lineNumber, tag)
		}

		if e.options.IncludeConfidence {
			raw := columns[len(columns)-1]
			if raw == Placeholder {
				continue
			}
			conf, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || math.IsNaN(conf) || conf < 0 || conf > 1 {
				c.Errorf("Line %d: Invalid confidence value %q", lineNumber, raw)
			}
		}
	}
	return c.Report()
}
