package jsonexport

import (
	"encoding/json"

	"github.com/gomlx/go-annotations/validation"
	"golang.org/x/text/language"
)

// ValidateExport re-parses a JSON artifact and checks its structure.
//
// Missing or malformed required fields are errors; an empty documents array, an
// out-of-range confidence or an unparseable language tag are warnings.
func (e *Exporter) ValidateExport(text string) validation.Report {
	return Validate(text)
}

// Validate is ValidateExport without an Exporter: JSON validation does not depend on
// the export options.
func Validate(text string) validation.Report {
	var c validation.Collector
	var root map[string]any
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		c.Errorf("Invalid JSON format: %v", err)
		return c.Report()
	}

	info, ok := root["export_info"].(map[string]any)
	switch {
	case !ok:
		c.Errorf("Missing export_info")
	case info["format"] != Format:
		c.Errorf("Invalid or missing format in export_info")
	case !nonEmptyString(info, "version"):
		c.Errorf("Missing version in export_info")
	}

	docs, ok := root["documents"].([]any)
	if !ok {
		c.Errorf("Missing or invalid documents array")
		return c.Report()
	}
	if len(docs) == 0 {
		c.Warnf("Export contains no documents")
	}
	for i, raw := range docs {
		doc, ok := raw.(map[string]any)
		if !ok {
			c.Errorf("Document %d: not an object", i)
			continue
		}
		validateDocument(&c, i, doc)
	}
	return c.Report()
}

func validateDocument(c *validation.Collector, i int, doc map[string]any) {
	if !nonEmptyString(doc, "id") || !nonEmptyString(doc, "title") || !nonEmptyString(doc, "text") {
		c.Errorf("Document %d: Missing required fields (id, title, text)", i)
	}
	if tag, ok := doc["language"].(string); ok && tag != "" {
		if _, err := language.Parse(tag); err != nil {
			c.Warnf("Document %d: Unrecognized language tag %q", i, tag)
		}
	}
	anns, ok := doc["annotations"].([]any)
	if !ok {
		c.Errorf("Document %d: Missing or invalid annotations array", i)
		return
	}
	for j, raw := range anns {
		ann, ok := raw.(map[string]any)
		if !ok {
			c.Errorf("Document %d, Annotation %d: not an object", i, j)
			continue
		}
		start, hasStart := ann["start"].(float64)
		end, hasEnd := ann["end"].(float64)
		if !nonEmptyString(ann, "id") || !hasStart || !hasEnd ||
			!nonEmptyString(ann, "text") || !nonEmptyString(ann, "label") {
			c.Errorf("Document %d, Annotation %d: Missing required fields", i, j)
		}
		if hasStart && hasEnd && start >= end {
			c.Errorf("Document %d, Annotation %d: Invalid span (start >= end)", i, j)
		}
		if raw, present := ann["confidence"]; present && raw != nil {
			conf, isNumber := raw.(float64)
			switch {
			case !isNumber:
				c.Errorf("Document %d, Annotation %d: Confidence is not a number", i, j)
			case conf < 0 || conf > 1:
				c.Warnf("Document %d, Annotation %d: Confidence should be between 0 and 1", i, j)
			}
		}
	}
}

func nonEmptyString(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && s != ""
}
