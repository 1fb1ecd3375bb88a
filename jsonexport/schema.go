package jsonexport

// Schema returns the JSON-Schema (draft-07) description of an export artifact.
// A fresh map is returned on every call.
func Schema() map[string]any {
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"export_info": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"format":            map[string]any{"type": "string", "const": Format},
					"version":           map[string]any{"type": "string"},
					"created_at":        map[string]any{"type": "string", "format": "date-time"},
					"export_id":         map[string]any{"type": "string", "format": "uuid"},
					"total_documents":   map[string]any{"type": "integer", "minimum": 0},
					"total_annotations": map[string]any{"type": "integer", "minimum": 0},
				},
				"required": []string{"format", "version", "created_at", "total_documents", "total_annotations"},
			},
			"documents": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":       map[string]any{"type": "string"},
						"title":    map[string]any{"type": "string"},
						"text":     map[string]any{"type": "string"},
						"language": map[string]any{"type": "string"},
						"annotations": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":         map[string]any{"type": "string"},
									"start":      map[string]any{"type": "integer", "minimum": 0},
									"end":        map[string]any{"type": "integer", "minimum": 0},
									"text":       map[string]any{"type": "string"},
									"label":      map[string]any{"type": "string"},
									"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
								},
								"required": []string{"id", "start", "end", "text", "label"},
							},
						},
					},
					"required": []string{"id", "title", "text", "annotations"},
				},
			},
		},
	}
}
