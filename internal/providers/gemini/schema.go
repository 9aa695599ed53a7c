package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// schemaFromMap converts a JSON schema object into a genai.Schema. Keywords genai
// has no field for are dropped. An object schema with no properties yields nil,
// which Gemini accepts for parameterless functions.
func schemaFromMap(m map[string]any) *genai.Schema {
	if len(m) == 0 {
		return nil
	}
	schema := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		schema.Type = genai.Type(strings.ToUpper(t))
	}
	if d, ok := m["description"].(string); ok {
		schema.Description = d
	}
	if props, ok := m["properties"].(map[string]any); ok && len(props) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				schema.Properties[name] = schemaFromMap(sub)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		schema.Items = schemaFromMap(items)
	}
	schema.Required = stringList(m["required"])
	schema.Enum = stringList(m["enum"])

	if schema.Type == genai.TypeObject && len(schema.Properties) == 0 {
		return nil
	}
	return schema
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
