package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by Marshal.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Marshal encodes v as indented JSON or YAML. Field names match the wire names.
func Marshal(format string, v any) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML, "yml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported format %q: use %s or %s", format, FormatJSON, FormatYAML)
	}
}
