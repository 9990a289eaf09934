package stats

import (
	"encoding/json"
	"fmt"
)

// AsMap converts a report (or any JSON-tagged value) to nested maps and slices, so it can be
// rendered by encoders that do not honour json tags.
func AsMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return out, nil
}
