package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// formatConfig renders a variant config as sorted key=value pairs.
func formatConfig(cfg map[string]any) string {
	if len(cfg) == 0 {
		return "-"
	}

	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, cfg[k])
	}
	return strings.Join(parts, " ")
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
