package agent

import "encoding/json"

// Param extraction helpers. LLMs send numbers as float64 in JSON.
func getInt(params map[string]any, key string) (int64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func getIntOr(params map[string]any, key string, fallback int64) int64 {
	if v, ok := getInt(params, key); ok {
		return v
	}
	return fallback
}

func getString(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// getStringOr treats an empty string like a missing key, so a model that
// sends "" still gets the documented default.
func getStringOr(params map[string]any, key, fallback string) string {
	if v, ok := getString(params, key); ok && v != "" {
		return v
	}
	return fallback
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
