package api

import (
	"encoding/json"
	"fmt"
)

// Error is a non-2xx backend response with the user-facing message
// extracted from the body.
type Error struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Endpoint, e.Message, e.StatusCode)
}

// extractErrorMessage pulls a usable message out of an error body. The
// backend variously uses "detail" (string or validation list), "message"
// and "error".
func extractErrorMessage(body []byte, statusCode int) string {
	fallback := fmt.Sprintf("request failed with status %d", statusCode)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}

		// Validation errors arrive as [{"msg": ..., "loc": ...}, ...]
		var list []map[string]any
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			if msg, ok := list[0]["msg"].(string); ok && msg != "" {
				return msg
			}
			return fmt.Sprintf("%v", list[0])
		}

		var v any
		if err := json.Unmarshal(raw, &v); err == nil && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}

	return fallback
}
