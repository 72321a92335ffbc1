package chat

import (
	"math"
	"strconv"
	"strings"
)

// Argument accessors for tool invocations. Decoded JSON delivers numbers
// as float64 and the model occasionally quotes them, so both shapes are
// accepted.

// StringArg fetches a non-empty string argument.
func StringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// FloatArg fetches a numeric argument.
func FloatArg(args map[string]any, key string) (float64, bool) {
	raw, ok := args[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// IntArg fetches an integral numeric argument.
func IntArg(args map[string]any, key string) (int, bool) {
	value, ok := FloatArg(args, key)
	if !ok {
		return 0, false
	}
	if value != math.Trunc(value) {
		return 0, false
	}
	return int(value), true
}
