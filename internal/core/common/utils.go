package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON cleans and unmarshals an LLM reply into T.
// It tolerates markdown fences and prose around a single JSON object or array.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return zero, fmt.Errorf("no JSON value found in response")
	}
	closer := "}"
	if response[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(response, closer)
	if end < start {
		return zero, fmt.Errorf("unterminated JSON value in response")
	}
	jsonStr := response[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}
