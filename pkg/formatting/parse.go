package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when model output cannot be decoded as JSON,
// either directly or from a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// StripFence returns the body of the first markdown code fence in content,
// or the trimmed content when no fence is present.
func StripFence(content string) string {
	content = strings.TrimSpace(content)
	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return content
}

// Parse unmarshals content as JSON into T. When direct decoding fails it
// retries on the fenced body. The returned error wraps both ErrParseFailed
// and the decoder error so callers can surface the cause.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	if cleaned := StripFence(content); cleaned != content {
		var fenced T
		ferr := json.Unmarshal([]byte(cleaned), &fenced)
		if ferr == nil {
			return fenced, nil
		}
		err = ferr
	}

	return result, fmt.Errorf("%w: %w", ErrParseFailed, err)
}
