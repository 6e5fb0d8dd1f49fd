package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fences with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// ExtractJSON pulls a JSON object or array out of a model response that may
// be wrapped in prose or markdown fences. Fenced blocks are preferred over
// raw scanning.
func ExtractJSON(response string) (string, error) {
	if s, ok := extractFenced(response); ok {
		return s, nil
	}
	if s, ok := extractRaw(response); ok {
		return s, nil
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

// ExtractJSONAs extracts JSON and unmarshals it into T.
func ExtractJSONAs[T any](response string) (T, error) {
	var out T
	s, err := ExtractJSON(response)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal extracted JSON: %w", err)
	}
	return out, nil
}

// extractFenced returns JSON from a ```json or untagged fence.
func extractFenced(response string) (string, bool) {
	for _, m := range fencePattern.FindAllStringSubmatch(response, -1) {
		if len(m) < 3 {
			continue
		}
		lang := strings.ToLower(m[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(m[2])
		if (strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")) && isValidJSON(content) {
			return content, true
		}
	}
	return "", false
}

// extractRaw scans for the first balanced {...} or [...] in the response.
func extractRaw(response string) (string, bool) {
	startObj := strings.Index(response, "{")
	startArr := strings.Index(response, "[")

	start, closer := -1, byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start, closer = startObj, '}'
	} else if startArr >= 0 {
		start, closer = startArr, ']'
	}
	if start < 0 {
		return "", false
	}

	s := balancedPrefix(response[start:], closer)
	if s != "" && isValidJSON(s) {
		return s, true
	}
	return "", false
}

// balancedPrefix returns the prefix of s up to the bracket matching s[0],
// respecting string literals and escapes.
func balancedPrefix(s string, closer byte) string {
	if len(s) == 0 {
		return ""
	}
	opener := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

func isValidJSON(s string) bool {
	var raw json.RawMessage
	return json.Unmarshal([]byte(s), &raw) == nil
}
