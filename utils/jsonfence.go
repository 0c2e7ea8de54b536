package utils

import "strings"

// StripJSONFences removes markdown code-fence delimiters from a model
// response so the remainder can be JSON-decoded. Language models routinely
// wrap their JSON answer in ```json ... ``` despite being told not to.
func StripJSONFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the first balanced top-level JSON object in s,
// or the trimmed input when no braces are found. Models sometimes prefix
// their JSON with a sentence of commentary.
func ExtractJSONObject(s string) string {
	s = StripJSONFences(s)
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// skip structural characters inside strings
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
