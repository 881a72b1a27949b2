// Package repair turns unreliable LLM output into syntactically valid JSON
// text. Everything here is best-effort heuristic string surgery, not a
// parser: the contract is only that Repair always returns something
// encoding/json can attempt, worst case "{}".
package repair

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// {key: value} or {key": value} -> {"key": value}. Applied after the
	// structural pass, so false positives inside string values are rare
	// and harmless relative to an unparseable document.
	unquotedKeyRegex = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_ ]*?)\s*"?\s*:`)

	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

	nullFieldRegexes = map[*regexp.Regexp]string{
		regexp.MustCompile(`"grade"\s*:\s*null`):      `"grade": "N/A"`,
		regexp.MustCompile(`"percentage"\s*:\s*null`): `"percentage": "0%"`,
		regexp.MustCompile(`"summary"\s*:\s*null`):    `"summary": ""`,
	}
)

// Repair converts raw model output into the best-effort valid JSON text it
// can construct. It never fails; when no object can be recovered it returns
// "{}". Downstream parsing may still reject the result.
func Repair(raw string) string {
	s := stripFences(raw)
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	if start < 0 {
		return "{}"
	}
	s = s[start:]

	if end, ok := completeObjectEnd(s); ok {
		// Common case: the model kept talking after the JSON.
		s = s[:end]
	} else {
		s = closeTruncated(s)
	}

	// Regex fixes can mangle text inside legitimate string values, so they
	// only run when the document still does not parse.
	if !json.Valid([]byte(s)) {
		s = unquotedKeyRegex.ReplaceAllString(s, `$1"$2":`)
		s = trailingCommaRegex.ReplaceAllString(s, `$1`)
	}
	for re, repl := range nullFieldRegexes {
		s = re.ReplaceAllString(s, repl)
	}
	return s
}

// Parse repairs raw and decodes it into a generic mapping. The boolean
// reports whether decoding succeeded; callers decide what a failure means.
func Parse(raw string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(Repair(raw)), &m); err != nil {
		return nil, false
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, true
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag (```json ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	} else {
		return ""
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return s
}

// completeObjectEnd scans s (which starts with '{') tracking brace depth and
// string-literal state, honoring backslash escapes. It returns the offset
// one past the closing brace of the top-level object if the object is
// structurally complete.
func completeObjectEnd(s string) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// closeTruncated repairs an object cut off mid-stream: it terminates an
// unclosed string literal, then closes any open arrays and objects in
// nesting order.
func closeTruncated(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if n := len(stack); n > 0 && stack[n-1] == '{' {
				stack = stack[:n-1]
			}
		case ']':
			if n := len(stack); n > 0 && stack[n-1] == '[' {
				stack = stack[:n-1]
			}
		}
	}

	closed := s
	if inString {
		closed += `"`
	}
	// A trailing comma or a dangling "key": would still break the parse
	// once we close the braces.
	closed = strings.TrimRight(closed, " \t\r\n")
	if strings.HasSuffix(closed, ",") {
		closed = strings.TrimRight(closed[:len(closed)-1], " \t\r\n")
	}
	if strings.HasSuffix(closed, ":") {
		closed += " null"
	}

	var tail strings.Builder
	tail.WriteString(closed)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '[' {
			tail.WriteByte(']')
		} else {
			tail.WriteByte('}')
		}
	}
	return tail.String()
}
