package codeshift

import "strings"

// placeholderBodies are responses that look like code but carry none.
var placeholderBodies = map[string]bool{
	"...":               true,
	"…":                 true,
	"pass":              true,
	"todo":              true,
	"n/a":               true,
	"// ...":            true,
	"# ...":             true,
	"/* ... */":         true,
	"// your code here": true,
	"# your code here":  true,
}

// ValidateOutput checks that model output is usable code in the target
// language. It rejects empty output, placeholder-only output and output
// that consists solely of comments.
func ValidateOutput(code string, to Language) error {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return &ValidationError{Reason: "output is empty"}
	}

	if placeholderBodies[strings.ToLower(trimmed)] {
		return &ValidationError{Reason: "output is a placeholder"}
	}

	prefix := to.Comment()
	hasCode := false
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isCommentLine(line, prefix) {
			continue
		}
		if placeholderBodies[strings.ToLower(line)] {
			continue
		}
		hasCode = true
		break
	}
	if !hasCode {
		return &ValidationError{Reason: "output contains only comments"}
	}
	return nil
}

func isCommentLine(line, prefix string) bool {
	if strings.HasPrefix(line, prefix) {
		return true
	}
	// Block comment fragments in C-family languages
	if prefix == "//" {
		return strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*")
	}
	return false
}
