package codeshift

import (
	"regexp"
	"strings"
)

// Difference types reported by FindDifferences.
const (
	DifferenceMissingImports = "missing_imports"
	DifferenceBetterTyping   = "better_typing"
)

// Difference is an advisory observation about how the model result
// improved on the rule result.
type Difference struct {
	Type        string   `json:"type"`
	Rule        []string `json:"manual,omitempty"`      // Matching lines in the rule result
	Model       []string `json:"ai,omitempty"`          // Matching lines in the model result
	Improvement string   `json:"improvement,omitempty"` // Human-readable summary
}

var typeAnnotationPattern = regexp.MustCompile(`:\s*\w+`)

var importPrefixes = []string{"import ", "using ", "#include", "from "}

// importLines returns the trimmed lines of code that look like imports.
func importLines(code string) []string {
	var out []string
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, prefix := range importPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				out = append(out, trimmed)
				break
			}
		}
	}
	return out
}

// FindDifferences compares a rule result with a model result and reports
// heuristic improvements: imports the rules missed and a higher density of
// type annotations. The result is advisory and never affects which text wins.
func FindDifferences(rule, model string) []Difference {
	var diffs []Difference

	ruleImports := importLines(rule)
	modelImports := importLines(model)
	if len(modelImports) > len(ruleImports) {
		diffs = append(diffs, Difference{
			Type:  DifferenceMissingImports,
			Rule:  ruleImports,
			Model: modelImports,
		})
	}

	ruleTypes := typeAnnotationPattern.FindAllString(rule, -1)
	modelTypes := typeAnnotationPattern.FindAllString(model, -1)
	if len(modelTypes) > len(ruleTypes) {
		diffs = append(diffs, Difference{
			Type:        DifferenceBetterTyping,
			Improvement: "AI added more type annotations",
		})
	}

	return diffs
}
