package codeshift

import "testing"

func TestFindDifferences_MissingImports(t *testing.T) {
	rule := "public class Main {\n}"
	model := "import java.util.List;\nimport java.util.Map;\n\npublic class Main {\n}"

	diffs := FindDifferences(rule, model)

	if len(diffs) != 1 {
		t.Fatalf("Expected 1 difference, got %d: %+v", len(diffs), diffs)
	}
	if diffs[0].Type != DifferenceMissingImports {
		t.Errorf("Expected missing_imports, got %s", diffs[0].Type)
	}
	if len(diffs[0].Model) != 2 {
		t.Errorf("Expected 2 model import lines, got %d", len(diffs[0].Model))
	}
	if len(diffs[0].Rule) != 0 {
		t.Errorf("Expected no rule import lines, got %d", len(diffs[0].Rule))
	}
}

func TestFindDifferences_ImportStyles(t *testing.T) {
	model := "using System;\n#include <vector>\nfrom typing import List\n  import os"

	diffs := FindDifferences("", model)
	if len(diffs) != 1 || len(diffs[0].Model) != 4 {
		t.Fatalf("Expected 4 import lines across styles, got %+v", diffs)
	}
}

func TestFindDifferences_BetterTyping(t *testing.T) {
	rule := "let x = 5\nlet y = 'a'"
	model := "let x: number = 5\nlet y: string = 'a'"

	diffs := FindDifferences(rule, model)

	if len(diffs) != 1 {
		t.Fatalf("Expected 1 difference, got %d", len(diffs))
	}
	if diffs[0].Type != DifferenceBetterTyping {
		t.Errorf("Expected better_typing, got %s", diffs[0].Type)
	}
	if diffs[0].Improvement == "" {
		t.Error("Expected improvement text")
	}
}

func TestFindDifferences_None(t *testing.T) {
	code := "import os\nx: int = 1"
	if diffs := FindDifferences(code, code); len(diffs) != 0 {
		t.Errorf("Expected no differences for identical code, got %+v", diffs)
	}

	// Fewer imports in the model result is not reported
	if diffs := FindDifferences("import os\nimport sys", "import os"); len(diffs) != 0 {
		t.Errorf("Expected no differences, got %+v", diffs)
	}
}
