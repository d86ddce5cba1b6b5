package codeshift

import (
	"errors"
	"testing"
)

func TestLanguage_Info(t *testing.T) {
	tests := []struct {
		lang      Language
		name      string
		comment   string
		extension string
	}{
		{TypeScript, "TypeScript", "//", ".ts"},
		{CSharp, "C#", "//", ".cs"},
		{Python, "Python", "#", ".py"},
		{Cpp, "C++", "//", ".cpp"},
		{Language("cobol"), "cobol", "//", ""}, // fallback
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			if got := tt.lang.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if got := tt.lang.Comment(); got != tt.comment {
				t.Errorf("Comment() = %q, want %q", got, tt.comment)
			}
			if got := tt.lang.Extension(); got != tt.extension {
				t.Errorf("Extension() = %q, want %q", got, tt.extension)
			}
		})
	}
}

func TestSupportedLanguages(t *testing.T) {
	langs := SupportedLanguages()
	if len(langs) != 8 {
		t.Fatalf("Expected 8 languages, got %d", len(langs))
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1] >= langs[i] {
			t.Errorf("Languages not sorted: %v", langs)
		}
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected Language
	}{
		{"typescript", TypeScript},
		{"TS", TypeScript},
		{" js ", JavaScript},
		{"Java", Java},
		{"c#", CSharp},
		{"CS", CSharp},
		{"C#", CSharp},
		{"py", Python},
		{"c++", Cpp},
		{"golang", Go},
		{".rs", Rust},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLanguage(tt.input)
			if err != nil {
				t.Fatalf("ParseLanguage(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseLanguage(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseLanguage_Unknown(t *testing.T) {
	for _, input := range []string{"", "cobol", "perl"} {
		_, err := ParseLanguage(input)
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("ParseLanguage(%q): expected ErrUnsupportedLanguage, got %v", input, err)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		filename string
		expected Language
	}{
		{"Main.java", Java},
		{"main.go", Go},
		{"app.py", Python},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectLanguage(tt.filename, nil)
			if err != nil {
				t.Fatalf("DetectLanguage failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestDetectLanguage_Unknown(t *testing.T) {
	if _, err := DetectLanguage("notes.txt", nil); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
	if _, err := DetectLanguage("", nil); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
}
