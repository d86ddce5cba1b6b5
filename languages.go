package codeshift

import (
	"sort"
	"strings"

	enry "github.com/go-enry/go-enry/v2"
)

// Language identifies a supported programming language.
type Language string

// Supported languages.
const (
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
	Java       Language = "java"
	CSharp     Language = "csharp"
	Python     Language = "python"
	Cpp        Language = "cpp"
	Go         Language = "go"
	Rust       Language = "rust"
)

// LanguageInfo describes how a language is displayed and commented.
type LanguageInfo struct {
	Name      string // Display name used in prompts and headers
	Extension string // File extension including the dot
	Comment   string // Line-comment prefix
}

// Languages maps every supported language to its display metadata.
var Languages = map[Language]LanguageInfo{
	TypeScript: {Name: "TypeScript", Extension: ".ts", Comment: "//"},
	JavaScript: {Name: "JavaScript", Extension: ".js", Comment: "//"},
	Java:       {Name: "Java", Extension: ".java", Comment: "//"},
	CSharp:     {Name: "C#", Extension: ".cs", Comment: "//"},
	Python:     {Name: "Python", Extension: ".py", Comment: "#"},
	Cpp:        {Name: "C++", Extension: ".cpp", Comment: "//"},
	Go:         {Name: "Go", Extension: ".go", Comment: "//"},
	Rust:       {Name: "Rust", Extension: ".rs", Comment: "//"},
}

// languageAliases maps lowercase user input to a language.
var languageAliases = map[string]Language{
	"ts":     TypeScript,
	"js":     JavaScript,
	"c#":     CSharp,
	"cs":     CSharp,
	"py":     Python,
	"c++":    Cpp,
	"golang": Go,
	"rs":     Rust,
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	_, ok := Languages[l]
	return ok
}

// Name returns the display name of the language.
// Falls back to the identifier itself if unknown.
func (l Language) Name() string {
	if info, ok := Languages[l]; ok {
		return info.Name
	}
	return string(l)
}

// Comment returns the line-comment prefix of the language.
func (l Language) Comment() string {
	if info, ok := Languages[l]; ok {
		return info.Comment
	}
	return "//"
}

// Extension returns the file extension of the language.
func (l Language) Extension() string {
	return Languages[l].Extension
}

// SupportedLanguages returns all supported languages in stable order.
func SupportedLanguages() []Language {
	out := make([]Language, 0, len(Languages))
	for l := range Languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseLanguage resolves an identifier, alias, display name or file
// extension (e.g. "TS", "c#", "C++", ".rs") to a language.
func ParseLanguage(s string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", &UnsupportedLanguageError{Name: s}
	}
	if l := Language(key); l.Valid() {
		return l, nil
	}
	if l, ok := languageAliases[key]; ok {
		return l, nil
	}
	for l, info := range Languages {
		if strings.ToLower(info.Name) == key || info.Extension == key {
			return l, nil
		}
	}
	return "", &UnsupportedLanguageError{Name: s}
}

// DetectLanguage guesses the language of content, using filename as a hint
// when it is not empty. Detection tries the file extension first and then
// falls back to content analysis.
func DetectLanguage(filename string, content []byte) (Language, error) {
	if filename != "" {
		if name, safe := enry.GetLanguageByExtension(filename); safe && name != "" {
			if l, err := ParseLanguage(name); err == nil {
				return l, nil
			}
		}
	}

	if len(content) == 0 {
		return "", &UnsupportedLanguageError{Name: filename}
	}

	name := enry.GetLanguage(filename, content)
	if name == "" || name == "Text" {
		return "", &UnsupportedLanguageError{Name: filename}
	}
	return ParseLanguage(name)
}
