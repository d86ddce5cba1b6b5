package codeshift

import (
	"fmt"
	"regexp"
	"strings"
)

// KeyNormalization selects how aggressively source code is normalized
// before it is used as a pattern cache key.
type KeyNormalization string

const (
	// NormalizeLiterals replaces string and numeric literals and generic
	// keyword/type tokens with placeholders, preserving other identifiers.
	NormalizeLiterals KeyNormalization = "literals"
	// NormalizeAggressive additionally replaces every remaining identifier
	// with IDENTIFIER. Higher hit rate, more false-positive reuse.
	NormalizeAggressive KeyNormalization = "aggressive"
)

// Placeholders substituted into pattern key signatures.
const (
	PlaceholderString     = "STRING"
	PlaceholderNumber     = "NUMBER"
	PlaceholderKeyword    = "KEYWORD"
	PlaceholderType       = "TYPE"
	PlaceholderIdentifier = "IDENTIFIER"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	stringPattern     = regexp.MustCompile("\"(?:[^\"\\\\]|\\\\.)*\"|'(?:[^'\\\\]|\\\\.)*'|`[^`]*`")
	numberPattern     = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	wordPattern       = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// keywordTokens are declaration and control-flow keywords shared by the
// supported languages.
var keywordTokens = toSet(
	"let", "const", "var", "val", "function", "func", "fn", "def", "lambda",
	"class", "struct", "interface", "enum", "trait", "impl", "type",
	"public", "private", "protected", "static", "final", "readonly", "async", "await",
	"return", "if", "else", "elif", "for", "while", "do", "switch", "case", "match",
	"break", "continue", "new", "this", "self", "extends", "implements",
	"import", "from", "export", "package", "using", "namespace", "pub", "mut",
	"try", "catch", "except", "finally", "throw", "raise", "in", "of",
	"true", "false", "True", "False", "null", "nil", "None", "undefined",
)

// typeTokens are primitive and built-in type names.
var typeTokens = toSet(
	"int", "Integer", "long", "short", "byte", "float", "double", "decimal",
	"number", "string", "String", "str", "char", "bool", "boolean", "Boolean",
	"void", "any", "object", "Object", "dynamic", "auto",
	"i32", "i64", "u32", "u64", "f32", "f64", "usize",
	"int32", "int64", "float32", "float64", "rune", "List", "Map", "Dictionary",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func isPlaceholder(word string) bool {
	switch word {
	case PlaceholderString, PlaceholderNumber, PlaceholderKeyword, PlaceholderType, PlaceholderIdentifier:
		return true
	}
	return false
}

// Signature returns the normalized structural signature of code.
// Two inputs that differ only in literal values (and, in aggressive mode,
// identifier names) produce the same signature.
func Signature(code string, level KeyNormalization) string {
	sig := whitespacePattern.ReplaceAllString(code, " ")

	// Strings first so their contents are never tokenized
	sig = stringPattern.ReplaceAllString(sig, PlaceholderString)
	sig = numberPattern.ReplaceAllString(sig, PlaceholderNumber)

	sig = wordPattern.ReplaceAllStringFunc(sig, func(word string) string {
		switch {
		case isPlaceholder(word):
			return word
		case keywordTokens[word]:
			return PlaceholderKeyword
		case typeTokens[word]:
			return PlaceholderType
		case level == NormalizeAggressive:
			return PlaceholderIdentifier
		default:
			return word
		}
	})

	return strings.TrimSpace(sig)
}

// PatternKey returns the cache key for converting code from one language to another.
// Format: "{from}->{to}:{signature}".
func PatternKey(code string, from, to Language, level KeyNormalization) string {
	return fmt.Sprintf("%s->%s:%s", from, to, Signature(code, level))
}
