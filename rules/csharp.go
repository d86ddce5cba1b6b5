package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// cProperty matches auto-properties: indent, modifier, type, name.
const cProperty = `(?m)^([ \t]*)(public|private|protected|internal)\s+([\w\[\]<>?]+)\s+(\w+)\s*\{\s*get;\s*(?:(?:private\s+)?set;\s*)?\}`

var usingLine = regexp.MustCompile(`(?m)^[ \t]*using\s+[\w.]+;[ \t]*\n?`)

var cSharpToJavaRules = chain{
	replace(`(?m)^([ \t]*)namespace\s+[\w.]+\s*;[ \t]*\n?`, ""),
	replaceFunc(cProperty, func(m []string) string {
		return fmt.Sprintf("%sprivate %s %s;", m[1], strings.TrimSuffix(m[3], "?"), m[4])
	}),
	replace(`\bpublic\s+static\s+void\s+Main\s*\(\s*string\s*\[\]\s*(\w+)\s*\)`, "public static void main(String[] ${1})"),
	replace(`Console\.WriteLine\(`, "System.out.println("),
	replace(`Console\.Write\(`, "System.out.print("),
	replace(`\bclass\s+(\w+)\s*:\s*(\w+)`, "class ${1} extends ${2}"),
	replace(`\breadonly\b`, "final"),
	replace(`\b(?:override|virtual|sealed)\s+`, ""),
	replace(`\bstring\b`, "String"),
	replace(`\bbool\b`, "boolean"),
	replace(`\bDictionary\b`, "HashMap"),
	replace(`new\s+List<([\w<>, ]*)>\(\)`, "new ArrayList<>()"),
	replace(`\.Length\b`, ".length()"),
	replace(`\.ToString\(\)`, ".toString()"),
	replace(`\.Equals\(`, ".equals("),
}

func cSharpToJava(code string) string {
	hadUsing := usingLine.MatchString(code)
	out := cSharpToJavaRules.apply(usingLine.ReplaceAllString(code, ""))
	if hadUsing {
		out = "import java.util.*;\n\n" + out
	}
	return out
}

var cSharpToTypeScriptRules = chain{
	replace(`(?m)^([ \t]*)namespace\s+[\w.]+\s*;[ \t]*\n?`, ""),
	replaceFunc(cProperty, func(m []string) string {
		typ := m[3]
		optional := strings.HasSuffix(typ, "?")
		name := m[4]
		if optional {
			name += "?"
		}
		return fmt.Sprintf("%s%s: %s;", m[1], name, cSharpToTSTypes.lookup(strings.TrimSuffix(typ, "?")))
	}),
	replaceFunc(cClass, func(m []string) string {
		if m[3] != "" {
			return fmt.Sprintf("%sclass %s extends %s {", m[1], m[2], m[3])
		}
		return fmt.Sprintf("%sclass %s {", m[1], m[2])
	}),
	replaceFunc(cConstructor, func(m []string) string {
		return fmt.Sprintf("%sconstructor(%s) {", m[1], nameTypeParams(m[3], cSharpToTSTypes))
	}),
	replaceFunc(cMethod, methodGuard(func(m []string) string {
		mod := ""
		if m[2] == "private" || m[2] == "protected" {
			mod = m[2] + " "
		}
		return fmt.Sprintf("%s%s%s%s(%s): %s {", m[1], mod, m[3], m[5], nameTypeParams(m[6], cSharpToTSTypes), cSharpToTSTypes.lookup(m[4]))
	})),
	replaceFunc(cField, func(m []string) string {
		return fmt.Sprintf("%s%s %s: %s;", m[1], m[2], m[4], cSharpToTSTypes.lookup(m[3]))
	}),
	replaceFunc(cLocal, func(m []string) string {
		if m[1] == "var" {
			return fmt.Sprintf("let %s =", m[2])
		}
		return fmt.Sprintf("let %s: %s =", m[2], cSharpToTSTypes.lookup(m[1]))
	}),
	replace(`Console\.WriteLine\(`, "console.log("),
	replace(`\.ToString\(\)`, ".toString()"),
	replace(`\bbool\b`, "boolean"),
	replace(`\b(?:int|long|double|float|decimal)\b`, "number"),
}

func cSharpToTypeScript(code string) string {
	return cSharpToTypeScriptRules.apply(usingLine.ReplaceAllString(code, ""))
}

// cSharpToPython goes through the Java rules, which share C#'s syntax.
func cSharpToPython(code string) string {
	return javaToPython(cSharpToJavaRules.apply(usingLine.ReplaceAllString(code, "")))
}
