package rules

import (
	"fmt"
	"strings"
)

// Patterns shared by the Java and C# source tables.
const (
	// indent, modifier, static, return type, name, params
	cMethod = `(?m)^([ \t]*)(?:(public|private|protected|internal)\s+)?((?:static\s+)?)(?:(?:final|override|virtual|abstract|async|sealed)\s+)*([\w\[\]<>,]+)\s+(\w+)\s*\(([^)]*)\)\s*(?:throws\s+[\w, ]+)?\s*\{`
	// indent, name, params
	cConstructor = `(?m)^([ \t]*)(?:public|private|protected|internal)\s+(\w+)\s*\(([^)]*)\)\s*\{`
	// indent, modifier, type, name
	cField = `(?m)^([ \t]*)(private|protected|public|internal)\s+(?:static\s+)?(?:final\s+|readonly\s+)?([\w\[\]<>]+)\s+(\w+)\s*;`
	// indent, name
	cFieldInit = `(?m)^([ \t]*)(?:private|protected|public|internal)\s+(?:static\s+)?(?:final\s+|readonly\s+)?[\w\[\]<>]+\s+(\w+)\s*=\s*`
	// type, name
	cLocal = `\b(?:final\s+)?(int|long|short|double|float|decimal|boolean|bool|String|string|char|var)\s+(\w+)\s*=`
	// indent, class, base
	cClass = `(?m)^([ \t]*)(?:(?:public|private|protected|internal|final|abstract|static|sealed)\s+)*class\s+(\w+)(?:\s*(?:extends|:)\s*(\w+))?[^{\n]*\s*\{`
)

// methodGuard skips matches whose "return type" is a statement keyword.
func methodGuard(fn func(m []string) string) func(m []string) string {
	return func(m []string) string {
		if controlKeywords[m[4]] || controlKeywords[m[5]] {
			return m[0]
		}
		return fn(m)
	}
}

var javaToTypeScriptRules = chain{
	replace(`(?m)^[ \t]*(?:package|import)\s+[\w.*]+;[ \t]*\n?`, ""),
	replace(`(?m)^([ \t]*)@Override[ \t]*\n`, ""),
	replaceFunc(cClass, func(m []string) string {
		if m[3] != "" {
			return fmt.Sprintf("%sclass %s extends %s {", m[1], m[2], m[3])
		}
		return fmt.Sprintf("%sclass %s {", m[1], m[2])
	}),
	replaceFunc(cConstructor, func(m []string) string {
		return fmt.Sprintf("%sconstructor(%s) {", m[1], nameTypeParams(m[3], javaToTSTypes))
	}),
	replaceFunc(cMethod, methodGuard(func(m []string) string {
		mod := ""
		if m[2] == "private" || m[2] == "protected" {
			mod = m[2] + " "
		}
		return fmt.Sprintf("%s%s%s%s(%s): %s {", m[1], mod, m[3], m[5], nameTypeParams(m[6], javaToTSTypes), javaToTSTypes.lookup(m[4]))
	})),
	replaceFunc(cField, func(m []string) string {
		return fmt.Sprintf("%s%s %s: %s;", m[1], m[2], m[4], javaToTSTypes.lookup(m[3]))
	}),
	replaceFunc(cLocal, func(m []string) string {
		if m[1] == "var" {
			return fmt.Sprintf("let %s =", m[2])
		}
		return fmt.Sprintf("let %s: %s =", m[2], javaToTSTypes.lookup(m[1]))
	}),
	replace(`System\.out\.println\(`, "console.log("),
	replace(`\b(?:int|long|double|float)\b`, "number"),
	replace(`\bString\b`, "string"),
}

func javaToTypeScript(code string) string {
	return javaToTypeScriptRules.apply(code)
}

var javaToCSharpRules = chain{
	replace(`(?m)^[ \t]*import\s+java\.util\.[\w.*]+;[ \t]*\n?`, "using System.Collections.Generic;\n"),
	replace(`(?m)^[ \t]*(?:package|import)\s+[\w.*]+;[ \t]*\n?`, ""),
	replace(`(?m)^([ \t]*)@Override[ \t]*\n`, ""),
	replace(`\bpublic\s+static\s+void\s+main\s*\(\s*String\s*\[\]\s*(\w+)\s*\)`, "public static void Main(string[] ${1})"),
	replace(`System\.out\.println\(`, "Console.WriteLine("),
	replace(`System\.out\.print\(`, "Console.Write("),
	replace(`\b(private|protected|public)\s+final\s+`, "${1} readonly "),
	replace(`\bfinal\s+`, ""),
	replace(`\bclass\s+(\w+)\s+(?:extends|implements)\s+(\w+)`, "class ${1} : ${2}"),
	replace(`\bString\b`, "string"),
	replace(`\bboolean\b`, "bool"),
	replace(`\bArrayList\b`, "List"),
	replace(`\bHashMap\b`, "Dictionary"),
	replace(`\.length\(\)`, ".Length"),
	replace(`\.equals\(`, ".Equals("),
	replace(`\.toString\(\)`, ".ToString()"),
}

func javaToCSharp(code string) string {
	out := javaToCSharpRules.apply(code)
	// Collapse repeated using lines produced from multiple java.util imports
	seen := make(map[string]bool)
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "using ") {
			if seen[l] {
				continue
			}
			seen[l] = true
		}
		lines = append(lines, l)
	}
	return strings.Join(lines, "\n")
}

var javaToPythonRules = chain{
	replace(`(?m)^[ \t]*(?:package|import|using)\s+[\w.*]+;[ \t]*\n?`, ""),
	replace(`(?m)^([ \t]*)@Override[ \t]*\n`, ""),
	replaceFunc(cClass, func(m []string) string {
		if m[3] != "" {
			return fmt.Sprintf("%sclass %s(%s):", m[1], m[2], m[3])
		}
		return fmt.Sprintf("%sclass %s:", m[1], m[2])
	}),
	replaceFunc(cConstructor, func(m []string) string {
		return fmt.Sprintf("%sdef __init__(%s):", m[1], selfParams(bareParams(m[3])))
	}),
	replaceFunc(cMethod, methodGuard(func(m []string) string {
		if m[3] != "" {
			return fmt.Sprintf("%s@staticmethod\n%sdef %s(%s):", m[1], m[1], m[5], bareParams(m[6]))
		}
		return fmt.Sprintf("%sdef %s(%s):", m[1], m[5], selfParams(bareParams(m[6])))
	})),
	replace(cField, "${1}# ${4}: ${3}"),
	replace(cFieldInit, "${1}${2} = "),
	replace(cLocal, "${2} ="),
	replace(`System\.out\.println\(([^;]*)\);`, "print(${1})"),
	replace(`\bthis\.`, "self."),
	replace(`&&`, "and"),
	replace(`\|\|`, "or"),
	replace(`\btrue\b`, "True"),
	replace(`\bfalse\b`, "False"),
	replace(`\bnull\b`, "None"),
	replace(`(?m)^([ \t]*)//`, "${1}#"),
	replace(`(?m)^([ \t]*)\}\s*else\s+if\s*\((.*)\)\s*\{`, "${1}elif ${2}:"),
	replace(`(?m)^([ \t]*)\}\s*else\s*\{`, "${1}else:"),
	replace(`(?m)^([ \t]*)(if|while)\s*\((.*)\)\s*\{[ \t]*$`, "${1}${2} ${3}:"),
	replace(`(?m)[ \t]*\{[ \t]*$`, ":"),
	replace(`(?m)^[ \t]*\}[ \t]*\n?`, ""),
	replace(`(?m);[ \t]*$`, ""),
}

func javaToPython(code string) string {
	return javaToPythonRules.apply(code)
}
