package rules

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	pyToJavaTypes = typeMap{
		"int": "int", "float": "double", "str": "String", "bool": "boolean",
		"None": "void", "list": "List<Object>", "dict": "Map<String, Object>", "Any": "Object",
	}
	pyToCSharpTypes = typeMap{
		"int": "int", "float": "double", "str": "string", "bool": "bool",
		"None": "void", "list": "List<object>", "dict": "Dictionary<string, object>", "Any": "object",
	}
	pyToTSTypes = typeMap{
		"int": "number", "float": "number", "str": "string", "bool": "boolean",
		"None": "void", "list": "any[]", "dict": "Record<string, any>", "Any": "any",
	}
)

// pythonBlocks turns indentation-delimited blocks into braces. Block
// headers lose their trailing colon, statements gain a semicolon and
// comments switch to "//".
func pythonBlocks(code string) string {
	var (
		out   []string
		stack []string
	)
	closeTo := func(indent string) {
		for len(stack) > 0 && len(indent) <= len(stack[len(stack)-1]) {
			out = append(out, stack[len(stack)-1]+"}")
			stack = stack[:len(stack)-1]
		}
	}

	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			out = append(out, "")
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		closeTo(indent)

		switch {
		case strings.HasPrefix(trimmed, "#"):
			out = append(out, indent+"//"+strings.TrimPrefix(trimmed, "#"))
		case strings.HasPrefix(trimmed, "@"):
			out = append(out, indent+"// "+trimmed)
		case strings.HasSuffix(trimmed, ":"):
			out = append(out, indent+strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))+" {")
			stack = append(stack, indent)
		case trimmed == "pass":
		default:
			out = append(out, indent+trimmed+";")
		}
	}
	closeTo("")

	// Blank lines sit before the braces that close over them.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// splitSelf removes a leading self or cls parameter.
func splitSelf(params string) (rest string, instance bool) {
	first, rest, _ := strings.Cut(params, ",")
	switch strings.TrimSpace(first) {
	case "self", "cls":
		return strings.TrimSpace(rest), true
	}
	return params, false
}

const (
	// indent, name, params, return annotation
	pyDef = `(?m)^([ \t]*)def\s+(\w+)\s*\(([^)]*)\)\s*(?:->\s*([\w\[\], ]+?))?\s*\{`
	// indent, name, base
	pyClass = `(?m)^([ \t]*)class\s+(\w+)\s*(?:\(\s*(\w*)\s*\))?\s*\{`
)

// pyControl rewrites Python expressions and conditionals shared by every
// brace target.
var pyControl = chain{
	replace(`(?m)^([ \t]*)//\s*@\w+.*\n`, ""),
	replace(`(?m)^([ \t]*)elif\s+(.+?)\s*\{$`, "${1}else if (${2}) {"),
	replace(`(?m)^([ \t]*)(if|while)\s+(.+?)\s*\{$`, "${1}${2} (${3}) {"),
	replace(`\bself\.`, "this."),
	replace(`\bTrue\b`, "true"),
	replace(`\bFalse\b`, "false"),
	replace(`\bNone\b`, "null"),
	replace(`[ \t]+is[ \t]+not[ \t]+`, " != "),
	replace(`[ \t]+is[ \t]+`, " == "),
	replace(`[ \t]+and[ \t]+`, " && "),
	replace(`[ \t]+or[ \t]+`, " || "),
	replace(`\bnot[ \t]+`, "!"),
}

func baseClass(base string) string {
	if base == "object" {
		return ""
	}
	return base
}

var pyInit = regexp.MustCompile(`\b__init__\(`)

var pythonToJavaRules = chain{
	replaceFunc(pyClass, func(m []string) string {
		if base := baseClass(m[3]); base != "" {
			return fmt.Sprintf("%spublic class %s extends %s {", m[1], m[2], base)
		}
		return fmt.Sprintf("%spublic class %s {", m[1], m[2])
	}),
	replaceFunc(pyDef, func(m []string) string {
		params, instance := splitSelf(m[3])
		params = typeFirstParams(params, pyToJavaTypes, "Object")
		if m[2] == "__init__" {
			return fmt.Sprintf("%spublic __init__(%s) {", m[1], params)
		}
		ret := "void"
		if m[4] != "" {
			ret = pyToJavaTypes.lookup(m[4])
		}
		mods := "public "
		if !instance {
			mods = "public static "
		}
		return fmt.Sprintf("%s%s%s %s(%s) {", m[1], mods, ret, m[2], params)
	}),
	replace(`(?m)^([ \t]*)for\s+(\w+)\s+in\s+range\((\w+)\)\s*\{$`, "${1}for (int ${2} = 0; ${2} < ${3}; ${2}++) {"),
	replace(`(?m)^([ \t]*)for\s+(\w+)\s+in\s+(.+?)\s*\{$`, "${1}for (var ${2} : ${3}) {"),
	replace(`\bprint\(`, "System.out.println("),
	replace(`\blen\((\w+)\)`, "${1}.size()"),
}

func pythonToJava(code string) string {
	body := pythonToJavaRules.apply(pyControl.apply(pythonBlocks(code)))
	body = renameInClasses(body, pyInit, func(class string) string { return class + "(" })
	if !classDecl.MatchString(body) {
		body = "public class ConvertedClass {\n" + indentLines(body, "    ") + "\n}"
	}
	return "import java.util.*;\n\n" + body
}

var pythonToTypeScriptRules = chain{
	replaceFunc(pyClass, func(m []string) string {
		if base := baseClass(m[3]); base != "" {
			return fmt.Sprintf("%sclass %s extends %s {", m[1], m[2], base)
		}
		return fmt.Sprintf("%sclass %s {", m[1], m[2])
	}),
	replaceFunc(pyDef, func(m []string) string {
		params, instance := splitSelf(m[3])
		params = mapParams(params, func(name, typ, def string) string {
			out := name + ": any"
			if typ != "" {
				out = name + ": " + pyToTSTypes.lookup(typ)
			}
			if def != "" {
				out += " " + def
			}
			return out
		})
		if m[2] == "__init__" {
			return fmt.Sprintf("%sconstructor(%s) {", m[1], params)
		}
		ret := "any"
		if m[4] != "" {
			ret = pyToTSTypes.lookup(m[4])
		}
		if !instance {
			return fmt.Sprintf("%sfunction %s(%s): %s {", m[1], m[2], params, ret)
		}
		return fmt.Sprintf("%s%s(%s): %s {", m[1], m[2], params, ret)
	}),
	replace(`(?m)^([ \t]*)for\s+(\w+)\s+in\s+range\((\w+)\)\s*\{$`, "${1}for (let ${2} = 0; ${2} < ${3}; ${2}++) {"),
	replace(`(?m)^([ \t]*)for\s+(\w+)\s+in\s+(.+?)\s*\{$`, "${1}for (const ${2} of ${3}) {"),
	replace(`\bprint\(`, "console.log("),
	replace(`\blen\((\w+)\)`, "${1}.length"),
}

func pythonToTypeScript(code string) string {
	return pythonToTypeScriptRules.apply(pyControl.apply(pythonBlocks(code)))
}

var pythonToCSharpRules = chain{
	replaceFunc(pyClass, func(m []string) string {
		if base := baseClass(m[3]); base != "" {
			return fmt.Sprintf("%spublic class %s : %s {", m[1], m[2], base)
		}
		return fmt.Sprintf("%spublic class %s {", m[1], m[2])
	}),
	replaceFunc(pyDef, func(m []string) string {
		params, instance := splitSelf(m[3])
		params = typeFirstParams(params, pyToCSharpTypes, "object")
		if m[2] == "__init__" {
			return fmt.Sprintf("%spublic __init__(%s) {", m[1], params)
		}
		ret := "void"
		if m[4] != "" {
			ret = pyToCSharpTypes.lookup(m[4])
		}
		mods := "public "
		if !instance {
			mods = "public static "
		}
		return fmt.Sprintf("%s%s%s %s(%s) {", m[1], mods, ret, m[2], params)
	}),
	replace(`(?m)^([ \t]*)for\s+(\w+)\s+in\s+range\((\w+)\)\s*\{$`, "${1}for (int ${2} = 0; ${2} < ${3}; ${2}++) {"),
	replace(`(?m)^([ \t]*)for\s+(\w+)\s+in\s+(.+?)\s*\{$`, "${1}foreach (var ${2} in ${3}) {"),
	replace(`\bprint\(`, "Console.WriteLine("),
	replace(`\blen\((\w+)\)`, "${1}.Count"),
}

func pythonToCSharp(code string) string {
	body := pythonToCSharpRules.apply(pyControl.apply(pythonBlocks(code)))
	body = renameInClasses(body, pyInit, func(class string) string { return class + "(" })
	return "using System;\nusing System.Collections.Generic;\n\n" + body
}
