package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Patterns shared by the TypeScript/JavaScript source tables.
const (
	tsFunctionTyped = `function\s+(\w+)\s*\(([^)]*)\)\s*:\s*([\w\[\]<>]+)\s*\{`
	tsFunction      = `function\s+(\w+)\s*\(([^)]*)\)\s*\{`
	tsInterface     = `(?:export\s+)?interface\s+(\w+)\s*\{([^}]*)\}`
	tsMethod        = `(?m)^([ \t]*)(?:(public|private|protected)\s+)?(\w+)\s*\(([^)]*)\)\s*:\s*([\w\[\]<>]+)\s*\{`
	tsField         = `(?m)^([ \t]*)(?:(public|private|protected|readonly)\s+)?(\w+)\s*:\s*([\w\[\]<>]+)\s*;`
	tsArrayField    = `(?m)^([ \t]*)(?:(?:private|public|protected)\s+)?(\w+)\s*:\s*(\w+)\[\]\s*=\s*\[\]\s*;`
	tsConstructor   = `(?m)^([ \t]*)public\s+(\w+)\s*\(([^)]*)\)\s*\{`
	tsDeclaration   = `\b(const|let)\s+(\w+)\s*(?::\s*([\w\[\]<>]+))?\s*=\s*([^;\n]*)`
	tsPush          = `this\.(\w+)\.push\(([^)]+)\);`
	tsFind          = `this\.(\w+)\.find\((\w+)\s*=>\s*([^)]+)\)`
	tsUndefined     = `(\w+)\s*\|\s*undefined`
)

var jsVar = regexp.MustCompile(`\bvar\s+`)

// field is a property parsed from an interface body.
type field struct {
	name     string
	typ      string
	optional bool
}

var interfaceField = regexp.MustCompile(`^(?:readonly\s+)?(\w+)(\?)?\s*:\s*([\w\[\]<>]+)$`)

// interfaceFields parses "a: number; b?: string[]" style interface bodies.
func interfaceFields(body string) []field {
	var out []field
	parts := strings.FieldsFunc(body, func(r rune) bool { return r == '\n' || r == ';' || r == ',' })
	for _, p := range parts {
		if m := interfaceField.FindStringSubmatch(strings.TrimSpace(p)); m != nil {
			out = append(out, field{name: m[1], typ: m[3], optional: m[2] == "?"})
		}
	}
	return out
}

// viaTypeScript adapts a TypeScript rule for JavaScript input by turning
// var declarations into let.
func viaTypeScript(fn RewriteFunc) RewriteFunc {
	return func(code string) string {
		return fn(jsVar.ReplaceAllString(code, "let "))
	}
}

func modifierOr(mod, fallback string) string {
	if mod == "" || mod == "readonly" {
		return fallback
	}
	return mod
}

var typeScriptToJavaRules = chain{
	replaceFunc(tsInterface, func(m []string) string {
		var b strings.Builder
		fmt.Fprintf(&b, "public class %s {\n", m[1])
		for _, f := range interfaceFields(m[2]) {
			typ := tsToJavaTypes.lookup(f.typ)
			if elem, ok := strings.CutSuffix(typ, "[]"); ok {
				typ = "List<" + boxed(elem) + ">"
			}
			fmt.Fprintf(&b, "    private %s %s;\n", typ, f.name)
		}
		b.WriteString("}")
		return b.String()
	}),
	replaceFunc(tsConstructor, func(m []string) string {
		return fmt.Sprintf("%spublic %s(%s) {", m[1], m[2], typeFirstParams(m[3], tsToJavaTypes, "Object"))
	}),
	replaceFunc(tsFunctionTyped, func(m []string) string {
		return fmt.Sprintf("public static %s %s(%s) {", tsToJavaTypes.lookup(m[3]), m[1], typeFirstParams(m[2], tsToJavaTypes, "Object"))
	}),
	replaceFunc(tsFunction, func(m []string) string {
		return fmt.Sprintf("public static void %s(%s) {", m[1], typeFirstParams(m[2], tsToJavaTypes, "Object"))
	}),
	replace(`(?m)^([ \t]*)(?:export\s+)?class\s+(\w+)`, "${1}public class ${2}"),
	replaceFunc(tsArrayField, func(m []string) string {
		elem := boxed(tsToJavaTypes.lookup(m[3]))
		return fmt.Sprintf("%sprivate List<%s> %s = new ArrayList<>();", m[1], elem, m[2])
	}),
	replaceFunc(tsField, func(m []string) string {
		return fmt.Sprintf("%s%s %s %s;", m[1], modifierOr(m[2], "private"), tsToJavaTypes.lookup(m[4]), m[3])
	}),
	replaceFunc(tsMethod, func(m []string) string {
		return fmt.Sprintf("%s%s %s %s(%s) {", m[1], modifierOr(m[2], "public"), tsToJavaTypes.lookup(m[5]), m[3], typeFirstParams(m[4], tsToJavaTypes, "Object"))
	}),
	replace(tsUndefined, "${1}"),
	replace(tsPush, "this.${1}.add(${2});"),
	replace(tsFind, "this.${1}.stream().filter(${2} -> ${3}).findFirst().orElse(null)"),
	replaceFunc(tsDeclaration, func(m []string) string {
		typ := javaLiteralTypes[literalKind(m[4])]
		if m[3] != "" {
			typ = tsToJavaTypes.lookup(m[3])
		}
		if typ == "" {
			typ = "var"
		}
		prefix := ""
		if m[1] == "const" {
			prefix = "final "
		}
		return fmt.Sprintf("%s%s %s = %s", prefix, typ, m[2], m[4])
	}),
	replace(`console\.log\(`, "System.out.println("),
	replace(`Math\.floor\(`, "(int) Math.floor("),
	replace(`===`, "=="),
	replace(`!==`, "!="),
	replace(`\.\.\.`, ""),
}

func typeScriptToJava(code string) string {
	code = renameConstructors(code, "public ")
	return "\n" + typeScriptToJavaRules.apply(code)
}

var typeScriptToCSharpRules = chain{
	replaceFunc(tsInterface, func(m []string) string {
		var b strings.Builder
		fmt.Fprintf(&b, "public class %s\n{\n", m[1])
		for _, f := range interfaceFields(m[2]) {
			typ := tsToCSharpTypes.lookup(f.typ)
			if elem, ok := strings.CutSuffix(typ, "[]"); ok {
				typ = "List<" + elem + ">"
			}
			if f.optional {
				typ += "?"
			}
			fmt.Fprintf(&b, "    public %s %s { get; set; }\n", typ, f.name)
		}
		b.WriteString("}")
		return b.String()
	}),
	replaceFunc(tsConstructor, func(m []string) string {
		return fmt.Sprintf("%spublic %s(%s)\n%s{", m[1], m[2], typeFirstParams(m[3], tsToCSharpTypes, "object"), m[1])
	}),
	replaceFunc(tsFunctionTyped, func(m []string) string {
		return fmt.Sprintf("public static %s %s(%s)\n{", tsToCSharpTypes.lookup(m[3]), m[1], typeFirstParams(m[2], tsToCSharpTypes, "object"))
	}),
	replaceFunc(tsFunction, func(m []string) string {
		return fmt.Sprintf("public static void %s(%s)\n{", m[1], typeFirstParams(m[2], tsToCSharpTypes, "object"))
	}),
	replace(`(?m)^([ \t]*)(?:export\s+)?class\s+(\w+)\s*\{`, "${1}public class ${2}\n${1}{"),
	replaceFunc(tsArrayField, func(m []string) string {
		elem := tsToCSharpTypes.lookup(m[3])
		return fmt.Sprintf("%sprivate List<%s> %s = new List<%s>();", m[1], elem, m[2], elem)
	}),
	replaceFunc(tsField, func(m []string) string {
		return fmt.Sprintf("%s%s %s %s;", m[1], modifierOr(m[2], "private"), tsToCSharpTypes.lookup(m[4]), m[3])
	}),
	replaceFunc(tsMethod, func(m []string) string {
		return fmt.Sprintf("%s%s %s %s(%s)\n%s{", m[1], modifierOr(m[2], "public"), tsToCSharpTypes.lookup(m[5]), m[3], typeFirstParams(m[4], tsToCSharpTypes, "object"), m[1])
	}),
	replace(tsUndefined, "${1}?"),
	replace(tsPush, "this.${1}.Add(${2});"),
	replace(tsFind, "this.${1}.FirstOrDefault(${2} => ${3})"),
	replaceFunc(tsDeclaration, func(m []string) string {
		typ := "var"
		if m[3] != "" {
			typ = tsToCSharpTypes.lookup(m[3])
		}
		if lit, ok := cSharpLiteralTypes[literalKind(m[4])]; ok && m[1] == "const" {
			return fmt.Sprintf("const %s %s = %s", lit, m[2], m[4])
		}
		return fmt.Sprintf("%s %s = %s", typ, m[2], m[4])
	}),
	replace(`console\.log\(`, "Console.WriteLine("),
	replace(`Math\.floor\(`, "(int)Math.Floor("),
	replace(`\.toString\(\)`, ".ToString()"),
	replace(`===`, "=="),
	replace(`!==`, "!="),
	replace(`\.\.\.`, ""),
}

func typeScriptToCSharp(code string) string {
	code = renameConstructors(code, "public ")
	return "using System;\n\n" + typeScriptToCSharpRules.apply(code)
}

var typeScriptToPythonRules = chain{
	replaceFunc(tsInterface, func(m []string) string {
		var b strings.Builder
		fmt.Fprintf(&b, "@dataclass\nclass %s:", m[1])
		fields := interfaceFields(m[2])
		if len(fields) == 0 {
			b.WriteString("\n    pass")
		}
		for _, f := range fields {
			typ := tsToPythonTypes.lookup(f.typ)
			if elem, ok := strings.CutSuffix(typ, "[]"); ok {
				typ = "List[" + elem + "]"
			}
			if f.optional {
				typ = "Optional[" + typ + "]"
			}
			fmt.Fprintf(&b, "\n    %s: %s", f.name, typ)
		}
		return b.String()
	}),
	replaceFunc(tsFunctionTyped, func(m []string) string {
		return fmt.Sprintf("def %s(%s) -> %s:", m[1], pythonParams(m[2]), tsToPythonTypes.lookup(m[3]))
	}),
	replaceFunc(tsFunction, func(m []string) string {
		return fmt.Sprintf("def %s(%s):", m[1], pythonParams(m[2]))
	}),
	replace(`(?m)^([ \t]*)(?:export\s+)?class\s+(\w+)\s*\{`, "${1}class ${2}:"),
	replace(tsArrayField, "${1}def __init__(self):\n${1}    self.${2}: List[${3}] = []"),
	replace(`(?m)^([ \t]*)constructor\s*\(\s*\)\s*\{`, "${1}def __init__(self):"),
	replaceFunc(`(?m)^([ \t]*)constructor\s*\(([^)]*)\)\s*\{`, func(m []string) string {
		return fmt.Sprintf("%sdef __init__(%s):", m[1], selfParams(pythonParams(m[2])))
	}),
	replaceFunc(`(?m)^([ \t]*)(?:(?:public|private|protected)\s+)?(\w+)\s*\(([^)]*)\)\s*:\s*void\s*\{`, func(m []string) string {
		return fmt.Sprintf("%sdef %s(%s):", m[1], m[2], selfParams(pythonParams(m[3])))
	}),
	replaceFunc(tsMethod, func(m []string) string {
		return fmt.Sprintf("%sdef %s(%s) -> %s:", m[1], m[3], selfParams(pythonParams(m[4])), tsToPythonTypes.lookup(m[5]))
	}),
	replace(tsUndefined, "Optional[${1}]"),
	replace(`:\s*number\b`, ": int"),
	replace(`:\s*string\b`, ": str"),
	replace(`:\s*boolean\b`, ": bool"),
	replace(tsPush, "self.${1}.append(${2})"),
	replace(tsFind, "next((${2} for ${2} in self.${1} if ${3}), None)"),
	replace(`\bthis\.`, "self."),
	replace(`console\.log\(`, "print("),
	replace(`===`, "=="),
	replace(`!==`, "!="),
	replace(`&&`, "and"),
	replace(`\|\|`, "or"),
	replace(`\btrue\b`, "True"),
	replace(`\bfalse\b`, "False"),
	replace(`\b(?:null|undefined)\b`, "None"),
	replace(`(?m)^([ \t]*)//`, "${1}#"),
	replace(`(?m)^([ \t]*)\}\s*else\s+if\s*`, "${1}elif "),
	replace(`(?m)^([ \t]*)\}\s*else\b`, "${1}else"),
	replace(`\belse\s+if\b`, "elif"),
	replace(`(?m)[ \t]*\{[ \t]*$`, ":"),
	replace(`(?m)^[ \t]*\}[ \t]*\n?`, ""),
	replace(`(?m);[ \t]*$`, ""),
	replace(`\b(?:let|const)\s+`, ""),
}

func typeScriptToPython(code string) string {
	return "from typing import Any, List, Optional\nfrom dataclasses import dataclass\n\n" + typeScriptToPythonRules.apply(code)
}

var javaScriptToTypeScriptRules = chain{
	replaceFunc(tsFunction, func(m []string) string {
		params := mapParams(m[2], func(name, typ, def string) string {
			out := name + ": any"
			if def != "" {
				out += " " + def
			}
			return out
		})
		return fmt.Sprintf("function %s(%s): any {", m[1], params)
	}),
	replace(`\bvar\s+(\w+)\s*=`, "let ${1}: any ="),
	replace(`\b(let|const)\s+(\w+)\s*=`, "${1} ${2}: any ="),
}

func javaScriptToTypeScript(code string) string {
	return javaScriptToTypeScriptRules.apply(code)
}
