package rules

import (
	"regexp"
	"strings"
)

// typeMap maps source type names to target type names.
type typeMap map[string]string

var (
	tsToJavaTypes = typeMap{
		"number": "int", "string": "String", "boolean": "boolean",
		"void": "void", "any": "Object", "object": "Object",
	}
	tsToCSharpTypes = typeMap{
		"number": "int", "string": "string", "boolean": "bool",
		"void": "void", "any": "object", "object": "object",
	}
	tsToPythonTypes = typeMap{
		"number": "int", "string": "str", "boolean": "bool",
		"void": "None", "any": "Any", "object": "object",
	}
	javaToTSTypes = typeMap{
		"int": "number", "long": "number", "short": "number", "byte": "number",
		"float": "number", "double": "number", "Integer": "number", "Long": "number",
		"Double": "number", "String": "string", "char": "string", "boolean": "boolean",
		"Boolean": "boolean", "void": "void", "Object": "any",
	}
	cSharpToTSTypes = typeMap{
		"int": "number", "long": "number", "short": "number", "byte": "number",
		"float": "number", "double": "number", "decimal": "number", "string": "string",
		"String": "string", "char": "string", "bool": "boolean", "void": "void",
		"object": "any", "dynamic": "any", "var": "any",
	}
)

// lookup maps a type, keeping array suffixes ("number[]" -> "int[]").
// Unknown types pass through unchanged.
func (m typeMap) lookup(t string) string {
	t = strings.TrimSpace(t)
	if base, ok := strings.CutSuffix(t, "[]"); ok {
		return m.lookup(base) + "[]"
	}
	if mapped, ok := m[t]; ok {
		return mapped
	}
	return t
}

// boxed returns the Java reference type for use in generics.
func boxed(t string) string {
	switch t {
	case "int":
		return "Integer"
	case "boolean":
		return "Boolean"
	case "double":
		return "Double"
	}
	return t
}

// literal kinds inferred from an initializer.
const (
	kindUnknown = ""
	kindInt     = "int"
	kindFloat   = "float"
	kindString  = "string"
	kindBool    = "bool"
)

var (
	intLiteral   = regexp.MustCompile(`^-?\d+$`)
	floatLiteral = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// literalKind guesses the type of a simple initializer expression.
func literalKind(value string) string {
	v := strings.TrimSpace(value)
	switch {
	case intLiteral.MatchString(v):
		return kindInt
	case floatLiteral.MatchString(v):
		return kindFloat
	case strings.HasPrefix(v, `"`), strings.HasPrefix(v, "'"), strings.HasPrefix(v, "`"):
		return kindString
	case v == "true" || v == "false":
		return kindBool
	}
	return kindUnknown
}

var (
	javaLiteralTypes   = map[string]string{kindInt: "int", kindFloat: "double", kindString: "String", kindBool: "boolean"}
	cSharpLiteralTypes = map[string]string{kindInt: "int", kindFloat: "double", kindString: "string", kindBool: "bool"}
)

var tsParam = regexp.MustCompile(`^(\w+)\??\s*(?::\s*([\w\[\]<>]+))?\s*(=.*)?$`)

// typeFirstParams converts "a: number, b" to "int a, Object b".
func typeFirstParams(params string, types typeMap, fallback string) string {
	return mapParams(params, func(name, typ, def string) string {
		if typ == "" {
			typ = fallback
		} else {
			typ = types.lookup(typ)
		}
		return typ + " " + name
	})
}

// pythonParams converts "a: number, b" to "a: int, b".
func pythonParams(params string) string {
	return mapParams(params, func(name, typ, def string) string {
		out := name
		if typ != "" {
			out += ": " + tsToPythonTypes.lookup(typ)
		}
		if def != "" {
			out += " " + def
		}
		return out
	})
}

func mapParams(params string, fn func(name, typ, def string) string) string {
	if strings.TrimSpace(params) == "" {
		return ""
	}
	parts := strings.Split(params, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if m := tsParam.FindStringSubmatch(p); m != nil {
			parts[i] = fn(m[1], m[2], m[3])
		} else {
			parts[i] = p
		}
	}
	return strings.Join(parts, ", ")
}

var typedParam = regexp.MustCompile(`^(?:final\s+)?([\w\[\]<>]+)\s+(\w+)$`)

// nameTypeParams converts "int a, String b" to "a: number, b: string".
func nameTypeParams(params string, types typeMap) string {
	return mapTypedParams(params, func(typ, name string) string {
		return name + ": " + types.lookup(typ)
	})
}

// bareParams converts "int a, String b" to "a, b".
func bareParams(params string) string {
	return mapTypedParams(params, func(_, name string) string { return name })
}

func mapTypedParams(params string, fn func(typ, name string) string) string {
	if strings.TrimSpace(params) == "" {
		return ""
	}
	parts := strings.Split(params, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if m := typedParam.FindStringSubmatch(p); m != nil {
			parts[i] = fn(m[1], m[2])
		} else {
			parts[i] = p
		}
	}
	return strings.Join(parts, ", ")
}

// selfParams prepends self to a Python parameter list.
func selfParams(params string) string {
	if params == "" {
		return "self"
	}
	return "self, " + params
}

var classDecl = regexp.MustCompile(`\bclass\s+(\w+)`)
var constructorCall = regexp.MustCompile(`\bconstructor\s*\(`)

// renameInClasses rewrites matches of re inside each class body with
// repl(className), e.g. "constructor(" -> "public Point(".
func renameInClasses(code string, re *regexp.Regexp, repl func(class string) string) string {
	locs := classDecl.FindAllStringSubmatchIndex(code, -1)
	if len(locs) == 0 {
		return code
	}

	var b strings.Builder
	b.WriteString(code[:locs[0][0]])
	for i, loc := range locs {
		end := len(code)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		name := code[loc[2]:loc[3]]
		b.WriteString(re.ReplaceAllLiteralString(code[loc[0]:end], repl(name)))
	}
	return b.String()
}

// renameConstructors replaces "constructor(" inside each class with
// prefix + class name + "(".
func renameConstructors(code, prefix string) string {
	return renameInClasses(code, constructorCall, func(class string) string {
		return prefix + class + "("
	})
}

// indentLines prefixes every non-empty line with indent.
func indentLines(code, indent string) string {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}

// controlKeywords can never start a declaration.
var controlKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "foreach": true, "while": true, "do": true,
	"switch": true, "case": true, "return": true, "new": true, "throw": true,
	"catch": true, "try": true, "using": true, "lock": true, "await": true,
}
