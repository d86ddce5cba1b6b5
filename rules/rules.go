// Package rules provides the deterministic, regex-based code translator.
//
// Each supported language pair maps to a RewriteFunc: an ordered chain of
// regular-expression rewrites. Pairs without a table fall back to Generic,
// which annotates the source with a review notice and returns it unchanged.
// The translator is pure and total: it never fails and never touches the
// network.
package rules

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ZaguanLabs/codeshift"
)

// RewriteFunc rewrites the body of a source file. The translator adds the
// "Converted from" header itself.
type RewriteFunc func(code string) string

// Translator dispatches language pairs to their rewrite rules.
type Translator struct {
	table map[codeshift.Language]map[codeshift.Language]RewriteFunc
}

// Option configures a Translator.
type Option func(*Translator)

// WithRule registers or replaces the rule for a language pair.
func WithRule(from, to codeshift.Language, fn RewriteFunc) Option {
	return func(t *Translator) {
		t.Register(from, to, fn)
	}
}

// NewTranslator creates a Translator with the built-in rule tables.
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{table: make(map[codeshift.Language]map[codeshift.Language]RewriteFunc)}

	t.Register(codeshift.TypeScript, codeshift.Java, typeScriptToJava)
	t.Register(codeshift.TypeScript, codeshift.CSharp, typeScriptToCSharp)
	t.Register(codeshift.TypeScript, codeshift.Python, typeScriptToPython)

	t.Register(codeshift.JavaScript, codeshift.TypeScript, javaScriptToTypeScript)
	t.Register(codeshift.JavaScript, codeshift.Java, viaTypeScript(typeScriptToJava))
	t.Register(codeshift.JavaScript, codeshift.CSharp, viaTypeScript(typeScriptToCSharp))
	t.Register(codeshift.JavaScript, codeshift.Python, viaTypeScript(typeScriptToPython))

	t.Register(codeshift.Java, codeshift.TypeScript, javaToTypeScript)
	t.Register(codeshift.Java, codeshift.CSharp, javaToCSharp)
	t.Register(codeshift.Java, codeshift.Python, javaToPython)

	t.Register(codeshift.CSharp, codeshift.Java, cSharpToJava)
	t.Register(codeshift.CSharp, codeshift.TypeScript, cSharpToTypeScript)
	t.Register(codeshift.CSharp, codeshift.Python, cSharpToPython)

	t.Register(codeshift.Python, codeshift.Java, pythonToJava)
	t.Register(codeshift.Python, codeshift.TypeScript, pythonToTypeScript)
	t.Register(codeshift.Python, codeshift.CSharp, pythonToCSharp)

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register sets the rule for a language pair.
func (t *Translator) Register(from, to codeshift.Language, fn RewriteFunc) {
	if t.table[from] == nil {
		t.table[from] = make(map[codeshift.Language]RewriteFunc)
	}
	t.table[from][to] = fn
}

// Lookup returns the rule for a language pair, or a *codeshift.NoRuleError.
func (t *Translator) Lookup(from, to codeshift.Language) (RewriteFunc, error) {
	if fn, ok := t.table[from][to]; ok && fn != nil {
		return fn, nil
	}
	return nil, &codeshift.NoRuleError{From: from, To: to}
}

// Translate converts code using the pair's rule table, or Generic when the
// pair has none. It never fails.
func (t *Translator) Translate(code string, from, to codeshift.Language) string {
	if from == to {
		return code
	}
	fn, err := t.Lookup(from, to)
	if err != nil {
		return Generic(code, from, to)
	}
	return header(from, to) + fn(code)
}

// Pairs returns every language pair with a dedicated rule table.
func (t *Translator) Pairs() [][2]codeshift.Language {
	var pairs [][2]codeshift.Language
	for from, targets := range t.table {
		for to := range targets {
			pairs = append(pairs, [2]codeshift.Language{from, to})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// Generic is the fallback for pairs without a rule table: a review notice
// in the target language followed by the unchanged code.
func Generic(code string, from, to codeshift.Language) string {
	c := to.Comment()
	return fmt.Sprintf("%s Converted from %s to %s\n%s Note: This is a basic conversion. Manual review required.\n\n%s",
		c, from.Name(), to.Name(), c, code)
}

func header(from, to codeshift.Language) string {
	return fmt.Sprintf("%s Converted from %s to %s\n", to.Comment(), from.Name(), to.Name())
}

// Verify Translator implements codeshift.RuleTranslator
var _ codeshift.RuleTranslator = (*Translator)(nil)

// rule is a single regular-expression rewrite.
type rule struct {
	re   *regexp.Regexp
	repl string
	fn   func(groups []string) string
}

// chain applies rules in order.
type chain []rule

func replace(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

func replaceFunc(pattern string, fn func(groups []string) string) rule {
	return rule{re: regexp.MustCompile(pattern), fn: fn}
}

func (c chain) apply(code string) string {
	for _, r := range c {
		if r.fn == nil {
			code = r.re.ReplaceAllString(code, r.repl)
			continue
		}
		re, fn := r.re, r.fn
		code = re.ReplaceAllStringFunc(code, func(match string) string {
			return fn(re.FindStringSubmatch(match))
		})
	}
	return code
}
