package provider

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/codeshift"
)

var (
	fenceOpen  = regexp.MustCompile("(?m)^```[\\w+#-]*[ \t]*\n?")
	fenceClose = regexp.MustCompile("(?m)\n?```[ \t]*$")
)

// explanationPrefixes mark the start of prose after the code.
var explanationPrefixes = []string{
	"explanation",
	"note:",
	"this code",
	"here is",
	"here's",
	"in this",
}

// Header returns the comment line prepended to model output.
func Header(to codeshift.Language) string {
	return fmt.Sprintf("%s Converted to %s using Ollama AI", to.Comment(), to.Name())
}

// Cleanup extracts the code from a raw model response: it strips Markdown
// fences, unwraps HTML code blocks, drops explanatory prose and surrounding
// blank lines. The header is not added.
func Cleanup(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = unwrapHTML(cleaned)
	cleaned = fenceOpen.ReplaceAllString(cleaned, "")
	cleaned = fenceClose.ReplaceAllString(cleaned, "")

	var (
		lines  []string
		blanks int
	)
	for _, line := range strings.Split(cleaned, "\n") {
		trimmed := strings.TrimSpace(line)
		if isExplanation(trimmed) {
			if len(lines) > 0 {
				break
			}
			// Preamble such as "Here is the converted code:"
			continue
		}
		if trimmed == "" {
			if len(lines) == 0 {
				continue
			}
			blanks++
			if blanks >= 2 {
				break
			}
		} else {
			blanks = 0
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isExplanation(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range explanationPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// unwrapHTML returns the text of the first <pre> or <code> block when the
// response is wrapped in one. Entities are decoded and <br> becomes a newline.
func unwrapHTML(s string) string {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "<pre") && !strings.HasPrefix(lower, "<code") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	sel := doc.Find("pre code").First()
	if sel.Length() == 0 {
		sel = doc.Find("pre, code").First()
	}
	if sel.Length() == 0 {
		return s
	}
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return strings.TrimSpace(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	switch {
	case n.Type == html.TextNode:
		b.WriteString(n.Data)
	case n.Type == html.ElementNode && n.Data == "br":
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
}

// finish cleans a raw response and adds the header, or reports an
// unavailable model when nothing usable remains.
func finish(raw string, to codeshift.Language) (string, error) {
	code := Cleanup(raw)
	if len(code) < MinResponseLength {
		return "", &codeshift.ModelUnavailableError{
			Message: fmt.Sprintf("response too short (%d bytes)", len(code)),
		}
	}
	return Header(to) + "\n\n" + code, nil
}
