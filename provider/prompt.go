package provider

import (
	"fmt"
	"strings"

	"github.com/ZaguanLabs/codeshift"
)

// SystemPrompt is sent as the system message to chat endpoints.
const SystemPrompt = "You are an expert software engineer who converts source code between programming languages. Reply with code only."

// BuildPrompt renders the conversion prompt for a request.
func BuildPrompt(req ModelRequest) string {
	from, to := req.From.Name(), req.To.Name()

	return fmt.Sprintf(`Convert the following %s code to %s. 

Requirements:
1. Maintain the same functionality and logic
2. Use proper %s syntax and conventions
3. Include necessary imports/using statements
4. Add appropriate type annotations if the target language supports them
5. Follow the target language's naming conventions
6. Only return the converted code, no explanations

Source %s code:
`+"```"+`%s
%s
`+"```"+`

Converted %s code:`, from, to, to, from, req.From, req.Code, to)
}

// StopSequences returns the generation stop markers for a target language:
// a bare fence and fences tagged with the language identifier and name.
func StopSequences(to codeshift.Language) []string {
	return []string{
		"```",
		"```" + string(to),
		"```" + strings.ToLower(to.Name()),
	}
}
