package llm

import _ "embed"

var (
	//go:embed prompts/standard_v1.txt
	promptStandardV1 string
	//go:embed prompts/lite_v1.txt
	promptLiteV1 string
)

// PromptTemplate returns the prompt template text and whether the version was
// recognized.
func PromptTemplate(version string) (string, bool) {
	switch version {
	case "standard_v1":
		return promptStandardV1, true
	case "lite_v1":
		return promptLiteV1, true
	default:
		return promptStandardV1, false
	}
}
