package deepseek

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const systemPrompt = "You are a professional translator."

// languageName maps an ISO code to its English display name for the prompt.
// Unknown codes fall back to the title-cased code itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return cases.Title(language.English).String(code)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return cases.Title(language.English).String(code)
}

func buildPrompt(text, sourceLang, targetLang string) string {
	sourceName := languageName(sourceLang)
	targetName := languageName(targetLang)

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Translate the following text from %s to %s.\n", sourceName, targetName)
	sb.WriteString("Preserve the formatting, HTML markup, links and numbers.\n")
	sb.WriteString("Do not modify proper nouns, codes, email addresses or URLs.\n\n")
	fmt.Fprintf(sb, "Text:\n%s\n\n", text)
	fmt.Fprintf(sb, "Translation in %s:", targetName)
	return sb.String()
}
