package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ReportAck is the model turn that closes the report seed
const ReportAck = "OK. Ask your question."

var languageNames = map[string]string{
	"en-US": "English",
	"hi-IN": "Hindi",
	"de-DE": "German",
	"fr-FR": "French",
	"es-ES": "Spanish",
}

// LanguageName returns a human name for a BCP-47 tag, or the tag itself when unknown
func LanguageName(tag string) string {
	if name, ok := languageNames[tag]; ok {
		return name
	}
	return tag
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// ReportSeed builds the two turns injected ahead of the first question on a report
func ReportSeed(reportExcerpt string) []Turn {
	return []Turn{
		{Role: RoleUser, Text: "Report context:\n" + reportExcerpt},
		{Role: RoleAssistant, Text: ReportAck},
	}
}

// BuildPDFSystemPrompt grounds a pdf conversation in the extracted document text
func BuildPDFSystemPrompt(excerpt string) string {
	if strings.TrimSpace(excerpt) == "" {
		excerpt = "No text."
	}
	return fmt.Sprintf(`Context from PDF:
---
%s
---
Answer based ONLY on the context above and the conversation so far.`, excerpt)
}

// BuildVoicePrompt asks the model to answer in the caller's spoken language
func BuildVoicePrompt(transcript, languageName string) string {
	return fmt.Sprintf(`**Role:** Multilingual voice assistant.
**Task:** Respond conversationally IN '%[2]s' to the input. Be concise.
**Input Language:** '%[2]s'
**User Input:** "%[1]s"
**Your Direct Response (in '%[2]s'):**`, transcript, languageName)
}

// BuildVoiceFallbackPrompt asks for a short English explanation of the language limitation
func BuildVoiceFallbackPrompt(languageName string) string {
	return fmt.Sprintf(`The user asked a question in '%[1]s'. You were unable to answer in that language.
Respond politely IN ENGLISH explaining this limitation. Briefly apologize and offer to answer in English if they ask again in English.
Keep it concise for voice output. Start directly with the explanation. Example: "I apologize, I currently can't provide detailed explanations in %[1]s. Would you like me to try answering in English?"`, languageName)
}
