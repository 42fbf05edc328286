package ai

import (
	"fmt"

	"voicetasks/internal/model"
)

// languageDirective forces task titles into the transcript language.
func languageDirective(lang model.Language) string {
	switch lang {
	case model.LanguageFrench:
		return "IMPORTANT: Return all task titles in FRENCH language."
	case model.LanguageArabic:
		return "IMPORTANT: Return all task titles in ARABIC language."
	default:
		return "IMPORTANT: Return all task titles in ENGLISH language."
	}
}

// BuildTaskPrompt builds the system instruction for task extraction.
// The only parameter is the language; the transcript goes in the user message.
func BuildTaskPrompt(lang model.Language) string {
	return fmt.Sprintf(`You are an expert productivity assistant.
Your job is to convert messy spoken thoughts into clear, actionable tasks.

%s

Rules:
- Extract only real, actionable tasks.
- Ignore commentary, reflections, or non-action statements.
- Split compound thoughts into separate tasks.
- Infer reasonable due dates when time references exist.
- Do NOT invent tasks.
- Do NOT add explanations.
- Output valid JSON only.
- Task titles MUST be in the same language as the input text.

Output format:
{
  "tasks": [
    {
      "title": "Clear task description in the correct language",
      "dueDate": "YYYY-MM-DD or null",
      "priority": "low|medium|high"
    }
  ]
}`, languageDirective(lang))
}
