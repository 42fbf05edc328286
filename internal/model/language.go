package model

import (
	"fmt"
	"strings"
)

// Language is the two-letter code selected by the user before recording.
// It is threaded unchanged through transcription and extraction.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
	LanguageArabic  Language = "ar"
)

// SupportedLanguages lists every language the pipeline accepts.
var SupportedLanguages = []Language{LanguageEnglish, LanguageFrench, LanguageArabic}

// ParseLanguage validates a language code. Empty input is rejected too.
func ParseLanguage(code string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(code)))
	switch lang {
	case LanguageEnglish, LanguageFrench, LanguageArabic:
		return lang, nil
	}
	return "", fmt.Errorf("%w: %q (supported: en, fr, ar)", ErrUnsupportedLanguage, code)
}

// Name returns the English name of the language, e.g. "French".
func (l Language) Name() string {
	switch l {
	case LanguageFrench:
		return "French"
	case LanguageArabic:
		return "Arabic"
	case LanguageEnglish:
		return "English"
	}
	return ""
}

func (l Language) String() string {
	return string(l)
}
