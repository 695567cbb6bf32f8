package activity

import (
	"errors"
	"fmt"
	"strings"
)

// Language selects which media title variant is preferred.
type Language string

const (
	LanguageRomaji  Language = "romaji"
	LanguageEnglish Language = "english"
	LanguageNative  Language = "native"
)

// ErrInvalidLanguage is returned when a preferred language is not one of Languages().
var ErrInvalidLanguage = errors.New("invalid language")

// Languages returns the supported title languages in display order.
func Languages() []Language {
	return []Language{LanguageRomaji, LanguageEnglish, LanguageNative}
}

// ParseLanguage case-insensitively matches s against the supported languages.
func ParseLanguage(s string) (Language, error) {
	lower := strings.ToLower(s)
	names := make([]string, 0, 3)
	for _, lang := range Languages() {
		if lower == string(lang) {
			return lang, nil
		}
		names = append(names, string(lang))
	}
	return "", fmt.Errorf("%w: '%s' is not a valid language, must be one of: %s",
		ErrInvalidLanguage, s, strings.Join(names, ", "))
}
