package domain

// Language identifies one of the two site languages.
type Language string

const (
	// LanguageArabic is the Arabic site language.
	LanguageArabic Language = "ar"
	// LanguageKurdish is the Kurdish (Sorani) site language.
	LanguageKurdish Language = "ku"
)

// Supported reports whether lang is one of the two supported language codes.
func (l Language) Supported() bool {
	return l == LanguageArabic || l == LanguageKurdish
}

// Languages lists every supported language.
func Languages() []Language {
	return []Language{LanguageArabic, LanguageKurdish}
}
