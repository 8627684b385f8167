// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files, provides a simple way to get
// localized strings for different languages, and detects the citizen's
// language from their first message.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Supported reply languages. English is the fallback for every missing key.
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
)

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer creates and returns a new Localizer instance.
// It loads all translations from the provided directory path.
// The directory should contain JSON files named with the language code (e.g., "en.json").
func NewLocalizer(path string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		filePath := filepath.Join(path, file.Name())

		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	return l, nil
}

// NewLocalizerFromMap builds a Localizer from in-memory translations.
func NewLocalizerFromMap(translations map[string]map[string]string) *Localizer {
	l := &Localizer{
		translations: make(map[string]map[string]string, len(translations)),
	}
	for lang, entries := range translations {
		copied := make(map[string]string, len(entries))
		for key, value := range entries {
			copied[key] = value
		}
		l.translations[lang] = copied
	}
	return l
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	// Fallback to a default language if the key is not found in the specified language
	if lang != LanguageEnglish {
		if enTranslations, ok := l.translations[LanguageEnglish]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}

	return key
}

// Format localizes the key and applies Sprintf-style arguments to it.
func (l *Localizer) Format(lang, key string, args ...interface{}) string {
	template := l.GetString(lang, key)
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// SupportedLanguages lists the loaded language codes in stable order.
func (l *Localizer) SupportedLanguages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	languages := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

// hindiMarkers are romanized words common in Hindi complaint messages. A
// standalone match is enough to switch the session to Hindi.
var hindiMarkers = map[string]struct{}{
	"shikayat": {}, "samasya": {}, "kripya": {}, "sadak": {},
	"pani": {}, "bijli": {}, "nahi": {}, "hai": {},
}

// DetectLanguage picks the reply language from the first message: Devanagari
// script or a romanized Hindi marker selects Hindi, everything else English.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return LanguageHindi
		}
	}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := hindiMarkers[strings.Trim(word, ".,!?")]; ok {
			return LanguageHindi
		}
	}

	return LanguageEnglish
}
