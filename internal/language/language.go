package language

import (
	"sort"
	"strings"
)

// Language pairs an ISO code with the display name used in prompts.
type Language struct {
	Code string
	Name string
}

// Auto is the pseudo source language that lets the model detect the source
// itself.
const Auto = "auto"

// Languages maps supported language codes to their display names.
var Languages = map[string]Language{
	"ar":      {Code: "ar", Name: "Arabic"},
	"bn":      {Code: "bn", Name: "Bengali"},
	"cs":      {Code: "cs", Name: "Czech"},
	"da":      {Code: "da", Name: "Danish"},
	"de":      {Code: "de", Name: "German"},
	"el":      {Code: "el", Name: "Greek"},
	"en":      {Code: "en", Name: "English"},
	"es":      {Code: "es", Name: "Spanish"},
	"fa":      {Code: "fa", Name: "Persian"},
	"fi":      {Code: "fi", Name: "Finnish"},
	"fr":      {Code: "fr", Name: "French"},
	"he":      {Code: "he", Name: "Hebrew"},
	"hi":      {Code: "hi", Name: "Hindi"},
	"hu":      {Code: "hu", Name: "Hungarian"},
	"id":      {Code: "id", Name: "Indonesian"},
	"it":      {Code: "it", Name: "Italian"},
	"ja":      {Code: "ja", Name: "Japanese"},
	"ko":      {Code: "ko", Name: "Korean"},
	"ms":      {Code: "ms", Name: "Malay"},
	"nl":      {Code: "nl", Name: "Dutch"},
	"no":      {Code: "no", Name: "Norwegian"},
	"pl":      {Code: "pl", Name: "Polish"},
	"pt":      {Code: "pt", Name: "Portuguese"},
	"ro":      {Code: "ro", Name: "Romanian"},
	"ru":      {Code: "ru", Name: "Russian"},
	"sv":      {Code: "sv", Name: "Swedish"},
	"th":      {Code: "th", Name: "Thai"},
	"tr":      {Code: "tr", Name: "Turkish"},
	"uk":      {Code: "uk", Name: "Ukrainian"},
	"vi":      {Code: "vi", Name: "Vietnamese"},
	"zh":      {Code: "zh-Hans", Name: "Chinese (Simplified)"},
	"zh-Hans": {Code: "zh-Hans", Name: "Chinese (Simplified)"},
	"zh-Hant": {Code: "zh-Hant", Name: "Chinese (Traditional)"},
}

// GetLanguage looks up a language by code (case-insensitive).
func GetLanguage(code string) (Language, bool) {
	needle := strings.TrimSpace(code)
	if lang, ok := Languages[needle]; ok {
		return lang, true
	}
	for key, lang := range Languages {
		if strings.EqualFold(key, needle) {
			return lang, true
		}
	}
	return Language{}, false
}

// DisplayName returns the prompt-facing name for a language code. Unknown
// codes are passed through verbatim so users can target languages outside
// the table.
func DisplayName(code string) string {
	if lang, ok := GetLanguage(code); ok {
		return lang.Name
	}
	return strings.TrimSpace(code)
}

// IsAuto reports whether code requests source language auto-detection.
func IsAuto(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), Auto)
}

// GetSupportedLanguages returns all known languages sorted by name.
func GetSupportedLanguages() []Language {
	seen := make(map[string]bool, len(Languages))
	list := make([]Language, 0, len(Languages))
	for _, lang := range Languages {
		if seen[lang.Code] {
			continue
		}
		seen[lang.Code] = true
		list = append(list, lang)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
