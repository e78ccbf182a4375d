package prompts

// languageNames maps request language codes to the display names
// interpolated into prompts. Unknown codes fall back to English.
var languageNames = map[string]string{
	"en": "English",
	"tr": "Türkçe",
	"ru": "Russian",
	"ka": "Georgian",
	"az": "Azerbaijani",
	"kk": "Kazakh",
	"ky": "Kyrgyz",
}

// LanguageName resolves a language code to its prompt display name.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}
