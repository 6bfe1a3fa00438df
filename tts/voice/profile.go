package voice

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguage is the language selected at startup.
const DefaultLanguage = "en"

// LanguageProfile is the static configuration of a supported language.
type LanguageProfile struct {
	Code          string // Short language code, e.g. "en"
	DefaultFemale string // Exact voice name preferred for female and any
	DefaultMale   string // Exact voice name preferred for male
	LanguageTag   string // Tag used when no explicit voice is submitted
	SampleText    string // Text placed in the input when the language is chosen
}

// DefaultName returns the preferred voice name for a gender filter.
func (p LanguageProfile) DefaultName(g GenderFilter) string {
	if g == MaleOnly {
		return p.DefaultMale
	}
	return p.DefaultFemale
}

// DisplayName returns the language name in its own language, falling back
// to the code.
func (p LanguageProfile) DisplayName() string {
	tag, err := language.Parse(p.Code)
	if err != nil {
		return p.Code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return p.Code
}

var profiles = []LanguageProfile{
	{
		Code:          "en",
		DefaultFemale: "Microsoft Zira Desktop - English (United States)",
		DefaultMale:   "Microsoft David Desktop - English (United States)",
		LanguageTag:   "en-US",
		SampleText:    "Welcome to voicedeck. Type some text, pick a voice and press play to hear it spoken aloud.",
	},
	{
		Code:          "zh",
		DefaultFemale: "Microsoft Huihui Desktop - Chinese (Simplified)",
		DefaultMale:   "Microsoft Kangkang Desktop - Chinese (Simplified)",
		LanguageTag:   "zh-CN",
		SampleText:    "欢迎使用文本转语音工具。输入文字，选择语音，然后按播放键即可朗读。",
	},
	{
		Code:          "ru",
		DefaultFemale: "alena",
		DefaultMale:   "filipp",
		LanguageTag:   "ru-RU",
		SampleText:    "Добро пожаловать в voicedeck. Введите текст, выберите голос и нажмите воспроизведение.",
	},
}

// Profiles returns the supported language profiles in selector order.
func Profiles() []LanguageProfile {
	out := make([]LanguageProfile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile returns the profile for a language code, ignoring case.
func LookupProfile(code string) (LanguageProfile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return LanguageProfile{}, false
}

// LanguageCodes returns the supported language codes.
func LanguageCodes() []string {
	codes := make([]string, 0, len(profiles))
	for _, p := range profiles {
		codes = append(codes, p.Code)
	}
	return codes
}
