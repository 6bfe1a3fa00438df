package voice

import "strings"

// keywordFamily holds the gender keywords for voices whose language tag
// starts with code.
type keywordFamily struct {
	code   string
	female []string
	male   []string
}

// Keywords are matched as substrings, so short ones like "li" or "man"
// also hit inside longer words. Female keywords win over male ones.
var families = []keywordFamily{
	{
		code: "en",
		female: []string{
			"female", "woman", "girl",
			"zira", "samantha", "karen", "moira", "tessa", "victoria", "veena",
		},
		male: []string{
			"male", "man", "boy",
			"david", "alex", "daniel", "tom", "paul", "mark",
		},
	},
	{
		code: "zh",
		female: []string{
			"female", "woman", "girl",
			"hui", "yao", "ting", "lin", "mei", "li", "女",
		},
		male: []string{
			"male", "man", "boy",
			"kang", "gang", "强", "刚", "勇", "男",
		},
	},
	{
		code: "ru",
		female: []string{
			"female", "woman", "жен",
			"alena", "jane", "omazh", "dasha", "julia", "lera", "masha", "marina",
		},
		male: []string{
			"male", "man", "муж",
			"filipp", "ermil", "madirus", "zahar", "alexander", "kirill", "anton",
		},
	},
}

// Classify guesses the gender of a voice from its name and identifier.
func Classify(v Voice) Gender {
	fam, ok := familyFor(v.LanguageTag)
	if !ok {
		return GenderUnknown
	}

	name := strings.ToLower(v.Name)
	id := strings.ToLower(v.Identifier)

	if containsAny(name, id, fam.female) {
		return GenderFemale
	}
	if containsAny(name, id, fam.male) {
		return GenderMale
	}
	return GenderUnknown
}

func familyFor(tag string) (keywordFamily, bool) {
	for _, f := range families {
		if hasPrefixFold(tag, f.code) {
			return f, true
		}
	}
	return keywordFamily{}, false
}

func containsAny(name, id string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) || strings.Contains(id, k) {
			return true
		}
	}
	return false
}
