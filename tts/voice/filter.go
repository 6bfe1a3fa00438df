package voice

// Selection is the outcome of filtering a voice list.
type Selection struct {
	Candidates []Voice // Matching voices in provider order
	Default    *Voice  // Preselected voice, nil when Candidates is empty
}

// Empty reports whether no voice is available for the selection.
func (s Selection) Empty() bool {
	return len(s.Candidates) == 0
}

// Filter narrows all to the voices of languageCode that satisfy the gender
// filter and picks the default voice.
//
// Voices classified GenderUnknown only survive AnyGender. An empty result is
// returned as is: the filter never widens back to other genders.
func Filter(all []Voice, languageCode string, g GenderFilter) Selection {
	var candidates []Voice
	for _, v := range all {
		if !hasPrefixFold(v.LanguageTag, languageCode) {
			continue
		}
		if g != AnyGender && Classify(v) != g.Gender() {
			continue
		}
		candidates = append(candidates, v)
	}

	sel := Selection{Candidates: candidates}
	if len(candidates) == 0 {
		return sel
	}

	if p, ok := LookupProfile(languageCode); ok {
		name := p.DefaultName(g)
		for i := range candidates {
			if candidates[i].Name == name {
				sel.Default = &candidates[i]
				return sel
			}
		}
	}

	sel.Default = &candidates[0]
	return sel
}

// Find returns the voice with exactly the given name.
func Find(all []Voice, name string) (Voice, bool) {
	for _, v := range all {
		if v.Name == name {
			return v, true
		}
	}
	return Voice{}, false
}
