package voice

import (
	"reflect"
	"strings"
	"testing"
)

var (
	zira   = Voice{Name: "Microsoft Zira Desktop - English (United States)", Identifier: "TTS_MS_EN-US_ZIRA_11.0", LanguageTag: "en-US"}
	david  = Voice{Name: "Microsoft David Desktop - English (United States)", Identifier: "TTS_MS_EN-US_DAVID_11.0", LanguageTag: "en-US"}
	google = Voice{Name: "Google US English", Identifier: "Google US English", LanguageTag: "en-US"}
	moira  = Voice{Name: "Moira", Identifier: "com.apple.voice.compact.en-IE.Moira", LanguageTag: "en-IE"}
	huihui = Voice{Name: "Microsoft Huihui Desktop - Chinese (Simplified)", Identifier: "TTS_MS_ZH-CN_HUIHUI_11.0", LanguageTag: "zh-CN"}
	alena  = Voice{Name: "alena", Identifier: "yandex:alena", LanguageTag: "ru-RU"}
)

func names(vs []Voice) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Name)
	}
	return out
}

func TestFilterScenarios(t *testing.T) {
	tests := []struct {
		name        string
		voices      []Voice
		lang        string
		gender      GenderFilter
		want        []Voice
		wantDefault *Voice
	}{
		{
			name:        "female english picks zira",
			voices:      []Voice{zira, david},
			lang:        "en",
			gender:      FemaleOnly,
			want:        []Voice{zira},
			wantDefault: &zira,
		},
		{
			name:        "male english picks david",
			voices:      []Voice{zira, david},
			lang:        "en",
			gender:      MaleOnly,
			want:        []Voice{david},
			wantDefault: &david,
		},
		{
			name:        "no voices",
			voices:      nil,
			lang:        "en",
			gender:      AnyGender,
			want:        nil,
			wantDefault: nil,
		},
		{
			name:        "any keeps unknown and uses female default",
			voices:      []Voice{google, david, zira},
			lang:        "en",
			gender:      AnyGender,
			want:        []Voice{google, david, zira},
			wantDefault: &zira,
		},
		{
			name:        "default name missing falls back to first candidate",
			voices:      []Voice{google, moira, huihui},
			lang:        "en",
			gender:      AnyGender,
			want:        []Voice{google, moira},
			wantDefault: &google,
		},
		{
			name:        "unknown voices are excluded for a specific gender",
			voices:      []Voice{google},
			lang:        "en",
			gender:      FemaleOnly,
			want:        nil,
			wantDefault: nil,
		},
		{
			name:        "no widening to the other gender",
			voices:      []Voice{zira, moira},
			lang:        "en",
			gender:      MaleOnly,
			want:        nil,
			wantDefault: nil,
		},
		{
			name:        "language code is case insensitive",
			voices:      []Voice{zira, huihui},
			lang:        "ZH",
			gender:      AnyGender,
			want:        []Voice{huihui},
			wantDefault: &huihui,
		},
		{
			name:        "language without profile uses first candidate",
			voices:      []Voice{zira, {Name: "Anna", LanguageTag: "de-DE"}},
			lang:        "de",
			gender:      AnyGender,
			want:        []Voice{{Name: "Anna", LanguageTag: "de-DE"}},
			wantDefault: &Voice{Name: "Anna", LanguageTag: "de-DE"},
		},
		{
			name:        "russian profile default",
			voices:      []Voice{{Name: "filipp", LanguageTag: "ru-RU"}, alena},
			lang:        "ru",
			gender:      AnyGender,
			want:        []Voice{{Name: "filipp", LanguageTag: "ru-RU"}, alena},
			wantDefault: &alena,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Filter(tt.voices, tt.lang, tt.gender)

			if !reflect.DeepEqual(sel.Candidates, tt.want) {
				t.Errorf("candidates = %v, want %v", names(sel.Candidates), names(tt.want))
			}
			if sel.Empty() != (len(tt.want) == 0) {
				t.Errorf("Empty() = %v with %d candidates", sel.Empty(), len(sel.Candidates))
			}

			switch {
			case tt.wantDefault == nil && sel.Default != nil:
				t.Errorf("default = %q, want nil", sel.Default.Name)
			case tt.wantDefault != nil && sel.Default == nil:
				t.Errorf("default = nil, want %q", tt.wantDefault.Name)
			case tt.wantDefault != nil && *sel.Default != *tt.wantDefault:
				t.Errorf("default = %q, want %q", sel.Default.Name, tt.wantDefault.Name)
			}
		})
	}
}

func TestFilterNeverLeaksOtherLanguages(t *testing.T) {
	all := []Voice{zira, david, google, moira, huihui, alena}

	for _, code := range []string{"en", "zh", "ru", "de"} {
		for _, g := range GenderFilters {
			sel := Filter(all, code, g)
			for _, v := range sel.Candidates {
				if !strings.HasPrefix(strings.ToLower(v.LanguageTag), code) {
					t.Errorf("Filter(%q, %v) returned %q with tag %q", code, g, v.Name, v.LanguageTag)
				}
				if g != AnyGender && Classify(v) != g.Gender() {
					t.Errorf("Filter(%q, %v) returned %q classified %v", code, g, v.Name, Classify(v))
				}
			}
		}
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	all := []Voice{google, david, moira, zira}

	for _, g := range GenderFilters {
		first := Filter(all, "en", g)
		second := Filter(all, "en", g)

		if !reflect.DeepEqual(first.Candidates, second.Candidates) {
			t.Errorf("%v: candidates differ between calls: %v vs %v", g, names(first.Candidates), names(second.Candidates))
		}
		if (first.Default == nil) != (second.Default == nil) {
			t.Fatalf("%v: default presence differs between calls", g)
		}
		if first.Default != nil && *first.Default != *second.Default {
			t.Errorf("%v: default differs: %q vs %q", g, first.Default.Name, second.Default.Name)
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	all := []Voice{google, david, zira}
	before := append([]Voice(nil), all...)

	_ = Filter(all, "en", MaleOnly)

	if !reflect.DeepEqual(all, before) {
		t.Errorf("input mutated: %v", names(all))
	}
}

func TestLookupProfile(t *testing.T) {
	p, ok := LookupProfile("EN")
	if !ok {
		t.Fatal("expected en profile")
	}
	if p.LanguageTag != "en-US" {
		t.Errorf("LanguageTag = %q, want en-US", p.LanguageTag)
	}
	if p.DefaultName(MaleOnly) != david.Name {
		t.Errorf("male default = %q", p.DefaultName(MaleOnly))
	}
	if p.DefaultName(AnyGender) != zira.Name {
		t.Errorf("any default = %q", p.DefaultName(AnyGender))
	}
	if _, ok := LookupProfile("xx"); ok {
		t.Error("unexpected profile for xx")
	}
}

func TestFind(t *testing.T) {
	all := []Voice{zira, david}
	if v, ok := Find(all, david.Name); !ok || v != david {
		t.Errorf("Find(david) = %v, %v", v, ok)
	}
	if _, ok := Find(all, "Microsoft Zira"); ok {
		t.Error("Find must match exact names only")
	}
}
