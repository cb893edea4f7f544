package tts

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// ResolveLocale maps a language tag to the spelling the catalog uses, so
// "it-it" becomes "it-IT". Tags the catalog does not know are returned in
// canonical BCP 47 form.
func ResolveLocale(voices []Voice, tag string) string {
	for _, v := range voices {
		if strings.EqualFold(v.Locale, tag) {
			return v.Locale
		}
	}
	if t, err := language.Parse(tag); err == nil {
		return t.String()
	}
	return tag
}

// VoicesForLanguage returns the voices whose locale starts with lang,
// compared case-insensitively, sorted by their display label.
func VoicesForLanguage(voices []Voice, lang string) []Voice {
	prefix := strings.ToLower(lang)

	var out []Voice
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Locale), prefix) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Label() < out[j].Label()
	})
	return out
}

// PickVoice chooses a default voice for locale: the first female voice in
// catalog order, or the first voice when there is none.
func PickVoice(voices []Voice, locale string) (Voice, bool) {
	var first *Voice
	for i := range voices {
		v := &voices[i]
		if !strings.EqualFold(v.Locale, locale) {
			continue
		}
		if strings.EqualFold(v.Gender, "Female") {
			return *v, true
		}
		if first == nil {
			first = v
		}
	}
	if first == nil {
		return Voice{}, false
	}
	return *first, true
}

// ResolveParameters merges requested over configured. When the request
// asks for a different language without naming a voice, a voice for that
// language is picked from the catalog.
func ResolveParameters(voices []Voice, configured, requested VoiceParameters) VoiceParameters {
	params := configured.Merge(requested)
	if requested.Language == "" {
		return params
	}

	locale := ResolveLocale(voices, requested.Language)
	params.Language = locale
	if requested.Voice == "" && !strings.EqualFold(locale, configured.Language) {
		if v, ok := PickVoice(voices, locale); ok {
			params.Voice = v.ShortName
		}
	}
	return params
}

func findVoice(voices []Voice, name string) *Voice {
	for i := range voices {
		if strings.EqualFold(voices[i].ShortName, name) || strings.EqualFold(voices[i].Name, name) {
			return &voices[i]
		}
	}
	return nil
}
