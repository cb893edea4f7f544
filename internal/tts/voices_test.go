package tts

import (
	"testing"
)

func catalog() []Voice {
	return []Voice{
		{ShortName: "en-US-GuyNeural", LocalName: "Guy", Gender: "Male", Locale: "en-US"},
		{ShortName: "en-US-JennyNeural", LocalName: "Jenny", Gender: "Female", Locale: "en-US", StyleList: []string{"cheerful"}},
		{ShortName: "en-GB-RyanNeural", LocalName: "Ryan", Gender: "Male", Locale: "en-GB"},
		{ShortName: "it-IT-DiegoNeural", LocalName: "Diego", Gender: "Male", Locale: "it-IT"},
		{ShortName: "it-IT-ElsaNeural", LocalName: "Elsa", Gender: "Female", Locale: "it-IT"},
		{ShortName: "de-DE-ConradNeural", LocalName: "Conrad", Gender: "Male", Locale: "de-DE"},
	}
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"it-it", "it-IT"},
		{"EN-gb", "en-GB"},
		{"de-DE", "de-DE"},
		{"pt-br", "pt-BR"},
		{"zh-hans-cn", "zh-Hans-CN"},
		{"not a tag!", "not a tag!"},
	}

	for _, tt := range tests {
		if got := ResolveLocale(catalog(), tt.tag); got != tt.want {
			t.Errorf("ResolveLocale(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestVoicesForLanguage(t *testing.T) {
	got := VoicesForLanguage(catalog(), "en")
	want := []string{"Guy (Male)", "Jenny (Female)", "Ryan (Male)"}

	if len(got) != len(want) {
		t.Fatalf("VoicesForLanguage() returned %d voices, want %d", len(got), len(want))
	}
	for i, v := range got {
		if v.Label() != want[i] {
			t.Errorf("voice %d = %q, want %q", i, v.Label(), want[i])
		}
	}

	if got := VoicesForLanguage(catalog(), "IT-it"); len(got) != 2 {
		t.Errorf("VoicesForLanguage(IT-it) returned %d voices, want 2", len(got))
	}
	if got := VoicesForLanguage(catalog(), "fr"); len(got) != 0 {
		t.Errorf("VoicesForLanguage(fr) returned %d voices, want 0", len(got))
	}
}

func TestPickVoice(t *testing.T) {
	tests := []struct {
		locale string
		want   string
		ok     bool
	}{
		{"it-IT", "it-IT-ElsaNeural", true},
		{"en-US", "en-US-JennyNeural", true},
		{"de-DE", "de-DE-ConradNeural", true},
		{"fr-FR", "", false},
	}

	for _, tt := range tests {
		v, ok := PickVoice(catalog(), tt.locale)
		if ok != tt.ok || v.ShortName != tt.want {
			t.Errorf("PickVoice(%q) = %q, %v, want %q, %v", tt.locale, v.ShortName, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveParameters(t *testing.T) {
	configured := VoiceParameters{Voice: "en-US-JennyNeural", Language: "en-US", Rate: "0%"}

	tests := []struct {
		name      string
		requested VoiceParameters
		wantVoice string
		wantLang  string
	}{
		{"no language", VoiceParameters{Pitch: "high"}, "en-US-JennyNeural", "en-US"},
		{"other language picks a voice", VoiceParameters{Language: "it-it"}, "it-IT-ElsaNeural", "it-IT"},
		{"explicit voice wins", VoiceParameters{Language: "it-IT", Voice: "it-IT-DiegoNeural"}, "it-IT-DiegoNeural", "it-IT"},
		{"same language keeps voice", VoiceParameters{Language: "EN-us"}, "en-US-JennyNeural", "en-US"},
		{"unknown language keeps voice", VoiceParameters{Language: "fr-fr"}, "en-US-JennyNeural", "fr-FR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveParameters(catalog(), configured, tt.requested)
			if got.Voice != tt.wantVoice || got.Language != tt.wantLang {
				t.Errorf("ResolveParameters() = %s/%s, want %s/%s", got.Voice, got.Language, tt.wantVoice, tt.wantLang)
			}
			if got.Rate != "0%" {
				t.Errorf("configured rate lost: %q", got.Rate)
			}
		})
	}
}
