package main

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/ttsgate/internal/tts/engines/mock"
)

func TestFilterVoices(t *testing.T) {
	voices := mock.DefaultVoices()

	got := filterVoices(voices, "jenny")
	if len(got) != 1 || got[0].ShortName != "en-US-JennyNeural" {
		t.Errorf("filterVoices(jenny) = %v", got)
	}

	if got := filterVoices(voices, "qqq"); len(got) != 0 {
		t.Errorf("filterVoices(qqq) = %v, want none", got)
	}
}

func TestRenderVoices(t *testing.T) {
	out := renderVoices(mock.DefaultVoices())

	for _, want := range []string{"en-US-JennyNeural", "Jenny (Female)", "cheerful, sad", "7 voices"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}
