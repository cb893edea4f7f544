package main

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/ttsgate/internal/tts"
	"github.com/dgnsrekt/ttsgate/internal/tts/engines/mock"
)

// flagCommand registers the persistent flags on a fresh command so Changed
// starts out false for every test.
func flagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.StringVar(&flagRegion, "region", "", "")
	f.StringVar(&flagEndpoint, "endpoint", "", "")
	f.StringVar(&flagLogLevel, "log-level", "", "")
	f.StringVarP(&flagVoice, "voice", "v", "", "")
	f.StringVarP(&flagLanguage, "language", "l", "", "")
	f.StringVarP(&flagRate, "rate", "r", "", "")
	f.StringVar(&flagPitch, "pitch", "", "")
	f.StringVar(&flagVolume, "volume", "", "")
	f.StringVar(&flagStyle, "style", "", "")
	f.StringVarP(&flagFormat, "format", "f", "", "")
	f.IntVar(&flagLookahead, "lookahead", 1, "")
	f.BoolVar(&flagMarkdown, "markdown", false, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return cmd
}

func TestApplyFlags(t *testing.T) {
	t.Run("Unset flags keep the config", func(t *testing.T) {
		c := tts.DefaultConfig()
		c.Region = "westeurope"
		c.Lookahead = 4

		applyFlags(flagCommand(t), &c)

		if c.Region != "westeurope" || c.Lookahead != 4 {
			t.Errorf("region=%q lookahead=%d, want westeurope/4", c.Region, c.Lookahead)
		}
	})

	t.Run("Set flags win", func(t *testing.T) {
		c := tts.DefaultConfig()
		c.Region = "westeurope"

		cmd := flagCommand(t, "--region", "northeurope", "-r", "1.5", "--lookahead", "3", "--markdown", "-f", "raw-16khz-16bit-mono-pcm")
		applyFlags(cmd, &c)

		if c.Region != "northeurope" {
			t.Errorf("Region = %q, want northeurope", c.Region)
		}
		if c.Voice.Rate != "+50%" {
			t.Errorf("Rate = %q, want +50%%", c.Voice.Rate)
		}
		if c.Lookahead != 3 || !c.StripMarkdown {
			t.Errorf("lookahead=%d markdown=%t, want 3/true", c.Lookahead, c.StripMarkdown)
		}
		if c.Voice.OutputFormat != "raw-16khz-16bit-mono-pcm" {
			t.Errorf("OutputFormat = %q", c.Voice.OutputFormat)
		}
		if c.Voice.Pitch != tts.DefaultConfig().Voice.Pitch {
			t.Errorf("Pitch changed to %q", c.Voice.Pitch)
		}
	})

	t.Run("Voice is left to resolveVoice", func(t *testing.T) {
		c := tts.DefaultConfig()
		applyFlags(flagCommand(t, "-v", "en-GB-RyanNeural", "-l", "en-GB"), &c)
		if c.Voice.Voice != tts.DefaultVoice {
			t.Errorf("Voice = %q, want %q", c.Voice.Voice, tts.DefaultVoice)
		}
	})
}

func TestRequestedVoice(t *testing.T) {
	got := requestedVoice(flagCommand(t, "-l", "it"))
	if got.Language != "it" || got.Voice != "" {
		t.Errorf("requestedVoice = %+v, want language only", got)
	}

	got = requestedVoice(flagCommand(t))
	if got != (tts.VoiceParameters{}) {
		t.Errorf("requestedVoice = %+v, want zero value", got)
	}
}

func TestResolveVoice(t *testing.T) {
	ctx := context.Background()
	configured := tts.DefaultConfig().Voice

	tests := []struct {
		name      string
		catalog   tts.VoiceCatalog
		requested tts.VoiceParameters
		voice     string
		language  string
	}{
		{"Nothing requested", mock.New(), tts.VoiceParameters{}, "en-US-JennyNeural", "en-US"},
		{"Language picks a voice", mock.New(), tts.VoiceParameters{Language: "it"}, "it-IT-ElsaNeural", "it-IT"},
		{"Explicit voice wins", mock.New(), tts.VoiceParameters{Voice: "it-IT-DiegoNeural", Language: "it"}, "it-IT-DiegoNeural", "it-IT"},
		{"No catalog", nil, tts.VoiceParameters{Voice: "en-GB-RyanNeural"}, "en-GB-RyanNeural", "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveVoice(ctx, tt.catalog, configured, tt.requested)
			if got.Voice != tt.voice || got.Language != tt.language {
				t.Errorf("resolveVoice = %s/%s, want %s/%s", got.Voice, got.Language, tt.voice, tt.language)
			}
		})
	}
}

func TestDefaultConfigFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}

	if got, want := tts.LoadConfigFromViper(v), tts.DefaultConfig(); got != want {
		t.Errorf("default config file drifted from DefaultConfig:\n got %+v\nwant %+v", got, want)
	}
}

func TestJoinArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"Hello"}, "Hello"},
		{[]string{"Hello", "there."}, "Hello there."},
		{[]string{" padded ", ""}, "padded"},
	}
	for _, tt := range tests {
		if got := joinArgs(tt.args); got != tt.want {
			t.Errorf("joinArgs(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
