package ssml

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"5 < 10 & true", "5 &lt; 10 &amp; true"},
		{`say "hi" & 'bye'`, "say &quot;hi&quot; &amp; &apos;bye&apos;"},
		{"a > b", "a &gt; b"},
		{"&amp;", "&amp;amp;"},
		{"你好。", "你好。"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	got, err := Sanitize("5 < 10 & true")
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	if want := "5 &lt; 10 &amp; true"; got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
	if strings.Contains(got, "<") {
		t.Errorf("Sanitize() left a raw '<': %q", got)
	}

	for _, bad := range []string{"bell\x07", "null\x00byte", string([]byte{0xff, 0xfe}), "\uFFFE"} {
		if _, err := Sanitize(bad); !errors.Is(err, ErrInvalidText) {
			t.Errorf("Sanitize(%q) error = %v, want ErrInvalidText", bad, err)
		}
	}

	if _, err := Sanitize("tab\tnew\nline\r"); err != nil {
		t.Errorf("Sanitize() rejected XML whitespace: %v", err)
	}
}

func TestEnvelope_WellFormed(t *testing.T) {
	texts := []string{
		"5 < 10 & true",
		`He said "no" and left.`,
		"</prosody></voice></speak><speak>",
		"今天天气很好。",
	}
	voices := []Voice{
		{Language: "en-US", Name: "en-US-JennyNeural"},
		{Language: "en-US", Name: "en-US-JennyNeural", Style: "cheerful", Role: "Girl", StyleDegree: "1.5"},
		{Language: "en-US", Name: `bad'name"<>`, Rate: "+10%", Pitch: "x-high", Volume: "loud"},
	}

	for _, v := range voices {
		for _, text := range texts {
			escaped, err := Sanitize(text)
			if err != nil {
				t.Fatalf("Sanitize(%q) error = %v", text, err)
			}
			doc := Envelope(v, escaped)

			got, err := textContent(doc)
			if err != nil {
				t.Fatalf("envelope for %q is not well-formed: %v\n%s", text, err, doc)
			}
			if got != text {
				t.Errorf("text content = %q, want %q", got, text)
			}
		}
	}
}

func TestEnvelope_Structure(t *testing.T) {
	doc := Envelope(Voice{Language: "de-DE", Name: "de-DE-KatjaNeural"}, "Hallo")
	for _, want := range []string{
		"xml:lang='de-DE'",
		"name='de-DE-KatjaNeural'",
		"rate='0%'",
		"pitch='default'",
		"volume='default'",
		"xmlns:mstts='" + MSTTSNamespace + "'",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("envelope missing %s:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "express-as") {
		t.Errorf("express-as emitted without a style:\n%s", doc)
	}

	styled := Envelope(Voice{Language: "en-US", Name: "v", Style: "sad", StyleDegree: "2"}, "x")
	if !strings.Contains(styled, "<mstts:express-as style='sad' styledegree='2'>") {
		t.Errorf("styled envelope = %s", styled)
	}
	if strings.Contains(styled, "role=") {
		t.Errorf("role emitted when unset: %s", styled)
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.0, "+0%"},
		{1.2, "+20%"},
		{0.87, "-13%"},
		{0.5, "-50%"},
		{2.5, "+150%"},
		{3.0, "+200%"},
		{10, "10%"},
		{-20, "-20%"},
		{0, "0%"},
		{0.05, "0%"},
	}

	for _, tt := range tests {
		if got := FormatRate(tt.in); got != tt.want {
			t.Errorf("FormatRate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0%"},
		{"0.87", "-13%"},
		{"1.25", "+25%"},
		{"15", "15%"},
		{"-10", "-10%"},
		{"+10%", "+10%"},
		{"slow", "slow"},
		{" 1.5 ", "+50%"},
	}

	for _, tt := range tests {
		if got := NormalizeRate(tt.in); got != tt.want {
			t.Errorf("NormalizeRate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// textContent parses doc and returns its concatenated character data.
func textContent(doc string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
}
