package catalog

import (
	"fmt"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\u3000 ", ""},
		{"lowercases", "Moon.WAV", "moon.wav"},
		{"trims", "  sun.wav \n", "sun.wav"},
		{"ideographic space becomes ascii", "月亮\u3000之歌.wav", "月亮 之歌.wav"},
		{"leading ideographic space trimmed", "\u3000moon.wav\u3000", "moon.wav"},
		{"decomposed accent composed", "cafe\u0301.wav", "caf\u00e9.wav"},
		{"sharp s folds", "STRASSE.wav", "strasse.wav"},
		{"cherokee lowercased", "\u13be.WAV", "\uab8e.wav"},
		{"cherokee lowercase kept", "\uab8e.wav", "\uab8e.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "moon.wav", " MOON.WAV ", "\u3000月亮.wav", "Straße.mp3",
		"cafe\u0301.WAV", "ǅemal.wav", "ΣΊΣΥΦΟΣ.flac", "İstanbul.ogg", "a\u3000\u3000b",
		"Ꮎ.wav", "ꮎ.wav", "ᏸᏴ.mp3",
	}
	for _, s := range inputs {
		once := Canonicalize(s)
		assert.Equal(t, once, Canonicalize(once), "input %q", s)
	}
}

func TestCanonicalize_IdempotentEveryRune(t *testing.T) {
	var unstable []string
	for r := rune(0); r <= unicode.MaxRune; r++ {
		if !utf8.ValidRune(r) {
			continue
		}
		once := Canonicalize(string(r))
		if twice := Canonicalize(once); twice != once {
			unstable = append(unstable, fmt.Sprintf("U+%04X %q -> %q -> %q", r, string(r), once, twice))
		}
	}
	assert.Empty(t, unstable)
}

func TestCanonicalize_Equivalences(t *testing.T) {
	groups := [][]string{
		{"moon.wav", "MOON.WAV", "Moon.Wav", "  moon.wav", "moon.wav\t", "\u3000moon.wav\u3000"},
		{"月亮 之歌.wav", "月亮\u3000之歌.wav", " 月亮\u3000之歌.WAV "},
		{"caf\u00e9.wav", "cafe\u0301.wav", "CAFE\u0301.WAV"},
		{"ꮎ.wav", "Ꮎ.wav", "Ꮎ.WAV"},
		{"ᏸ.wav", "Ᏸ.wav"},
	}
	for _, group := range groups {
		want := Canonicalize(group[0])
		for _, s := range group[1:] {
			assert.Equal(t, want, Canonicalize(s), "input %q", s)
		}
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "moon.wav", baseName("moon.wav"))
	assert.Equal(t, "moon.wav", baseName("audio/moon.wav"))
	assert.Equal(t, "moon.wav", baseName(`C:\audio\moon.wav`))
	assert.Equal(t, "moon.wav", baseName("  /srv/audio/moon.wav  "))
	assert.Equal(t, "", baseName(""))
	assert.Equal(t, "", baseName("/"))
	assert.Equal(t, "", baseName("   "))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ghost.WAV", displayName("  Ghost.WAV "))
	assert.Equal(t, "caf\u00e9.wav", displayName("cafe\u0301.wav"))
}
