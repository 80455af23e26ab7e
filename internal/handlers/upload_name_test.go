package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"moon.wav", "moon.wav"},
		{"  moon.wav ", "moon.wav"},
		{"albums/moon.wav", "moon.wav"},
		{`C:\music\moon.wav`, "moon.wav"},
		{"../../etc/passwd", "passwd"},
		{"..", ""},
		{"dir/", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, uploadName(tt.raw), tt.raw)
	}
}

func TestInlineDisposition(t *testing.T) {
	assert.Equal(t, "inline; filename*=UTF-8''moon.wav", inlineDisposition("moon.wav"))
	assert.Equal(t, "inline; filename*=UTF-8''%E6%9C%88%E4%BA%AE.wav", inlineDisposition("月亮.wav"))
}
