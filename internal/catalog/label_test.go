package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain name", "こめ 精白米", "こめ 精白米"},
		{"square brackets", "こむぎ ［小麦粉］ 強力粉", "こむぎ  強力粉"},
		{"round brackets", "だいず （全粒） 国産", "だいず  国産"},
		{"angle brackets", "＜畜肉類＞ うし かたロース", "うし かたロース"},
		{"full-width space", "とり　むね　皮つき", "とり むね 皮つき"},
		{"brackets only", "［こめ］", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeLabel(tt.raw))
		})
	}
}
