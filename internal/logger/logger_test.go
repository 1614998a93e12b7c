package logger

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "j***@example.com",
		"élodie@exemple.fr":    "é***@exemple.fr",
		"юля@почта.рф":         "ю***@почта.рф",
		"@example.com":         "***",
		"not-an-email":         "***",
		"":                     "***",
	}
	for in, want := range cases {
		got := MaskEmail(in)
		assert.Equal(t, want, got, in)
		assert.True(t, utf8.ValidString(got), in)
	}
}
