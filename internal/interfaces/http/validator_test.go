package http

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestValidClientID(t *testing.T) {
	assert.True(t, ValidClientID("user-123"))
	assert.True(t, ValidClientID("tg:42"))
	assert.False(t, ValidClientID(""))
	assert.False(t, ValidClientID("has space"))
	assert.False(t, ValidClientID(strings.Repeat("a", MaxClientIDLength+1)))
}

func TestValidLocationName(t *testing.T) {
	assert.True(t, ValidLocationName("St. Louis"))
	assert.True(t, ValidLocationName("Coeur d'Alene"))
	assert.False(t, ValidLocationName("  "))
	assert.False(t, ValidLocationName("123 Main"))
}

func TestSanitizeAndTruncate(t *testing.T) {
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "ab", SanitizeString("a\xffb"))

	s := TruncateString("héllo", 2)
	assert.True(t, utf8.ValidString(s))
	assert.Equal(t, "h", s)
	assert.Equal(t, "short", TruncateString("short", 10))
}
