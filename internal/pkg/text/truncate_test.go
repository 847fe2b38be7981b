package text

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 1000))
	assert.Equal(t, "abc", Truncate("abc", 0))

	long := strings.Repeat("x", 1200)
	out := Truncate(long, 1000)
	assert.Equal(t, 1000, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, Ellipsis))
	assert.Equal(t, strings.Repeat("x", 997), strings.TrimSuffix(out, Ellipsis))

	exact := strings.Repeat("y", 1000)
	assert.Equal(t, exact, Truncate(exact, 1000))

	wide := strings.Repeat("盈", 1001)
	out = Truncate(wide, 1000)
	assert.Equal(t, 1000, utf8.RuneCountInString(out))
}
