package convert

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	assert.Equal(t, 1.5, ToFloat64("1.5"))
	assert.Equal(t, 1.5, ToFloat64(" 1.5 "))
	assert.Equal(t, 3.0, ToFloat64(3))
	assert.Equal(t, 2.25, ToFloat64(json.Number("2.25")))
	assert.Equal(t, 0.0, ToFloat64("abc"))
	assert.Equal(t, 0.0, ToFloat64(struct{}{}))
}

func TestIsFinitePositive(t *testing.T) {
	assert.True(t, IsFinitePositive(0.0001))
	assert.False(t, IsFinitePositive(0))
	assert.False(t, IsFinitePositive(-1))
	assert.False(t, IsFinitePositive(math.Inf(1)))
	assert.False(t, IsFinitePositive(math.NaN()))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.0003", FormatFloat(0.0003))
	assert.Equal(t, "50000", FormatFloat(50000))
}
