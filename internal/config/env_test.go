package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	assert.Equal(t, "value", ParseString("TEST_STRING", "default"))
	assert.Equal(t, "default", ParseString("TEST_STRING_UNSET", "default"))

	t.Setenv("TEST_STRING_EMPTY", "")
	assert.Equal(t, "default", ParseString("TEST_STRING_EMPTY", "default"))
}

func TestParseInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("TEST_INT", 7))

	t.Setenv("TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7, ParseInt("TEST_INT_BAD", 7))

	assert.Equal(t, 7, ParseInt("TEST_INT_UNSET", 7))
}

func TestParseBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, ParseBool("TEST_BOOL", false))

	t.Setenv("TEST_BOOL_BAD", "yes-please")
	assert.False(t, ParseBool("TEST_BOOL_BAD", false))
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("TEST_DUR", time.Second))

	t.Setenv("TEST_DUR_BAD", "ninety")
	assert.Equal(t, time.Second, ParseDuration("TEST_DUR_BAD", time.Second))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, ParseFloat("TEST_FLOAT", 1.0), 1e-9)

	t.Setenv("TEST_FLOAT_BAD", "x")
	assert.InDelta(t, 1.0, ParseFloat("TEST_FLOAT_BAD", 1.0), 1e-9)
}
