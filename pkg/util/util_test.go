package util

import (
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationFromToml(t *testing.T) {
	var v struct {
		ReadTimeout Duration
	}
	_, err := toml.Decode(`ReadTimeout = "1500ms"`, &v)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, v.ReadTimeout.Duration)

	text, err := v.ReadTimeout.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))
}

func TestDeadlineFrom(t *testing.T) {
	now := time.Now()
	assert.True(t, DeadlineFrom(now, 0).IsZero())
	assert.Equal(t, now.Add(time.Second), DeadlineFrom(now, time.Second))
}

func TestHexDumpString(t *testing.T) {
	out := HexDumpString([]byte("NATSPOD\x00abcdefghijklmnop"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "000000000 4E 41 54 53 50 4F 44 00"))
	assert.True(t, strings.HasSuffix(lines[1], "NATSPOD.abcdefgh"))
	assert.True(t, strings.HasSuffix(lines[2], "ijklmnop"))
}

func TestToPrintableString(t *testing.T) {
	assert.Equal(t, "", ToPrintableString(nil))
	assert.Equal(t, "ab.c", ToPrintableString([]byte{'a', 'b', 0, 'c'}))
	assert.Equal(t, "ab [6162]", ToPrintableAndHexString([]byte("ab")))
}
