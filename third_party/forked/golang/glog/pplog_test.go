package glog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitLoggingLevels(t *testing.T) {
	defer InitLogging("info", "")

	InitLogging("debug", " [test] ")
	assert.True(t, bool(LOG_ERROR))
	assert.True(t, bool(LOG_INFO))
	assert.True(t, bool(LOG_DEBUG))
	assert.False(t, bool(LOG_VERBOSE))

	InitLogging("error", " [test] ")
	assert.True(t, bool(LOG_ERROR))
	assert.False(t, bool(LOG_WARN))
	assert.False(t, bool(LOG_INFO))

	InitLogging("VERBOSE", " [test] ")
	assert.True(t, bool(LOG_VERBOSE))

	InitLogging("bogus", " [test] ")
	assert.True(t, bool(LOG_INFO))
	assert.False(t, bool(LOG_DEBUG))
}

func TestInitialize(t *testing.T) {
	defer InitLogging("info", "")

	assert.Error(t, Initialize("info"))
	assert.Error(t, Initialize(3, "app"))
	assert.Error(t, Initialize("info", 3))
	assert.NoError(t, Initialize("warning", " [app] "))
	assert.True(t, bool(LOG_WARN))
	assert.False(t, bool(LOG_INFO))
}

func TestPrefix(t *testing.T) {
	defer SetAppName("")

	SetAppName(" [palcli] ")
	assert.Equal(t, " [palcli] [DEBUG] x", withPrefix("[DEBUG] ", "x"))
}
