package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsGroupID(t *testing.T) {
	hostname := func() (string, error) { return "dispatch-0", nil }

	assert.Equal(t, "pipelinq-dispatch-settings-dispatch-0", settingsGroupID("pipelinq-dispatch", hostname))
	assert.Equal(t, settingsGroupID("g", hostname), settingsGroupID("g", hostname))
}

func TestSettingsGroupID_NoHostname(t *testing.T) {
	failing := func() (string, error) { return "", errors.New("no hostname") }

	id := settingsGroupID("g", failing)
	require.True(t, strings.HasPrefix(id, "g-settings-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "g-settings-"))
	assert.NoError(t, err)
}
