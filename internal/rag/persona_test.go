package rag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPersona_MissingFileFallsBack(t *testing.T) {
	p, err := LoadPersona(filepath.Join(t.TempDir(), "nope.json"))

	require.NoError(t, err)
	assert.Equal(t, defaultPersona.SystemMessage, p.SystemMessage)
}

func TestLoadPersona_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.json")
	content := `{
		"name": "Ada",
		"description": "site assistant",
		"systemMessage": "You are Ada.",
		"traits": {"expertise": ["go"], "tone": "warm", "style": "brief"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadPersona(path)

	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "You are Ada.", p.SystemMessage)
	assert.Equal(t, []string{"go"}, p.Traits.Expertise)
}

func TestLoadPersona_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadPersona(path)
	assert.Error(t, err)
}

func TestLoadPersona_EmptySystemMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x"}`), 0o600))

	_, err := LoadPersona(path)
	assert.Error(t, err)
}
