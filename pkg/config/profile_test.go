package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfilesDefaultsWhenMissing(t *testing.T) {
	p, err := LoadProfilesFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"full", "quick"}, p.Names())
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestProfilesRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profiles.yaml")

	p := &Profiles{}
	require.NoError(t, p.Upsert(Profile{Name: "wide", Parameters: map[string]interface{}{"environment_y_length": 5000.0}}))
	require.NoError(t, p.Upsert(Profile{Name: "spiral", Parameters: map[string]interface{}{"strategy": "spiral"}}))
	require.NoError(t, p.Upsert(Profile{Name: "wide", Description: "replaced"}))
	require.NoError(t, p.Select("spiral"))
	require.NoError(t, SaveProfilesToFile(p, path))

	loaded, err := LoadProfilesFromFile(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Profiles, 2)

	current, ok := loaded.Current()
	require.True(t, ok)
	assert.Equal(t, "spiral", current.Parameters["strategy"])

	wide, ok := loaded.Get("wide")
	require.True(t, ok)
	assert.Equal(t, "replaced", wide.Description)
	assert.Empty(t, wide.Parameters)
}

func TestProfilesRemoveClearsSelection(t *testing.T) {
	p := defaultProfiles()
	require.NoError(t, p.Select("quick"))
	require.NoError(t, p.Remove("quick"))

	assert.Equal(t, "", p.Selected)
	assert.Error(t, p.Remove("quick"))
	assert.Error(t, p.Select("quick"))
	assert.Error(t, p.Upsert(Profile{}))
}
