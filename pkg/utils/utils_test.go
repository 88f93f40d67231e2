package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/picogrid/drone-search-sim/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceParameter(t *testing.T) {
	tests := []struct {
		name    string
		param   simulation.Parameter
		raw     interface{}
		want    interface{}
		wantErr bool
	}{
		{"int from string", simulation.Parameter{Type: "integer"}, "12", 12, false},
		{"int from yaml float", simulation.Parameter{Type: "integer"}, 3.0, 3, false},
		{"int below min", simulation.Parameter{Type: "integer", Min: 1}, "0", nil, true},
		{"int above max", simulation.Parameter{Type: "integer", Max: 10}, 11, nil, true},
		{"float", simulation.Parameter{Type: "float", Min: 0.5, Max: 100}, "12.5", 12.5, false},
		{"float not a number", simulation.Parameter{Type: "float"}, "fast", nil, true},
		{"option", simulation.Parameter{Type: "string", Options: []string{"random", "sweep", "spiral"}}, "sweep", "sweep", false},
		{"bad option", simulation.Parameter{Type: "string", Options: []string{"random"}}, "zigzag", nil, true},
		{"bool", simulation.Parameter{Type: "boolean"}, "true", true, false},
		{"duration", simulation.Parameter{Type: "duration"}, "250ms", 250 * time.Millisecond, false},
		{"unknown type", simulation.Parameter{Type: "vector"}, "1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceParameter(tt.param, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveParametersWithoutPrompts(t *testing.T) {
	params := []simulation.Parameter{
		{Name: "strategy", Type: "string", Default: "spiral", Options: []string{"random", "sweep", "spiral"}},
		{Name: "max_drones", Type: "integer", Default: 8},
		{Name: "seed", Type: "integer"},
	}
	t.Setenv("DRONE_SEARCH_MAX_DRONES", "12")

	got, err := ResolveParameters(params, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"strategy": "spiral", "max_drones": 12}, got)
}

func TestResolveParametersRequiredMissing(t *testing.T) {
	_, err := ResolveParameters([]simulation.Parameter{{Name: "results_path", Type: "string", Required: true}}, false)
	assert.ErrorContains(t, err, "required parameter results_path")
}

func TestResolveParametersRejectsBadEnv(t *testing.T) {
	t.Setenv("DRONE_SEARCH_MIN_SPEED", "quick")
	_, err := ResolveParameters([]simulation.Parameter{{Name: "min_speed", Type: "float", Default: 1.0}}, false)
	assert.Error(t, err)
}

func TestDiscoverSimulationsIn(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	write("zeta/simulation.yaml", "name: Zeta\nparameters:\n  - name: seed\n    type: integer\n")
	write("alpha/simulation.yaml", "name: Alpha\ndescription: first\n")
	write("broken/simulation.yaml", "name: [unterminated\n")
	write("alpha/other.yaml", "name: Ignored\n")

	sims, err := DiscoverSimulationsIn(dir)
	require.NoError(t, err)
	require.Len(t, sims, 2)
	assert.Equal(t, "Alpha", sims[0].Config.Name)
	assert.Equal(t, filepath.Join(dir, "alpha"), sims[0].Path)
	assert.Equal(t, "Zeta", sims[1].Config.Name)
	require.Len(t, sims[1].Config.Parameters, 1)

	found, ok := FindSimulation(sims, "Zeta")
	assert.True(t, ok)
	assert.Equal(t, "seed", found.Config.Parameters[0].Name)
}
