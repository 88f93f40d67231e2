package reporting

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRecapMessage(t *testing.T) {
	tests := []struct {
		name   string
		config search.Configuration
		want   string
	}{
		{
			name:   "plural",
			config: search.Configuration{Speed: 10, Drones: 3, Batteries: 2},
			want:   "Trying with 3 drones of 2.50kg at 10.00m/s with 2 batteries of 100.0Wh",
		},
		{
			name:   "singular",
			config: search.Configuration{Speed: 2.5, Drones: 1, Batteries: 1},
			want:   "Trying with 1 drone of 2.50kg at 2.50m/s with 1 battery of 100.0Wh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecapMessage(tt.config, 2.5, 100))
		})
	}
}

func TestSimulationLoggerEvents(t *testing.T) {
	var out bytes.Buffer
	sl := NewSimulationLogger("", &out)
	require.NotEmpty(t, sl.RunID())

	cfg := search.Configuration{Speed: 4, Drones: 2, Batteries: 1}
	sl.LogRecap(cfg, 2, 100, 600)
	sl.LogTrial(1, true, 42, 0)
	sl.LogTrial(2, false, 600, 1)
	sl.LogDroneLost(2, uuid.New())
	sl.LogGroup(cfg, search.GroupResult{Successes: 1, Trials: 2, MeanTimeToFind: 42})
	sl.Diagnostic("battery range exhausted")

	summary := sl.GetSummary()
	assert.Equal(t, 6, summary.TotalEvents)
	assert.Equal(t, 2, summary.EventCounts[EventTypeTrial])
	assert.Equal(t, 1, summary.EventCounts[EventTypeDroneLost])
	assert.Equal(t, 2.0, summary.Metrics["trials"].Value)
	assert.Equal(t, 1.0, summary.Metrics["successful_trials"].Value)
	assert.Equal(t, 1.0, summary.Metrics["drones_lost"].Value)
	assert.Equal(t, []string{"battery range exhausted"}, sl.Diagnostics())

	console := out.String()
	assert.Contains(t, console, "Lost communication with drone 2")
	assert.Contains(t, console, "Trying with 2 drones")
	assert.Contains(t, console, "battery range exhausted")
	assert.NotContains(t, console, "Trial 1", "trials are only echoed when verbose")
}

func TestSimulationLoggerVerboseAndLabel(t *testing.T) {
	var out bytes.Buffer
	sl := NewSimulationLogger("run-1", &out)
	sl.SetVerbose(true)
	sl.SetLabel("sweep")

	sl.LogTrial(3, true, 12.5, 0)

	assert.Contains(t, out.String(), "Trial 3 found objective after 12.5s")
	assert.Contains(t, out.String(), "[sweep]")
}

func TestSimulationLoggerImplementsDiagnostics(t *testing.T) {
	var _ search.Diagnostics = NewSimulationLogger("x", &bytes.Buffer{})
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	sl := NewSimulationLogger("0123456789abcdef", &out)
	sl.UpdateMetric("groups", 5, "count")
	sl.PrintSummary()

	assert.Contains(t, out.String(), "SEARCH SUMMARY 01234567")
	assert.Contains(t, out.String(), "groups")
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.txt")
	sink := NewFileSink(path)

	lines := []string{
		"speed:20.000000,drones:2,batteries:1,(weight:2.000000)",
		search.ResultSeparator,
		"speed:10.000000,drones:3,batteries:1,(weight:2.000000)",
	}
	require.NoError(t, sink.WriteResults(lines))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(lines, "\n")+"\n", string(data))
}

func TestFileSinkFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	sink := NewFileSink(filepath.Join(blocker, "results.txt"))
	assert.Error(t, sink.WriteResults([]string{search.ResultSeparator}))

	var out bytes.Buffer
	written := EmitResults([]string{search.ResultSeparator}, sink, WriterSink{W: &out})
	assert.Equal(t, 1, written)
	assert.Equal(t, search.ResultSeparator+"\n", out.String())
}

func testGroups() []GroupRecord {
	return []GroupRecord{
		NewGroupRecord(1, search.Configuration{Speed: 1, Drones: 2, Batteries: 1}, 2.5, 100,
			search.GroupResult{Successes: 2, Trials: 3, MeanTimeToFind: 30}),
		NewGroupRecord(2, search.Configuration{Speed: 2, Drones: 2, Batteries: 1}, 2.5, 50,
			search.GroupResult{Successes: 1, Trials: 3, MeanTimeToFind: 60}),
	}
}

func TestReportGenerate(t *testing.T) {
	sl := NewSimulationLogger("run", &bytes.Buffer{})
	sl.LogDroneLost(1, uuid.New())
	sl.Diagnostic("fallback")

	points := []search.FeasibilityPoint{
		{Kind: search.PointSlow, Speed: 2, Drones: 1, Batteries: 1, Weight: 2.5},
		{Kind: search.PointFast, Speed: 3, Drones: 1, Batteries: 1, Weight: 2.5},
		{Kind: search.PointSlow, Speed: 2, Drones: 2, Batteries: 1, Weight: 2.5},
	}

	gen := NewReportGenerator(sl, ReportConfig{Strategy: "spiral", Seed: 7})
	report := gen.Generate(points, []string{"a", "b"}, testGroups())

	require.NotNil(t, report.Fast)
	assert.Equal(t, 3.0, report.Fast.Speed)
	assert.Len(t, report.Slow, 2)
	assert.Equal(t, "spiral", report.Metadata.Strategy)
	assert.Equal(t, int64(7), report.Metadata.Seed)
	assert.Equal(t, []string{"fallback"}, report.Diagnostics)

	stats := report.Statistics
	assert.Equal(t, 2, stats.TotalGroups)
	assert.Equal(t, 1, stats.SuccessfulGroups)
	assert.Equal(t, 6, stats.TotalTrials)
	assert.Equal(t, 3, stats.SuccessfulTrials)
	assert.InDelta(t, 0.5, stats.TrialSuccessRate, 1e-9)
	assert.InDelta(t, 40, stats.MeanTimeToFind, 1e-9)
	assert.Equal(t, 1, stats.DronesLost)
}

func TestReportSave(t *testing.T) {
	sl := NewSimulationLogger("run", &bytes.Buffer{})
	points := []search.FeasibilityPoint{{Kind: search.PointSlow, Speed: 2, Drones: 1, Batteries: 1, Weight: 2.5}}

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		gen := NewReportGenerator(sl, ReportConfig{Path: path, Format: FormatJSON})
		require.NoError(t, gen.Save(gen.Generate(points, nil, testGroups())))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded RunReport
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "run", decoded.Metadata.RunID)
		assert.Len(t, decoded.Groups, 2)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.yaml")
		gen := NewReportGenerator(sl, ReportConfig{Path: path, Format: FormatYAML})
		require.NoError(t, gen.Save(gen.Generate(points, nil, testGroups())))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "groups")
		assert.Contains(t, decoded, "slow")
	})

	t.Run("unsupported", func(t *testing.T) {
		gen := NewReportGenerator(sl, ReportConfig{Path: filepath.Join(t.TempDir(), "r.html"), Format: "html"})
		assert.Error(t, gen.Save(gen.Generate(points, nil, nil)))
	})
}

func TestConfigMap(t *testing.T) {
	type inner struct {
		Speed float64 `yaml:"speed"`
	}
	type outer struct {
		Name  string `yaml:"name"`
		Inner inner  `yaml:"inner"`
	}

	m, err := ConfigMap(outer{Name: "x", Inner: inner{Speed: 2.5}})
	require.NoError(t, err)
	assert.Equal(t, "x", m["name"])
	nested, ok := m["inner"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 2.5, nested["speed"])
}
