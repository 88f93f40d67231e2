package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
	"github.com/picogrid/drone-search-sim/pkg/logger"
	"gopkg.in/yaml.v3"
)

const reportVersion = "1.0"

// Report formats understood by ReportGenerator
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// GroupRecord is one configuration tried by the search and its outcome
type GroupRecord struct {
	Index          int     `json:"index" yaml:"index"`
	Speed          float64 `json:"speed" yaml:"speed"`
	Drones         int     `json:"drones" yaml:"drones"`
	Batteries      int     `json:"batteries" yaml:"batteries"`
	Weight         float64 `json:"weight" yaml:"weight"`
	MaxTimePerSim  float64 `json:"max_time_per_sim" yaml:"max_time_per_sim"`
	Successes      int     `json:"successes" yaml:"successes"`
	Trials         int     `json:"trials" yaml:"trials"`
	MeanTimeToFind float64 `json:"mean_time_to_find" yaml:"mean_time_to_find"`
	Success        bool    `json:"success" yaml:"success"`
}

// NewGroupRecord captures a group outcome for configuration c
func NewGroupRecord(index int, c search.Configuration, weight, maxTime float64, result search.GroupResult) GroupRecord {
	return GroupRecord{
		Index:          index,
		Speed:          c.Speed,
		Drones:         c.Drones,
		Batteries:      c.Batteries,
		Weight:         weight,
		MaxTimePerSim:  maxTime,
		Successes:      result.Successes,
		Trials:         result.Trials,
		MeanTimeToFind: result.MeanTimeToFind,
		Success:        result.Success(),
	}
}

// RunReport is the document written at the end of a search
type RunReport struct {
	Metadata      ReportMetadata            `json:"metadata" yaml:"metadata"`
	Configuration map[string]interface{}    `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	Fast          *search.FeasibilityPoint  `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow          []search.FeasibilityPoint `json:"slow" yaml:"slow"`
	Results       []string                  `json:"results" yaml:"results"`
	Groups        []GroupRecord             `json:"groups" yaml:"groups"`
	Statistics    ReportStatistics          `json:"statistics" yaml:"statistics"`
	Diagnostics   []string                  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	EventCounts   map[string]int            `json:"event_counts" yaml:"event_counts"`
}

// ReportMetadata identifies the run
type ReportMetadata struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Strategy    string    `json:"strategy" yaml:"strategy"`
	Seed        int64     `json:"seed" yaml:"seed"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	Duration    string    `json:"duration" yaml:"duration"`
	Version     string    `json:"version" yaml:"version"`
}

// ReportStatistics aggregates the group history
type ReportStatistics struct {
	TotalGroups      int     `json:"total_groups" yaml:"total_groups"`
	SuccessfulGroups int     `json:"successful_groups" yaml:"successful_groups"`
	TotalTrials      int     `json:"total_trials" yaml:"total_trials"`
	SuccessfulTrials int     `json:"successful_trials" yaml:"successful_trials"`
	TrialSuccessRate float64 `json:"trial_success_rate" yaml:"trial_success_rate"`
	MeanTimeToFind   float64 `json:"mean_time_to_find" yaml:"mean_time_to_find"`
	DronesLost       int     `json:"drones_lost" yaml:"drones_lost"`
}

// ReportConfig configures report generation
type ReportConfig struct {
	Path     string
	Format   string // "json" or "yaml"
	Strategy string
	Seed     int64

	// Configuration used for the run, stored verbatim in the report
	Configuration map[string]interface{}
}

// ReportGenerator builds run reports from the simulation logger and the search outcome
type ReportGenerator struct {
	logger *SimulationLogger
	config ReportConfig
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(logger *SimulationLogger, config ReportConfig) *ReportGenerator {
	if config.Format == "" {
		config.Format = FormatJSON
	}
	return &ReportGenerator{logger: logger, config: config}
}

// Generate assembles the report
func (g *ReportGenerator) Generate(points []search.FeasibilityPoint, results []string, groups []GroupRecord) *RunReport {
	summary := g.logger.GetSummary()
	end := time.Now()

	report := &RunReport{
		Metadata: ReportMetadata{
			RunID:       summary.RunID,
			Strategy:    g.config.Strategy,
			Seed:        g.config.Seed,
			GeneratedAt: end,
			Start:       summary.StartTime,
			End:         end,
			Duration:    end.Sub(summary.StartTime).Round(time.Millisecond).String(),
			Version:     reportVersion,
		},
		Configuration: g.config.Configuration,
		Slow:          []search.FeasibilityPoint{},
		Results:       append([]string(nil), results...),
		Groups:        append([]GroupRecord(nil), groups...),
		Diagnostics:   g.logger.Diagnostics(),
		EventCounts:   summary.EventCounts,
	}

	for i := range points {
		switch points[i].Kind {
		case search.PointFast:
			p := points[i]
			report.Fast = &p
		case search.PointSlow:
			report.Slow = append(report.Slow, points[i])
		}
	}

	report.Statistics = g.statistics(groups, summary)
	return report
}

func (g *ReportGenerator) statistics(groups []GroupRecord, summary SimulationSummary) ReportStatistics {
	stats := ReportStatistics{TotalGroups: len(groups)}

	var summedTime float64
	for _, group := range groups {
		stats.TotalTrials += group.Trials
		stats.SuccessfulTrials += group.Successes
		summedTime += group.MeanTimeToFind * float64(group.Successes)
		if group.Success {
			stats.SuccessfulGroups++
		}
	}
	if stats.TotalTrials > 0 {
		stats.TrialSuccessRate = float64(stats.SuccessfulTrials) / float64(stats.TotalTrials)
	}
	if stats.SuccessfulTrials > 0 {
		stats.MeanTimeToFind = summedTime / float64(stats.SuccessfulTrials)
	}
	if lost, ok := summary.Metrics["drones_lost"]; ok {
		stats.DronesLost = int(lost.Value)
	}
	return stats
}

// Save writes the report to the configured path in the configured format
func (g *ReportGenerator) Save(report *RunReport) error {
	if g.config.Path == "" {
		return fmt.Errorf("report path is empty")
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(g.config.Format) {
	case FormatJSON:
		data, err = json.MarshalIndent(report, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(report)
	default:
		return fmt.Errorf("unsupported format: %s", g.config.Format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(g.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(g.config.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Successf("Report saved to: %s", g.config.Path)
	return nil
}

// ConfigMap flattens any yaml-tagged configuration value into a generic map
func ConfigMap(v interface{}) (map[string]interface{}, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	out := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return out, nil
}
