package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
	"github.com/picogrid/drone-search-sim/pkg/logger"
)

// SimulationLogger records search events and metrics and echoes the important ones to the console
type SimulationLogger struct {
	runID     string
	label     string
	startTime time.Time
	out       io.Writer
	verbose   bool

	mu          sync.RWMutex
	events      []SimulationEvent
	metrics     map[string]Metric
	diagnostics []string
}

// SimulationEvent represents a logged simulation event
type SimulationEvent struct {
	Timestamp time.Time              `json:"timestamp" yaml:"timestamp"`
	Type      string                 `json:"type" yaml:"type"`
	Severity  string                 `json:"severity" yaml:"severity"`
	EntityID  *uuid.UUID             `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	Message   string                 `json:"message" yaml:"message"`
	Details   map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// Metric represents a tracked metric
type Metric struct {
	Name        string        `json:"name" yaml:"name"`
	Value       float64       `json:"value" yaml:"value"`
	Unit        string        `json:"unit" yaml:"unit"`
	LastUpdated time.Time     `json:"last_updated" yaml:"last_updated"`
	History     []MetricPoint `json:"-" yaml:"-"`
}

// MetricPoint represents a metric value at a point in time
type MetricPoint struct {
	Timestamp time.Time
	Value     float64
}

const (
	EventTypeRecap       = "recap"
	EventTypeTrial       = "trial"
	EventTypeGroup       = "group"
	EventTypeFeasibility = "feasibility"
	EventTypeDroneLost   = "drone_lost"
	EventTypeDiagnostic  = "diagnostic"
	EventTypeSystem      = "system"
)

const (
	SeverityDebug   = "debug"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

const (
	maxEvents        = 10000
	maxMetricHistory = 1000
)

var (
	colorDebug   = color.New(color.FgHiBlack)
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorSuccess = color.New(color.FgGreen)
	colorFail    = color.New(color.FgRed, color.Bold)
	colorLabel   = color.New(color.FgMagenta, color.Bold)
)

// NewSimulationLogger creates a logger for one search run. An empty runID gets a random one.
func NewSimulationLogger(runID string, out io.Writer) *SimulationLogger {
	if runID == "" {
		runID = uuid.NewString()
	}
	if out == nil {
		out = os.Stdout
	}
	return &SimulationLogger{
		runID:     runID,
		startTime: time.Now(),
		out:       out,
		metrics:   make(map[string]Metric),
	}
}

// SetVerbose echoes per-trial events to the console
func (sl *SimulationLogger) SetVerbose(verbose bool) { sl.verbose = verbose }

// SetLabel tags every console line, used to tell concurrent searches apart
func (sl *SimulationLogger) SetLabel(label string) { sl.label = label }

func (sl *SimulationLogger) RunID() string        { return sl.runID }
func (sl *SimulationLogger) StartTime() time.Time { return sl.startTime }

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// RecapMessage describes the configuration about to be tried
func RecapMessage(c search.Configuration, weight, capacity float64) string {
	return fmt.Sprintf("Trying with %d drone%s of %.2fkg at %.2fm/s with %d batter%s of %.1fWh",
		c.Drones, plural(c.Drones, "", "s"),
		weight, c.Speed,
		c.Batteries, plural(c.Batteries, "y", "ies"), capacity)
}

// LogRecap logs the configuration the next group will run
func (sl *SimulationLogger) LogRecap(c search.Configuration, weight, capacity, maxTime float64) {
	message := RecapMessage(c, weight, capacity)
	sl.logEvent(SimulationEvent{
		Type:     EventTypeRecap,
		Severity: SeverityInfo,
		Message:  message,
		Details: map[string]interface{}{
			"speed":            c.Speed,
			"drones":           c.Drones,
			"batteries":        c.Batteries,
			"weight":           weight,
			"max_time_per_sim": maxTime,
		},
	})
	sl.logColoredMessage(SeverityInfo, "Configuration", fmt.Sprintf("%s (budget %.0fs)", message, maxTime))
}

// LogTrial records the end of one trial
func (sl *SimulationLogger) LogTrial(index int, found bool, elapsed float64, dronesLost int) {
	outcome := "timed out"
	if found {
		outcome = "found objective"
	}
	message := fmt.Sprintf("Trial %d %s after %.1fs", index, outcome, elapsed)
	sl.logEvent(SimulationEvent{
		Type:     EventTypeTrial,
		Severity: SeverityDebug,
		Message:  message,
		Details: map[string]interface{}{
			"found":       found,
			"elapsed":     elapsed,
			"drones_lost": dronesLost,
		},
	})

	sl.mu.Lock()
	sl.incrementMetricLocked("trials", 1, "count")
	if found {
		sl.incrementMetricLocked("successful_trials", 1, "count")
	}
	sl.mu.Unlock()

	if sl.verbose {
		sl.logColoredMessage(SeverityDebug, "Trial", message)
	}
}

// LogGroup records the majority outcome of a group
func (sl *SimulationLogger) LogGroup(c search.Configuration, result search.GroupResult) {
	verdict := colorFail.Sprint("Fail")
	if result.Success() {
		verdict = colorSuccess.Sprint("Success")
	}
	sl.logEvent(SimulationEvent{
		Type:     EventTypeGroup,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("%d/%d trials succeeded", result.Successes, result.Trials),
		Details: map[string]interface{}{
			"speed":             c.Speed,
			"drones":            c.Drones,
			"batteries":         c.Batteries,
			"success":           result.Success(),
			"mean_time_to_find": result.MeanTimeToFind,
		},
	})

	sl.mu.Lock()
	sl.incrementMetricLocked("groups", 1, "count")
	sl.mu.Unlock()

	sl.logColoredMessage(SeverityInfo, "Group", fmt.Sprintf("%s | %d/%d trials | mean time to find %.1fs",
		verdict, result.Successes, result.Trials, result.MeanTimeToFind))
}

// LogFeasibilityPoint records a point added to the feasibility curve
func (sl *SimulationLogger) LogFeasibilityPoint(p search.FeasibilityPoint) {
	sl.logEvent(SimulationEvent{
		Type:     EventTypeFeasibility,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("%s config: %s", p.Kind, p),
		Details: map[string]interface{}{
			"kind":      string(p.Kind),
			"speed":     p.Speed,
			"drones":    p.Drones,
			"batteries": p.Batteries,
			"weight":    p.Weight,
		},
	})
	sl.logColoredMessage(SeverityInfo, "Feasibility", fmt.Sprintf("%s config %s", p.Kind, p))
}

// LogDroneLost records the loss of a drone during a trial
func (sl *SimulationLogger) LogDroneLost(droneID int, handle uuid.UUID) {
	message := fmt.Sprintf("Lost communication with drone %d", droneID)
	sl.logEvent(SimulationEvent{
		Type:     EventTypeDroneLost,
		Severity: SeverityWarning,
		EntityID: &handle,
		Message:  message,
		Details:  map[string]interface{}{"drone_id": droneID},
	})

	sl.mu.Lock()
	sl.incrementMetricLocked("drones_lost", 1, "count")
	sl.mu.Unlock()

	sl.logColoredMessage(SeverityWarning, "Drone Lost", message)
}

// Diagnostic records a non-fatal warning raised by the search
func (sl *SimulationLogger) Diagnostic(message string) {
	sl.logEvent(SimulationEvent{
		Type:     EventTypeDiagnostic,
		Severity: SeverityWarning,
		Message:  message,
	})
	sl.mu.Lock()
	sl.diagnostics = append(sl.diagnostics, message)
	sl.mu.Unlock()

	sl.logColoredMessage(SeverityWarning, "Diagnostic", message)
}

// LogError logs an error event
func (sl *SimulationLogger) LogError(message string, err error, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["error"] = err.Error()

	sl.logEvent(SimulationEvent{
		Type:     EventTypeSystem,
		Severity: SeverityError,
		Message:  message,
		Details:  details,
	})

	logger.Errorf("%s: %v", message, err)
}

// UpdateMetric sets a metric value
func (sl *SimulationLogger) UpdateMetric(name string, value float64, unit string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.setMetricLocked(name, value, unit)
}

func (sl *SimulationLogger) incrementMetricLocked(name string, delta float64, unit string) {
	sl.setMetricLocked(name, sl.metrics[name].Value+delta, unit)
}

func (sl *SimulationLogger) setMetricLocked(name string, value float64, unit string) {
	metric, exists := sl.metrics[name]
	if !exists {
		metric = Metric{Name: name, Unit: unit}
	}

	now := time.Now()
	metric.Value = value
	metric.LastUpdated = now
	metric.History = append(metric.History, MetricPoint{Timestamp: now, Value: value})
	if len(metric.History) > maxMetricHistory {
		metric.History = metric.History[len(metric.History)-maxMetricHistory:]
	}

	sl.metrics[name] = metric
}

// GetEvents returns all logged events
func (sl *SimulationLogger) GetEvents() []SimulationEvent {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	events := make([]SimulationEvent, len(sl.events))
	copy(events, sl.events)
	return events
}

// GetMetrics returns current metrics
func (sl *SimulationLogger) GetMetrics() map[string]Metric {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	metrics := make(map[string]Metric, len(sl.metrics))
	for k, v := range sl.metrics {
		metrics[k] = v
	}
	return metrics
}

// Diagnostics returns every diagnostic message in order
func (sl *SimulationLogger) Diagnostics() []string {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return append([]string(nil), sl.diagnostics...)
}

// SimulationSummary condenses a run's events and metrics
type SimulationSummary struct {
	RunID       string
	StartTime   time.Time
	Duration    time.Duration
	TotalEvents int
	EventCounts map[string]int
	Metrics     map[string]Metric
}

// GetSummary returns a simulation summary
func (sl *SimulationLogger) GetSummary() SimulationSummary {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	counts := make(map[string]int)
	for _, event := range sl.events {
		counts[event.Type]++
	}
	metrics := make(map[string]Metric, len(sl.metrics))
	for k, v := range sl.metrics {
		metrics[k] = v
	}

	return SimulationSummary{
		RunID:       sl.runID,
		StartTime:   sl.startTime,
		Duration:    time.Since(sl.startTime),
		TotalEvents: len(sl.events),
		EventCounts: counts,
		Metrics:     metrics,
	}
}

// PrintSummary prints event counts and metrics
func (sl *SimulationLogger) PrintSummary() {
	summary := sl.GetSummary()

	colorSuccess.Fprintf(sl.out, "\n===== SEARCH SUMMARY %s =====\n", shortID(summary.RunID))
	fmt.Fprintf(sl.out, "Duration: %v | Total Events: %d\n", summary.Duration.Round(time.Millisecond), summary.TotalEvents)

	types := make([]string, 0, len(summary.EventCounts))
	for t := range summary.EventCounts {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Fprintln(sl.out, "\nEvents:")
	for _, t := range types {
		fmt.Fprintf(sl.out, "   %-14s: %d\n", t, summary.EventCounts[t])
	}

	if len(summary.Metrics) > 0 {
		names := make([]string, 0, len(summary.Metrics))
		for n := range summary.Metrics {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Fprintln(sl.out, "\nMetrics:")
		for _, n := range names {
			m := summary.Metrics[n]
			fmt.Fprintf(sl.out, "   %-18s: %.2f %s\n", n, m.Value, m.Unit)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (sl *SimulationLogger) logEvent(event SimulationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.events = append(sl.events, event)
	if len(sl.events) > maxEvents {
		sl.events = sl.events[len(sl.events)-maxEvents:]
	}
}

func (sl *SimulationLogger) logColoredMessage(severity, eventType, message string) {
	var severityColor *color.Color
	switch severity {
	case SeverityDebug:
		severityColor = colorDebug
	case SeverityWarning:
		severityColor = colorWarning
	case SeverityError:
		severityColor = colorError
	default:
		severityColor = colorInfo
	}

	label := ""
	if sl.label != "" {
		label = colorLabel.Sprintf("[%s] ", sl.label)
	}

	fmt.Fprintf(sl.out, "[%s] %s%s %s | %s\n",
		time.Now().Format("15:04:05.000"),
		label,
		severityColor.Sprintf("%-8s", severity),
		eventType,
		message)
}
