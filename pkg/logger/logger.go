package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Level represents the severity of a log message
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

var levelColors = map[Level]*color.Color{
	DebugLevel: color.New(color.FgHiBlack),
	InfoLevel:  color.New(color.FgGreen),
	WarnLevel:  color.New(color.FgYellow),
	ErrorLevel: color.New(color.FgRed),
	FatalLevel: color.New(color.FgRed, color.Bold),
}

var (
	timeColor   = color.New(color.FgHiBlack)
	prefixColor = color.New(color.FgCyan)
	fieldColor  = color.New(color.FgHiBlack)
)

// Logger is the main logger interface
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithPrefix(prefix string) Logger
}

// output is shared by a logger and every child derived from it
type output struct {
	mu       sync.Mutex
	level    Level
	writer   io.Writer
	noColor  bool
	showTime bool
}

type logger struct {
	out    *output
	fields map[string]interface{}
	prefix string
}

// Config holds logger configuration
type Config struct {
	Level    Level
	Writer   io.Writer
	NoColor  bool
	ShowTime bool
}

var defaultLogger = New()

// New creates a logger writing to stdout. Color is disabled when stdout is not a terminal.
func New() Logger {
	return NewWithConfig(Config{
		Level:    InfoLevel,
		Writer:   os.Stdout,
		NoColor:  !IsTerminal(os.Stdout),
		ShowTime: true,
	})
}

// NewWithConfig creates a new logger with custom configuration
func NewWithConfig(cfg Config) Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	return &logger{
		out: &output{
			level:    cfg.Level,
			writer:   cfg.Writer,
			noColor:  cfg.NoColor,
			showTime: cfg.ShowTime,
		},
		fields: map[string]interface{}{},
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Default returns the package-level logger
func Default() Logger { return defaultLogger }

// SetDefault replaces the package-level logger
func SetDefault(l Logger) { defaultLogger = l }

// SetLevel sets the global log level
func SetLevel(level Level) {
	if l, ok := defaultLogger.(*logger); ok {
		l.out.mu.Lock()
		l.out.level = level
		l.out.mu.Unlock()
	}
}

// SetNoColor disables color output
func SetNoColor(noColor bool) {
	if l, ok := defaultLogger.(*logger); ok {
		l.out.mu.Lock()
		l.out.noColor = noColor
		l.out.mu.Unlock()
	}
}

// SetOutput redirects the global logger
func SetOutput(w io.Writer) {
	if l, ok := defaultLogger.(*logger); ok {
		l.out.mu.Lock()
		l.out.writer = w
		l.out.mu.Unlock()
	}
}

func colorEnabled() bool {
	l, ok := defaultLogger.(*logger)
	if !ok {
		return false
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return !l.out.noColor
}

func writer() io.Writer {
	if l, ok := defaultLogger.(*logger); ok {
		l.out.mu.Lock()
		defer l.out.mu.Unlock()
		return l.out.writer
	}
	return os.Stdout
}

func Debug(args ...interface{})                       { defaultLogger.Debug(args...) }
func Debugf(format string, args ...interface{})       { defaultLogger.Debugf(format, args...) }
func Info(args ...interface{})                        { defaultLogger.Info(args...) }
func Infof(format string, args ...interface{})        { defaultLogger.Infof(format, args...) }
func Warn(args ...interface{})                        { defaultLogger.Warn(args...) }
func Warnf(format string, args ...interface{})        { defaultLogger.Warnf(format, args...) }
func Error(args ...interface{})                       { defaultLogger.Error(args...) }
func Errorf(format string, args ...interface{})       { defaultLogger.Errorf(format, args...) }
func Fatal(args ...interface{})                       { defaultLogger.Fatal(args...) }
func Fatalf(format string, args ...interface{})       { defaultLogger.Fatalf(format, args...) }
func WithField(key string, value interface{}) Logger  { return defaultLogger.WithField(key, value) }
func WithFields(fields map[string]interface{}) Logger { return defaultLogger.WithFields(fields) }
func WithPrefix(prefix string) Logger                 { return defaultLogger.WithPrefix(prefix) }

func (l *logger) paint(c *color.Color, s string) string {
	if l.out.noColor {
		return s
	}
	return c.Sprint(s)
}

func (l *logger) log(level Level, message string) {
	l.out.mu.Lock()
	if level < l.out.level {
		l.out.mu.Unlock()
		return
	}

	parts := make([]string, 0, 5)
	if l.out.showTime {
		parts = append(parts, l.paint(timeColor, time.Now().Format("15:04:05")))
	}
	parts = append(parts, l.paint(levelColors[level], fmt.Sprintf("%-5s", level)))
	if l.prefix != "" {
		parts = append(parts, l.paint(prefixColor, "["+l.prefix+"]"))
	}
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, l.fields[k])
		}
		parts = append(parts, l.paint(fieldColor, strings.Join(pairs, " ")))
	}
	parts = append(parts, message)

	_, _ = fmt.Fprintln(l.out.writer, strings.Join(parts, " "))
	l.out.mu.Unlock()

	if level == FatalLevel {
		os.Exit(1)
	}
}

func (l *logger) Debug(args ...interface{}) { l.log(DebugLevel, fmt.Sprint(args...)) }
func (l *logger) Info(args ...interface{})  { l.log(InfoLevel, fmt.Sprint(args...)) }
func (l *logger) Warn(args ...interface{})  { l.log(WarnLevel, fmt.Sprint(args...)) }
func (l *logger) Error(args ...interface{}) { l.log(ErrorLevel, fmt.Sprint(args...)) }
func (l *logger) Fatal(args ...interface{}) { l.log(FatalLevel, fmt.Sprint(args...)) }

func (l *logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	l.log(FatalLevel, fmt.Sprintf(format, args...))
}

// derive copies the logger so children never mutate their parent
func (l *logger) derive() *logger {
	child := &logger{
		out:    l.out,
		fields: make(map[string]interface{}, len(l.fields)),
		prefix: l.prefix,
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	return child
}

func (l *logger) WithField(key string, value interface{}) Logger {
	child := l.derive()
	child.fields[key] = value
	return child
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	child := l.derive()
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

func (l *logger) WithPrefix(prefix string) Logger {
	child := l.derive()
	child.prefix = prefix
	return child
}

// ParseLevel parses a string log level, defaulting to info
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}
