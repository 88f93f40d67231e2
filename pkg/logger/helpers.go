package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconRocket  = "🚀"
	IconConfig  = "⚙️"
	IconTime    = "⏱️"
	IconFile    = "📄"
	IconRefresh = "🔄"
	IconDrone   = "🛸"
	IconTarget  = "🎯"
	IconDot     = "•"
	IconArrow   = "→"
)

var (
	sectionColor    = color.New(color.FgCyan, color.Bold)
	subSectionColor = color.New(color.FgHiBlack)
	keyColor        = color.New(color.FgCyan)
)

// Success logs a message prefixed with a check mark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a message prefixed with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

func printBlock(c *color.Color, title string, width int, fill string) {
	line := strings.Repeat(fill, width)
	w := writer()
	if colorEnabled() {
		_, _ = c.Fprintln(w, line)
		_, _ = c.Fprintln(w, title)
		_, _ = c.Fprintln(w, line)
		return
	}
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, line)
}

// LogSection prints a title between two heavy rules
func LogSection(title string) {
	printBlock(sectionColor, title, 50, "=")
}

// LogSubSection prints a title between two light rules
func LogSubSection(title string) {
	printBlock(subSectionColor, title, 40, "-")
}

// LogList logs a title followed by one bullet per item
func LogList(title string, items []string) {
	Info(title)
	w := writer()
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", IconDot, item)
	}
}

// LogKeyValue prints an aligned key: value line
func LogKeyValue(key string, value interface{}) {
	w := writer()
	if colorEnabled() {
		fmt.Fprintf(w, "%s %v\n", keyColor.Sprint(key+":"), value)
		return
	}
	fmt.Fprintf(w, "%s: %v\n", key, value)
}

// Table collects rows and prints them with padded columns
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Rows returns the number of data rows
func (t *Table) Rows() int { return len(t.rows) }

// String renders the table, headers first
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
		}
		b.WriteString("\n")
	}

	writeRow(t.headers)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeRow(rule)
	for _, row := range t.rows {
		writeRow(row)
	}
	return b.String()
}

// Print writes the table to the logger output
func (t *Table) Print() {
	fmt.Fprint(writer(), t.String())
}
