package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/picogrid/drone-search-sim/pkg/logger"
)

// ResultSink receives the final result lines of a search
type ResultSink interface {
	WriteResults(lines []string) error
}

// FileSink writes result lines to a text file, one per line
type FileSink struct {
	Path string
}

// NewFileSink creates a sink for path
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

// WriteResults replaces the file content with lines
func (s *FileSink) WriteResults(lines []string) error {
	if s.Path == "" {
		return fmt.Errorf("results path is empty")
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(s.Path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// WriterSink writes result lines to any writer
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) WriteResults(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(s.W, line); err != nil {
			return err
		}
	}
	return nil
}

// EmitResults hands lines to every sink. A failing sink is logged and skipped.
// It returns the number of sinks that accepted the lines.
func EmitResults(lines []string, sinks ...ResultSink) int {
	written := 0
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if err := sink.WriteResults(lines); err != nil {
			logger.Errorf("Failed to emit results: %v", err)
			continue
		}
		written++
	}
	return written
}
