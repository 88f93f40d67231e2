package logger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	spinnerColor  = color.New(color.FgCyan)
	progressColor = color.New(color.FgGreen)
)

// SpinnerDots is the default spinner animation
var SpinnerDots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message while a long operation runs.
// Nothing is drawn when the output is not a terminal.
type Spinner struct {
	mu       sync.Mutex
	active   bool
	message  string
	frames   []string
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

func NewSpinner(message string) *Spinner {
	return &Spinner{
		message:  message,
		frames:   SpinnerDots,
		interval: 100 * time.Millisecond,
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active || !IsTerminal(writer()) {
		return
	}
	s.active = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.spin(s.stopChan, s.done)
}

func (s *Spinner) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	w := writer()
	for i := 0; ; i++ {
		s.mu.Lock()
		message := s.message
		s.mu.Unlock()

		frame := s.frames[i%len(s.frames)]
		if colorEnabled() {
			frame = spinnerColor.Sprint(frame)
		}
		fmt.Fprintf(w, "\r%s %s", frame, message)

		select {
		case <-stop:
			fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", len(message)+4))
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the animation and clears its line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Spinner) Success(message string) {
	s.Stop()
	Success(message)
}

func (s *Spinner) Error(message string) {
	s.Stop()
	Error(message)
}

func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// WithSpinner runs fn while a spinner shows message
func WithSpinner(message string, fn func() error) error {
	spinner := NewSpinner(message)
	spinner.Start()

	err := fn()
	if err != nil {
		spinner.Error(fmt.Sprintf("%s failed: %v", message, err))
	} else {
		spinner.Success(fmt.Sprintf("%s completed", message))
	}
	return err
}

// ProgressBar draws a single-line bar. On a non-terminal output it logs
// a line every tenth of the way instead of redrawing.
type ProgressBar struct {
	total       int
	current     int
	width       int
	message     string
	interactive bool
	lastDecile  int
}

func NewProgressBar(total int, message string) *ProgressBar {
	if total < 1 {
		total = 1
	}
	return &ProgressBar{
		total:       total,
		width:       40,
		message:     message,
		interactive: IsTerminal(writer()),
		lastDecile:  -1,
	}
}

func (p *ProgressBar) Update(current int) {
	p.current = current
	p.draw()
}

func (p *ProgressBar) Increment() {
	p.current++
	p.draw()
}

func (p *ProgressBar) Finish() {
	p.current = p.total
	p.draw()
	if p.interactive {
		fmt.Fprintln(writer())
	}
}

func (p *ProgressBar) percent() float64 {
	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

func (p *ProgressBar) draw() {
	percent := p.percent()

	if !p.interactive {
		decile := int(percent * 10)
		if decile != p.lastDecile {
			p.lastDecile = decile
			Infof("%s: %3.0f%%", p.message, percent*100)
		}
		return
	}

	filled := int(percent * float64(p.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	if colorEnabled() {
		bar = progressColor.Sprint(bar)
	}
	fmt.Fprintf(writer(), "\r%s: %s %3.0f%%", p.message, bar, percent*100)
}
