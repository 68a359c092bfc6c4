package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress of an operation of unknown length
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	noColor  bool

	mu      sync.Mutex
	message string
	done    chan struct{}
	stopped sync.WaitGroup
}

// NewSpinner creates a spinner; interval defaults to 100ms
func NewSpinner(w io.Writer, message string, interval time.Duration, noColor bool) *Spinner {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Spinner{writer: w, message: message, interval: interval, noColor: noColor}
}

// Start begins the animation; starting a running spinner does nothing
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.stopped.Add(1)
	go s.animate(s.done)
}

// Stop ends the animation and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	s.stopped.Wait()
	fmt.Fprint(s.writer, "\r\033[K")
}

// Success stops the spinner and prints a success line
func (s *Spinner) Success(message string) {
	s.Stop()
	WriteSuccess(s.writer, message, s.noColor)
}

// Fail stops the spinner and prints a failure line
func (s *Spinner) Fail(message string) {
	s.Stop()
	red := color.New(color.FgRed, color.Bold)
	if s.noColor {
		red.DisableColor()
	}
	red.Fprintf(s.writer, "✗ %s\n", message)
}

// SetMessage changes the text shown next to the spinner
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) animate(done <-chan struct{}) {
	defer s.stopped.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := color.New(color.FgCyan)
	if s.noColor {
		cyan.DisableColor()
	}

	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			cyan.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], msg)
		}
	}
}

// WithSpinner runs fn behind a spinner and reports its outcome
func WithSpinner(w io.Writer, message string, noColor bool, fn func() error) error {
	s := NewSpinner(w, message, 0, noColor)
	s.Start()

	if err := fn(); err != nil {
		s.Fail(message + " failed")
		return err
	}
	s.Success(message)
	return nil
}
