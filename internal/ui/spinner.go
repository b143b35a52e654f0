package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animated status line for a single long-running
// operation, like creating a job or waiting for the first poll.
type Spinner struct {
	mu        sync.Mutex
	message   string
	detail    string
	running   bool
	done      chan struct{}
	writer    io.Writer
	startTime time.Time
}

// NewSpinner creates a spinner writing to stdout.
func NewSpinner() *Spinner {
	return &Spinner{writer: os.Stdout}
}

// SetWriter sets the output writer.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the spinner animation with a message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.message = message
	s.detail = ""
	s.running = true
	s.done = make(chan struct{})
	s.startTime = time.Now()
	s.mu.Unlock()

	go s.animate()
}

// UpdateDetail sets additional detail text shown after the message.
func (s *Spinner) UpdateDetail(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = detail
}

// Stop stops the spinner and optionally prints a final message.
func (s *Spinner) Stop(finalMessage string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.clearLine()
	if finalMessage != "" {
		fmt.Fprintln(s.writer, finalMessage)
	}
}

// Success stops with a green checkmark.
func (s *Spinner) Success(message string) {
	s.Stop(color.GreenString("✓") + " " + message)
}

// Fail stops with a red X.
func (s *Spinner) Fail(message string) {
	s.Stop(color.RedString("✗") + " " + message)
}

func (s *Spinner) animate() {
	frameIndex := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := spinnerFrames[frameIndex%len(spinnerFrames)]
			message := s.message
			detail := s.detail
			elapsed := time.Since(s.startTime)
			s.mu.Unlock()

			s.clearLine()
			var detailStr string
			if detail != "" {
				detailStr = color.HiBlackString(" %s", detail)
			}
			var timeStr string
			if elapsed > time.Second {
				timeStr = color.HiBlackString(" (%ds)", int(elapsed.Seconds()))
			}
			fmt.Fprintf(s.writer, "%s %s%s%s", color.CyanString(frame), message, detailStr, timeStr)
			frameIndex++
		}
	}
}

func (s *Spinner) clearLine() {
	fmt.Fprint(s.writer, "\r\033[K")
}
