package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
)

// syncBuffer is safe to share between the test and the animation goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerWritesMessageAndDetail(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var out syncBuffer
	s := NewSpinner()
	s.SetWriter(&out)

	s.Start("Creating job...")
	s.UpdateDetail("interview.wav")
	time.Sleep(250 * time.Millisecond)
	s.Success("Job created")

	got := out.String()
	if !strings.Contains(got, "Creating job...") {
		t.Errorf("output missing spinner message:\n%q", got)
	}
	if !strings.Contains(got, "interview.wav") {
		t.Errorf("output missing detail set via UpdateDetail:\n%q", got)
	}
	if !strings.Contains(got, "✓ Job created") {
		t.Errorf("output missing final success line:\n%q", got)
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var out syncBuffer
	s := NewSpinner()
	s.SetWriter(&out)

	// Stopping a spinner that never ran must not write or panic.
	s.Stop("never started")
	if got := out.String(); got != "" {
		t.Errorf("expected no output, got %q", got)
	}
}
