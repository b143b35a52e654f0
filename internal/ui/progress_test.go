package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTransferModelCountsResults(t *testing.T) {
	m := NewTransferModel("Submitting files", 2)

	next, _ := m.Update(TransferResultMsg{Name: "interview.wav"})
	m = next.(TransferModel)
	if m.done != 1 || m.failed != 0 {
		t.Fatalf("expected 1 done, got done=%d failed=%d", m.done, m.failed)
	}

	next, cmd := m.Update(TransferResultMsg{Name: "call-01.mp3", Err: errors.New("upload rejected")})
	m = next.(TransferModel)
	if m.done != 2 || m.failed != 1 {
		t.Fatalf("expected 2 done 1 failed, got done=%d failed=%d", m.done, m.failed)
	}
	if cmd == nil {
		t.Fatal("expected quit command once the batch completes")
	}
}

func TestTransferModelView(t *testing.T) {
	m := NewTransferModel("Downloading results", 4)
	next, _ := m.Update(TransferResultMsg{Name: "interview.wav"})
	m = next.(TransferModel)

	view := m.View()
	if !strings.Contains(view, "Downloading results") {
		t.Errorf("view missing title:\n%s", view)
	}
	if !strings.Contains(view, "1/4") {
		t.Errorf("view missing counter:\n%s", view)
	}
	if !strings.Contains(view, "interview.wav") {
		t.Errorf("view missing completed file:\n%s", view)
	}
}

func TestTransferModelTruncatesLongNames(t *testing.T) {
	m := NewTransferModel("Submitting files", 2)
	longName := strings.Repeat("verylongsegment-", 8) + ".wav"
	next, _ := m.Update(TransferResultMsg{Name: longName})
	m = next.(TransferModel)

	if strings.Contains(m.View(), longName) {
		t.Error("expected long file name to be truncated in view")
	}
}

func TestTransferModelCtrlC(t *testing.T) {
	m := NewTransferModel("Submitting files", 10)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command on ctrl+c")
	}
	// Callers read this off the final model to cancel the workers.
	if !next.(TransferModel).Canceled() {
		t.Error("expected model to report cancellation after ctrl+c")
	}
}

func TestTransferModelCompletionIsNotCancellation(t *testing.T) {
	m := NewTransferModel("Submitting files", 1)
	next, cmd := m.Update(TransferResultMsg{Name: "interview.wav"})
	if cmd == nil {
		t.Fatal("expected quit command once the batch completes")
	}
	if next.(TransferModel).Canceled() {
		t.Error("completed batch must not report cancellation")
	}
}
