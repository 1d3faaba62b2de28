package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"livecap/transcript"
)

func apply(t *testing.T, m tuiModel, msg tea.Msg) tuiModel {
	t.Helper()
	nm, _ := m.Update(msg)
	return nm.(tuiModel)
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func drain(ch chan struct{}) int {
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}

func TestStartIsIdempotent(t *testing.T) {
	drain(startRequestChan)
	m := tuiModel{width: 80, height: 24}

	m = apply(t, m, key('r'))
	if !m.busy {
		t.Fatal("expected busy after start request")
	}
	// Second press while the request is in flight must not queue another.
	m = apply(t, m, key('r'))
	if n := drain(startRequestChan); n != 1 {
		t.Fatalf("start requests = %d, want 1", n)
	}

	m = apply(t, m, RecordingStartMsg{})
	if m.state != tuiStateRecording || m.busy {
		t.Fatalf("state = %v busy = %v after RecordingStartMsg", m.state, m.busy)
	}
	// Start while recording is a no-op.
	m = apply(t, m, key('r'))
	if n := drain(startRequestChan); n != 0 {
		t.Fatalf("start requests while recording = %d, want 0", n)
	}
}

func TestStopClearsPreviewAndEnablesDownload(t *testing.T) {
	drain(downloadRequestChan)
	m := tuiModel{width: 80, height: 24, state: tuiStateRecording}
	m = apply(t, m, PreviewMsg{Text: "Hello wor", Speaker: "Alice"})
	if m.preview != "Hello wor" {
		t.Fatalf("preview = %q", m.preview)
	}

	// Download is unavailable while recording.
	m = apply(t, m, key('d'))
	if n := drain(downloadRequestChan); n != 0 {
		t.Fatalf("download requests while recording = %d, want 0", n)
	}

	m = apply(t, m, RecordingStopMsg{Completed: true})
	if m.state != tuiStateIdle || !m.everStarted {
		t.Fatalf("state = %v everStarted = %v after stop", m.state, m.everStarted)
	}
	if m.preview != "" {
		t.Fatalf("preview = %q, want cleared after stop", m.preview)
	}

	m = apply(t, m, key('d'))
	if n := drain(downloadRequestChan); n != 1 {
		t.Fatalf("download requests after stop = %d, want 1", n)
	}
}

func TestFailedStartDoesNotEnableDownload(t *testing.T) {
	drain(downloadRequestChan)
	m := tuiModel{width: 80, height: 24, state: tuiStateRecording}

	// The capture device failed before any audio flowed.
	m = apply(t, m, RecordingStopMsg{Completed: false})
	if m.everStarted {
		t.Fatal("failed start must not count as a session")
	}
	m = apply(t, m, key('d'))
	if n := drain(downloadRequestChan); n != 0 {
		t.Fatalf("download requests after failed start = %d, want 0", n)
	}

	// A later successful recording still enables it.
	m = apply(t, m, RecordingStartMsg{})
	m = apply(t, m, RecordingStopMsg{Completed: true})
	if !m.everStarted {
		t.Fatal("completed recording must enable download")
	}
}

func TestDownloadRequiresPriorRecording(t *testing.T) {
	drain(downloadRequestChan)
	m := tuiModel{width: 80, height: 24}
	m = apply(t, m, key('d'))
	if n := drain(downloadRequestChan); n != 0 {
		t.Fatalf("download requests before first recording = %d, want 0", n)
	}
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	stopMu.Lock()
	stopChan = nil
	stopMu.Unlock()

	m := tuiModel{width: 80, height: 24}
	m = apply(t, m, key('s'))
	if m.busy {
		t.Fatal("stop while idle must not mark busy")
	}
}

func TestEntriesAccumulate(t *testing.T) {
	m := tuiModel{width: 80, height: 24}
	m = apply(t, m, EntryMsg{Entry: transcript.Entry{Time: "00:01", Text: "one", Speaker: "A"}})
	m = apply(t, m, EntryMsg{Entry: transcript.Entry{Time: "00:02", Text: "two", Speaker: "B"}})
	if len(m.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(m.entries))
	}
	last, ok := lastEntry(m.entries)
	if !ok || last.Text != "two" {
		t.Fatalf("last entry = %+v", last)
	}
}

func TestViewRendersEntriesAndPreview(t *testing.T) {
	m := tuiModel{width: 80, height: 24}
	m = apply(t, m, EntryMsg{Entry: transcript.Entry{Time: "00:01", Text: "Hello world", Speaker: "Alice"}})
	m = apply(t, m, PreviewMsg{Text: "and now", Speaker: "Bob"})

	view := m.View()
	for _, want := range []string{"Hello world", "Alice", "and now", "Bob"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps", 10)
	if len(lines) < 3 {
		t.Fatalf("lines = %v", lines)
	}
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
}
