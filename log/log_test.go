package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("LIVECAP_LOG_PATH", "/tmp/livecap-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/livecap-env-log" {
		t.Errorf("got %q, want /tmp/livecap-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("LIVECAP_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("default dir should not be empty")
	}
	if !strings.Contains(got, "livecap") {
		t.Errorf("default dir %q should contain 'livecap'", got)
	}
}

func TestInitAndEntryLine(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Info("diag_event")
	EntryLine("Alice", "Hello world")
	Close()

	diag, err := os.ReadFile(filepath.Join(tmp, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(diag), "diag_event") {
		t.Error("diagnostic line missing")
	}

	tr, err := os.ReadFile(filepath.Join(tmp, "transcript_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(tr), "Alice") || !strings.Contains(string(tr), "Hello world") {
		t.Errorf("transcript line missing: %q", tr)
	}
}

func TestLoggingBeforeInitIsNoop(t *testing.T) {
	setupLogDir(t)
	// Must not panic without Init.
	Info("x")
	Warnf("y %d", 1)
	EntryLine("A", "b")
	SessionEnd(0)
}
