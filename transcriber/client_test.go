package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadRecording(t *testing.T) {
	payload := []byte("Alice: Hello world\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient("ws://unused/ws", srv.URL+"/download/")
	got, err := c.DownloadRecording(context.Background())
	if err != nil {
		t.Fatalf("DownloadRecording: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestDownloadRecordingHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nothing recorded", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("ws://unused/ws", srv.URL+"/download/")
	if _, err := c.DownloadRecording(context.Background()); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestSaveRecording(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveRecording(dir, []byte("transcript"))
	if err != nil {
		t.Fatalf("SaveRecording: %v", err)
	}
	if filepath.Base(path) != RecordingFileName {
		t.Errorf("path = %q, want basename %q", path, RecordingFileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "transcript" {
		t.Errorf("file contents = %q", data)
	}
}
