package transcriber

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"nhooyr.io/websocket"
)

// RecordingFileName is where a downloaded artifact lands.
const RecordingFileName = "recording.txt"

type Client struct {
	wsURL       string
	downloadURL string
	http        *http.Client
}

func NewClient(wsURL, downloadURL string) *Client {
	return &Client{
		wsURL:       wsURL,
		downloadURL: downloadURL,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

// NewSession opens one streaming session. The dial happens in the
// background; a connection failure surfaces through dropped chunks and the
// error returned by Close.
func (c *Client) NewSession(ctx context.Context) Session {
	return newStreamSession(func() (rawStream, error) {
		conn, _, err := websocket.Dial(ctx, c.wsURL, nil)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", c.wsURL, err)
		}
		return &wsStream{conn: conn, ctx: ctx}, nil
	})
}

// wsStream adapts a websocket connection to the rawStream the session
// loop drives.
type wsStream struct {
	conn *websocket.Conn
	ctx  context.Context
}

func (w *wsStream) Send(chunk []byte) error {
	return w.conn.Write(w.ctx, websocket.MessageBinary, chunk)
}

func (w *wsStream) Recv() (string, error) {
	_, data, err := w.conn.Read(w.ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (w *wsStream) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}

// DownloadRecording fetches the last recorded artifact from the backend.
func (c *Client) DownloadRecording(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.downloadURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// SaveRecording writes a downloaded artifact into dir and returns its path.
func SaveRecording(dir string, data []byte) (string, error) {
	path := filepath.Join(dir, RecordingFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("saving recording: %w", err)
	}
	return path, nil
}
