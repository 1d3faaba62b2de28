package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL = "http://localhost:8000"
	wsPath        = "/ws"
	downloadPath  = "/download/"
)

// Config holds the two externally supplied endpoints: the HTTP base URL for
// artifact downloads and the websocket URL for live audio.
type Config struct {
	APIURL string // no trailing slash
	WSURL  string // ws://<host>/ws
}

// Load resolves configuration from the environment. A .env file in the
// working directory is applied first; variables already set in the real
// environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	apiURL := os.Getenv("LIVECAP_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return Config{}, fmt.Errorf("parsing LIVECAP_API_URL %q: %w", apiURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("LIVECAP_API_URL %q must include scheme and host", apiURL)
	}

	host := os.Getenv("LIVECAP_WS_HOST")
	if host == "" {
		host = u.Host
	}

	return Config{
		APIURL: strings.TrimRight(u.String(), "/"),
		WSURL:  "ws://" + host + wsPath,
	}, nil
}

// DownloadURL is the endpoint serving the last recorded artifact.
func (c Config) DownloadURL() string {
	return c.APIURL + downloadPath
}
