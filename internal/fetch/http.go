package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	appLog "github.com/espinosaluis/estepona-agenda-calendar/internal/log"
)

const userAgent = "agendacal/1.0 (github.com/espinosaluis/estepona-agenda-calendar)"

// cacheEntry holds HTTP cache metadata for a single URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HTTPFetcher retrieves a page with a plain conditional GET
// (ETag / Last-Modified) backed by a disk cache. Useful when the agenda
// host serves the listing server-side, or on machines without Chromium.
type HTTPFetcher struct {
	client   *http.Client
	cacheDir string
}

// NewHTTPFetcher creates an HTTPFetcher storing per-URL cache entries
// under cacheDir.
func NewHTTPFetcher(cacheDir string, timeout time.Duration) *HTTPFetcher {
	if cacheDir == "" {
		cacheDir = "./var/page-cache"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
	}
}

// Fetch performs a conditional GET for url. On a network error or non-OK
// status it falls back to the cached body when one exists; with a cold
// cache the error is returned.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", errors.New("fetch: URL is required")
	}

	cachePath := f.cachePathForURL(url)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return "", err
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.html"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("page fetch network error, using cached body", err, "url", url)
			return string(cachedBody), nil
		}
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", readErr
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			appLog.Error("page cache save failed", err, "url", url)
		}

		return string(body), nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return "", errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("page not modified; using cache", "url", url)
		return string(cachedBody), nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("page fetch non-OK, using cached body", errors.New(resp.Status), "url", url, "status", resp.StatusCode)
			return string(cachedBody), nil
		}
		return "", errors.New(resp.Status)
	}
}

func (f *HTTPFetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *HTTPFetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *HTTPFetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.html"), body, 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
