// Package imagesource turns image references (URLs or local files) into
// the base64 data URLs the model providers consume.
package imagesource

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher downloads images over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the image at url and returns it as a data URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	// Some image hosts reject requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}

	return DataURL(data, mediaTypeFromURL(url, resp.Header.Get("Content-Type"))), nil
}

// FromBytes wraps raw image bytes read from a local file into a data URL.
func FromBytes(data []byte, path string) string {
	return DataURL(data, mediaTypeFromURL(path, ""))
}

// DataURL encodes image bytes as a base64 data URL.
func DataURL(data []byte, mediaType string) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// mediaTypeFromURL derives the image media type from the URL's extension,
// falling back to the server-reported content type, then to JPEG.
func mediaTypeFromURL(url, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(stripQuery(url)), "."))
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	}
	if strings.HasPrefix(contentType, "image/") {
		return contentType
	}
	return "image/jpeg"
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
