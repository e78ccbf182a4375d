package imagesource

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("pngbytes"))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	got, err := f.Fetch(context.Background(), srv.URL+"/photo")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pngbytes"))
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if gotUA != "Mozilla/5.0" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.jpg"); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestFromBytes(t *testing.T) {
	got := FromBytes([]byte{0xFF, 0xD8}, "/tmp/machine.JPG")
	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Errorf("got %q", got)
	}
}

func TestMediaTypeFromURL(t *testing.T) {
	tests := []struct {
		url         string
		contentType string
		want        string
	}{
		{"https://x/photo.jpg", "", "image/jpeg"},
		{"https://x/photo.PNG?w=800", "", "image/png"},
		{"https://x/photo.webp", "text/html", "image/webp"},
		{"https://x/photo", "image/gif", "image/gif"},
		{"https://x/photo", "text/html", "image/jpeg"},
		{"https://x/photo", "", "image/jpeg"},
	}
	for _, tt := range tests {
		if got := mediaTypeFromURL(tt.url, tt.contentType); got != tt.want {
			t.Errorf("mediaTypeFromURL(%q, %q) = %q, want %q", tt.url, tt.contentType, got, tt.want)
		}
	}
}
