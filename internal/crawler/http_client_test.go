package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "Test-Crawler/1.0" {
			t.Errorf("Expected User-Agent 'Test-Crawler/1.0', got '%s'", ua)
		}
		if accept := r.Header.Get("Accept"); !strings.HasPrefix(accept, "text/html") {
			t.Errorf("Expected Accept to prefer text/html, got '%s'", accept)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		// Add delay to test TTFB
		time.Sleep(50 * time.Millisecond)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>Test Page</body></html>"))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 30*time.Second, 0)
	defer client.Close()

	resp, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch URL: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}
	if resp.ContentType != "text/html; charset=utf-8" {
		t.Errorf("Expected content type 'text/html; charset=utf-8', got '%s'", resp.ContentType)
	}
	if resp.Metrics.TTFB < 50*time.Millisecond {
		t.Errorf("TTFB should be at least 50ms, got %v", resp.Metrics.TTFB)
	}
	if resp.Metrics.DownloadTime < resp.Metrics.TTFB {
		t.Errorf("Download time should be greater than TTFB")
	}
	if string(resp.Body) != "<html><body>Test Page</body></html>" {
		t.Errorf("Unexpected body '%s'", string(resp.Body))
	}
	if resp.Truncated {
		t.Errorf("Body should not be truncated")
	}
}

func TestHTTPClientRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/final" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Final page"))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 30*time.Second, 0)
	defer client.Close()

	resp, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch URL: %v", err)
	}
	if resp.FinalURL != server.URL+"/final" {
		t.Errorf("Expected final URL '%s', got '%s'", server.URL+"/final", resp.FinalURL)
	}
}

func TestHTTPClientStatusError(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte("<html><body>error page</body></html>"))
			}))
			defer server.Close()

			client := NewHTTPClient("Test-Crawler/1.0", 30*time.Second, 0)
			defer client.Close()

			_, err := client.Fetch(context.Background(), server.URL)
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("Expected *StatusError, got %v", err)
			}
			if statusErr.StatusCode != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, statusErr.StatusCode)
			}
			if !IsStatus(err, tt.code) {
				t.Errorf("IsStatus(%d) should be true", tt.code)
			}
		})
	}
}

func TestHTTPClientCharsetDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body>Caf\xe9</body></html>"))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 30*time.Second, 0)
	defer client.Close()

	resp, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch URL: %v", err)
	}
	if !strings.Contains(string(resp.Body), "Café") {
		t.Errorf("Expected body decoded to UTF-8, got %q", string(resp.Body))
	}
}

func TestHTTPClientBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("0123456789ABCDEF"))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 30*time.Second, 10)
	defer client.Close()

	resp, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to fetch URL: %v", err)
	}
	if string(resp.Body) != "0123456789" {
		t.Errorf("Expected body cut at 10 bytes, got %q", string(resp.Body))
	}
	if !resp.Truncated {
		t.Errorf("Expected Truncated to be set")
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 500*time.Millisecond, 0)
	defer client.Close()

	if _, err := client.Fetch(context.Background(), server.URL); err == nil {
		t.Errorf("Expected timeout error, got nil")
	}
}

func TestHTTPClientErrorCases(t *testing.T) {
	client := NewHTTPClient("Test-Crawler/1.0", 5*time.Second, 0)
	defer client.Close()

	ctx := context.Background()

	if _, err := client.Fetch(ctx, "invalid-url"); err == nil {
		t.Errorf("Expected error for invalid URL, got nil")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := client.Fetch(cancelledCtx, server.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
