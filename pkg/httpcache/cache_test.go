package httpcache

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "fail") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("echo:" + string(body)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, c *Client, url, body string) (string, *http.Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := c.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data), resp
}

func TestClientCachesPOST(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)

	cache, err := New("", time.Minute, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	client := NewClient(cache, srv.Client(), slog.Default())

	first, resp := post(t, client, srv.URL, `{"q":1}`)
	if resp.Header.Get("X-From-Cache") != "" {
		t.Error("first response should not come from cache")
	}
	second, resp := post(t, client, srv.URL, `{"q":1}`)
	if resp.Header.Get("X-From-Cache") != "true" {
		t.Error("second response should come from cache")
	}
	if first != second || first != `echo:{"q":1}` {
		t.Errorf("bodies = %q, %q", first, second)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}

	// A different body is a different key
	post(t, client, srv.URL, `{"q":2}`)
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestClientSkipsErrors(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)

	cache, err := New("", time.Minute, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	client := NewClient(cache, srv.Client(), slog.Default())

	for range 2 {
		_, resp := post(t, client, srv.URL, "fail")
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", resp.StatusCode)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2 (errors must not be cached)", got)
	}
}

func TestClientNilCache(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)
	client := NewClient(nil, srv.Client(), slog.Default())

	post(t, client, srv.URL, "x")
	post(t, client, srv.URL, "x")
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, err := New("", time.Minute, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cache.cache.Set(key("u", nil), Entry{Data: []byte("old"), ExpiresAt: time.Now().Add(-time.Second)})
	if _, found := cache.Get("u", nil); found {
		t.Error("Get() returned an expired entry")
	}
}

func TestCachePersistence(t *testing.T) {
	dir := t.TempDir()

	cache, err := New(dir, time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cache.Set("https://graphql.anilist.co", []byte("query"), []byte("response"))
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reloaded, err := New(dir, time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	data, found := reloaded.Get("https://graphql.anilist.co", []byte("query"))
	if !found || string(data) != "response" {
		t.Errorf("Get() after reload = %q, %v", data, found)
	}
	if _, found := reloaded.Get("https://graphql.anilist.co", []byte("other")); found {
		t.Error("Get() found an entry that was never stored")
	}
}
