// Package httpcache caches GraphQL POST responses in memory, optionally
// persisting them to disk between runs.
package httpcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

const cacheFile = "anifeed-cache.gob"

// Entry is a cached response body.
type Entry struct {
	ExpiresAt time.Time
	Data      []byte
}

// Cache is an otter-backed response cache. A zero dir keeps it in memory only.
type Cache struct {
	cache  *otter.Cache[string, Entry]
	logger *slog.Logger
	dir    string
	ttl    time.Duration
	mu     sync.Mutex
}

// New creates a cache. When dir is non-empty, entries saved by a previous
// run are loaded from it and Close writes them back.
func New(dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	c := &Cache{
		cache: otter.Must(&otter.Options[string, Entry]{
			MaximumSize:      1_000,
			ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
		}),
		dir:    dir,
		ttl:    ttl,
		logger: logger,
	}

	if dir != "" {
		if err := c.loadFromDisk(); err != nil {
			logger.Warn("failed to load cache from disk", "error", err)
		}
	}
	logger.Debug("cache initialized", "dir", dir, "ttl", ttl, "entries_loaded", c.cache.EstimatedSize())

	return c, nil
}

func key(url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached response for a request to url with the given body.
func (c *Cache) Get(url string, body []byte) ([]byte, bool) {
	k := key(url, body)
	entry, found := c.cache.GetIfPresent(k)
	if !found {
		c.logger.Debug("cache miss", "url", url)
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.logger.Debug("cache miss", "url", url, "reason", "expired", "expired_at", entry.ExpiresAt)
		c.cache.Invalidate(k)
		return nil, false
	}
	c.logger.Debug("cache hit", "url", url)
	return entry.Data, true
}

// Set stores a response for a request to url with the given body.
func (c *Cache) Set(url string, body, data []byte) {
	entry := Entry{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
	}
	c.cache.Set(key(url, body), entry)
	c.logger.Debug("cache set", "url", url, "expires_at", entry.ExpiresAt, "size", len(data))
}

// Len returns the approximate number of cached entries.
func (c *Cache) Len() int {
	return c.cache.EstimatedSize()
}

func (c *Cache) loadFromDisk() error {
	path := filepath.Join(c.dir, cacheFile)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Debug("no existing cache file found", "path", path)
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("failed to close cache file", "error", closeErr)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache file: %w", err)
	}

	now := time.Now()
	valid := 0
	for k, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(k, entry)
			valid++
		}
	}

	c.logger.Debug("loaded cache from disk",
		"path", path,
		"total_entries", len(entries),
		"valid_entries", valid)
	return nil
}

func (c *Cache) saveToDisk() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, cacheFile)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("failed to remove temp file", "error", removeErr)
		}
	}()

	entries := make(map[string]Entry)
	now := time.Now()
	for k, entry := range c.cache.All() {
		if now.Before(entry.ExpiresAt) {
			entries[k] = entry
		}
	}

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		_ = file.Close()
		return fmt.Errorf("encoding cache to file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.logger.Debug("cache saved to disk", "entries", len(entries), "path", path)
	return nil
}

// Close persists the cache when it is disk-backed.
func (c *Cache) Close() error {
	if c.dir == "" {
		return nil
	}
	return c.saveToDisk()
}

// HTTPClient is the subset of *http.Client used by Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps an HTTPClient, answering repeated POST requests from the cache.
type Client struct {
	cache      *Cache
	httpClient HTTPClient
	logger     *slog.Logger
}

// NewClient returns a caching client. A nil cache disables caching.
func NewClient(cache *Cache, httpClient HTTPClient, logger *slog.Logger) *Client {
	return &Client{
		cache:      cache,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Do performs req, consulting the cache for POST requests. Only 200
// responses are stored.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.cache == nil || req.Method != http.MethodPost {
		return c.httpClient.Do(req)
	}

	url := req.URL.String()

	var requestBody []byte
	if req.Body != nil {
		var err error
		requestBody, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(requestBody))
	}

	if data, found := c.cache.Get(url, requestBody); found {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     make(http.Header),
			Request:    req,
		}
		resp.Header.Set("X-From-Cache", "true")
		return resp, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.Debug("failed to close response body", "error", closeErr)
	}
	if err != nil {
		return nil, err
	}

	c.cache.Set(url, requestBody, body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
