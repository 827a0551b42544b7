package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	appLog "daygrid/internal/log"
)

// Source is a single calendar feed.
type Source struct {
	// ID is an internal identifier used for logging and colors.
	ID string
	// Location is a local file path or an http(s) URL.
	Location string
}

func (s Source) remote() bool {
	return strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://")
}

// LoadResult is the body of one source.
type LoadResult struct {
	Source    Source
	Body      []byte
	FromCache bool // true if a cached remote body was reused
}

// cacheEntry holds HTTP validators for a remote source.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Loader reads sources from disk or over HTTP. Remote bodies are cached on
// disk and revalidated with ETag / Last-Modified; the cached body is used
// when the network or the server fails.
type Loader struct {
	client   *http.Client
	cacheDir string
}

// NewLoader creates a Loader caching remote bodies under cacheDir. A nil
// client gets a 15 second timeout.
func NewLoader(cacheDir string, client *http.Client) *Loader {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Loader{client: client, cacheDir: cacheDir}
}

// LoadAll loads every source. Failed sources are logged, skipped and
// reported in the error slice.
func (l *Loader) LoadAll(ctx context.Context, sources []Source) ([]LoadResult, []error) {
	results := make([]LoadResult, 0, len(sources))
	errs := make([]error, 0)

	for _, src := range sources {
		res, err := l.Load(ctx, src)
		if err != nil {
			errs = append(errs, fmt.Errorf("ics: source %q: %w", src.ID, err))
			appLog.Error("ics load failed", err, "id", src.ID, "location", redact(src.Location))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// Load reads a single source.
func (l *Loader) Load(ctx context.Context, src Source) (LoadResult, error) {
	if src.Location == "" {
		return LoadResult{}, errors.New("source location is empty")
	}
	if !src.remote() {
		body, err := os.ReadFile(src.Location)
		if err != nil {
			return LoadResult{}, err
		}
		return LoadResult{Source: src, Body: body}, nil
	}
	return l.fetch(ctx, src)
}

func (l *Loader) fetch(ctx context.Context, src Source) (LoadResult, error) {
	cachePath := l.cachePath(src.Location)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return LoadResult{}, err
	}

	meta, _ := loadCacheMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.ics"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
	if err != nil {
		return LoadResult{}, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	cached := func(reason error) (LoadResult, error) {
		if len(cachedBody) == 0 {
			return LoadResult{}, reason
		}
		appLog.Warn("ics fetch failed, using cached body", "err", reason, "id", src.ID, "location", redact(src.Location))
		return LoadResult{Source: src, Body: cachedBody, FromCache: true}, nil
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return cached(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return LoadResult{}, err
		}
		entry := cacheEntry{
			URL:          src.Location,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := saveCache(cachePath, entry, body); err != nil {
			appLog.Error("ics cache save failed", err, "id", src.ID)
		}
		appLog.Info("ics fetch success", "id", src.ID, "location", redact(src.Location), "bytes", len(body))
		return LoadResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return LoadResult{}, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Debug("ics fetch not modified", "id", src.ID)
		return LoadResult{Source: src, Body: cachedBody, FromCache: true}, nil

	default:
		return cached(errors.New(resp.Status))
	}
}

func (l *Loader) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(l.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadCacheMeta(cachePath string) (cacheEntry, error) {
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

// saveCache writes the body before the metadata so the metadata never
// points at a missing body.
func saveCache(cachePath string, meta cacheEntry, body []byte) error {
	if err := os.WriteFile(filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redact keeps only the scheme and host of a URL; feed URLs often carry
// private tokens. Local paths are reduced to their base name.
func redact(loc string) string {
	i := strings.Index(loc, "://")
	if i == -1 {
		return filepath.Base(loc)
	}
	rest := loc[i+3:]
	if j := strings.IndexByte(rest, '/'); j != -1 {
		rest = rest[:j]
	}
	return loc[:i+3] + rest + "/...(redacted)"
}
