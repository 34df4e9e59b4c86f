// Package httpstore implements the store.Store capability over an HTTP
// JSON-document endpoint: GET returns {"record": [...]}, PUT accepts the
// bare array.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go"
	"github.com/douglaslassance/gitalong-go/cache"
	"github.com/douglaslassance/gitalong-go/commit"
)

// requestTimeout bounds every GET/PUT; the spec recommends five seconds.
const requestTimeout = 5 * time.Second

// cacheDirName is where the local sentinel and cached payload live,
// relative to the managed working-tree root.
const cacheDirName = ".gitalong"

// Store is the HTTP-backed side-channel.
type Store struct {
	url           string
	headers       map[string]string
	pullThreshold time.Duration
	sentinelPath  string
	cachePath     string
	client        *http.Client
}

// Open configures an HTTP store against url, using managedRoot for its
// local freshness sentinel and cached payload.
func Open(managedRoot, url string, headers map[string]string, pullThreshold time.Duration) *Store {
	dir := filepath.Join(managedRoot, cacheDirName)
	return &Store{
		url:           url,
		headers:       headers,
		pullThreshold: pullThreshold,
		sentinelPath:  filepath.Join(dir, ".pull"),
		cachePath:     filepath.Join(dir, "commits.json"),
		client:        &http.Client{Timeout: requestTimeout},
	}
}

type getResponse struct {
	Record []commit.Commit `json:"record"`
}

func expandHeaders(headers map[string]string) map[string]string {
	expanded := make(map[string]string, len(headers))
	for k, v := range headers {
		expanded[k] = os.ExpandEnv(v)
	}
	return expanded
}

// Read returns the cached payload, unchanged, if a GET happened within
// pullThreshold. Otherwise it issues a GET; on any failure (non-2xx or
// network error, including a timeout) it degrades to the cached payload
// when one exists, and only then reports StoreUnreachableError.
func (s *Store) Read(ctx context.Context) ([]commit.Commit, error) {
	if cache.Within(s.sentinelPath, s.pullThreshold) {
		return s.readCache()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building store GET request")
	}
	for k, v := range expandHeaders(s.headers) {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if s.hasCache() {
			return s.readCache()
		}
		return nil, &gitalong.StoreUnreachableError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		if s.hasCache() {
			return s.readCache()
		}
		return nil, &gitalong.StoreUnreachableError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var doc getResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing store response")
	}
	if err := cache.Touch(s.sentinelPath); err != nil {
		return nil, errors.Wrap(err, "touching freshness sentinel")
	}
	if err := s.writeCache(doc.Record); err != nil {
		return nil, err
	}
	return doc.Record, nil
}

// Write PUTs the bare commits array and, on success, updates the local
// cache so a subsequent throttled Read reflects it.
func (s *Store) Write(ctx context.Context, commits []commit.Commit) error {
	if commits == nil {
		commits = []commit.Commit{}
	}
	body, err := json.Marshal(commits)
	if err != nil {
		return errors.Wrap(err, "encoding commits")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building store PUT request")
	}
	for k, v := range expandHeaders(s.headers) {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &gitalong.StoreUnreachableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &gitalong.StoreUnreachableError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return s.writeCache(commits)
}

func (s *Store) hasCache() bool {
	_, err := os.Stat(s.cachePath)
	return err == nil
}

func (s *Store) readCache() ([]commit.Commit, error) {
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading cached store payload")
	}
	var commits []commit.Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, errors.Wrap(err, "parsing cached store payload")
	}
	return commits, nil
}

func (s *Store) writeCache(commits []commit.Commit) error {
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0755); err != nil {
		return errors.Wrap(err, "creating cache directory")
	}
	data, err := json.MarshalIndent(commits, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding cached store payload")
	}
	return os.WriteFile(s.cachePath, data, 0644)
}
