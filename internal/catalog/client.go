// Package catalog is the client for the remote mod catalog: free-text
// project search and per-project version listings, Modrinth-flavored.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"

	"github.com/modwarden/modwarden/internal/retry"
)

// DefaultBaseURL points at the public catalog.
const DefaultBaseURL = "https://api.modrinth.com/v2"

// Project is one search hit.
type Project struct {
	ID          string `json:"project_id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	Downloads   int64  `json:"downloads"`
	Author      string `json:"author"`
}

// Version is one published version of a project. Listings filtered by loader
// and game version arrive newest-first; that ordering is the collaborator's
// contract.
type Version struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"project_id"`
	Name          string        `json:"name"`
	VersionNumber string        `json:"version_number"`
	VersionType   string        `json:"version_type"`
	Changelog     string        `json:"changelog"`
	Files         []VersionFile `json:"files"`
}

// VersionFile is one downloadable artifact of a version.
type VersionFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
	Size     int64  `json:"size"`
}

// PrimaryFile returns the file marked primary, or the first file when none
// is marked. ok is false for a version with no files.
func (v Version) PrimaryFile() (VersionFile, bool) {
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	if len(v.Files) > 0 {
		return v.Files[0], true
	}
	return VersionFile{}, false
}

type searchResponse struct {
	Hits []Project `json:"hits"`
}

// Config holds client construction options.
type Config struct {
	// BaseURL of the catalog API. Defaults to DefaultBaseURL.
	BaseURL string
	// HTTPClient to use. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// UserAgent sent on every request.
	UserAgent string
	// VersionTTL bounds how long version listings are served from cache.
	// Zero disables caching.
	VersionTTL time.Duration
	// Retry controls backoff for transient failures. Zero value means
	// retry.DefaultConfig.
	Retry retry.Config
}

// Client handles catalog API requests.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	retryCfg     retry.Config
	versionCache *ttlcache.Cache[string, []Version]
}

// NewClient creates a catalog client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	if cfg.Retry == (retry.Config{}) {
		cfg.Retry = retry.DefaultConfig()
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		userAgent:  cfg.UserAgent,
		retryCfg:   cfg.Retry,
	}
	if cfg.VersionTTL > 0 {
		c.versionCache = ttlcache.New(ttlcache.Options[string, []Version]{}.SetDefaultTTL(cfg.VersionTTL))
	}
	return c
}

// Search queries the catalog for mod projects matching the free-text query.
// Results are capped at limit hits.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Project, error) {
	facets, err := json.Marshal([][]string{{"project_type:mod"}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode facets: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("facets", string(facets))
	params.Set("index", "relevance")
	params.Set("offset", "0")
	params.Set("limit", fmt.Sprintf("%d", limit))

	var result searchResponse
	if err := c.getJSON(ctx, "/search?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	return result.Hits, nil
}

// Versions lists a project's versions filtered by loaders and game versions,
// newest-first. Responses are cached for the configured TTL.
func (c *Client) Versions(ctx context.Context, projectID string, loaders, gameVersions []string) ([]Version, error) {
	key := versionCacheKey(projectID, loaders, gameVersions)
	if c.versionCache != nil {
		if cached, found := c.versionCache.Get(key); found {
			return cached, nil
		}
	}

	params := url.Values{}
	if len(loaders) > 0 {
		encoded, err := json.Marshal(loaders)
		if err != nil {
			return nil, fmt.Errorf("failed to encode loaders: %w", err)
		}
		params.Set("loaders", string(encoded))
	}
	if len(gameVersions) > 0 {
		encoded, err := json.Marshal(gameVersions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode game versions: %w", err)
		}
		params.Set("game_versions", string(encoded))
	}

	path := fmt.Sprintf("/project/%s/version", url.PathEscape(projectID))
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var versions []Version
	if err := c.getJSON(ctx, path, &versions); err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	if c.versionCache != nil {
		c.versionCache.Set(key, versions, ttlcache.DefaultTTL)
	}
	return versions, nil
}

// getJSON performs a GET against the catalog and decodes the JSON response.
// Transport errors, 429 and 5xx responses are retried with backoff.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := retry.DoWithResult(ctx, c.retryCfg, func() ([]byte, error) {
		return c.get(ctx, path)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.Retryable(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, retry.Retryable(fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Retryable(fmt.Errorf("failed to read response: %w", err))
	}
	return body, nil
}

func versionCacheKey(projectID string, loaders, gameVersions []string) string {
	return projectID + "|" + strings.Join(loaders, ",") + "|" + strings.Join(gameVersions, ",")
}
