// Package imagesearch finds a representative photo for a place via the
// Unsplash search API.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tripsmith/itinerary-api/internal/config"
)

var (
	// ErrNoAPIKey is returned when no Unsplash access key is configured.
	ErrNoAPIKey = errors.New("imagesearch: UNSPLASH_API_KEY not configured")

	// ErrNoResult is returned when the search matched no photo.
	ErrNoResult = errors.New("imagesearch: no result")
)

// UnsplashClient searches Unsplash for landscape photos.
type UnsplashClient struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
}

// NewUnsplashClient constructs an UnsplashClient from cfg.
func NewUnsplashClient(cfg config.ImageConfig) *UnsplashClient {
	return &UnsplashClient{
		accessKey:  cfg.AccessKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
	} `json:"results"`
}

// Search returns the URL of the top photo for query, preferring the
// "regular" size, then "small", then "thumb".
func (c *UnsplashClient) Search(ctx context.Context, query string) (string, error) {
	if c.accessKey == "" {
		return "", ErrNoAPIKey
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrNoResult
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("imagesearch.Search: create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("imagesearch.Search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("imagesearch.Search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("imagesearch.Search: decode: %w", err)
	}
	if len(sr.Results) == 0 {
		return "", ErrNoResult
	}
	u := sr.Results[0].URLs
	for _, candidate := range []string{u.Regular, u.Small, u.Thumb} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", ErrNoResult
}
