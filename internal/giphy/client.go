// Package giphy implements search.Searcher over the GIPHY search API.
package giphy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/janpfeifer/GifCentration/internal/search"
	"k8s.io/klog/v2"
)

// DefaultBaseURL of the GIPHY API.
const DefaultBaseURL = "https://api.giphy.com/v1"

// Client for the GIPHY search endpoint.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with the default endpoint and a 10 seconds timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type rendition struct {
	URL    string `json:"url"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type gif struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Images struct {
		FixedHeight rendition `json:"fixed_height"`
		Original    rendition `json:"original"`
	} `json:"images"`
}

type searchResponse struct {
	Data []gif `json:"data"`
	Meta struct {
		Status int    `json:"status"`
		Msg    string `json:"msg"`
	} `json:"meta"`
}

// SearchImages implements search.Searcher.
func (c *Client) SearchImages(ctx context.Context, query string, limit int, rating search.Rating) ([]game.ImageRef, error) {
	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("rating", string(rating))
	reqURL := c.BaseURL + "/gifs/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("giphy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &search.StatusError{Code: resp.StatusCode}
	}
	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode giphy response: %w", err)
	}
	klog.V(1).Infof("giphy: %q (limit=%d, rating=%s) returned %d GIFs", query, limit, rating, len(body.Data))

	images := make([]game.ImageRef, 0, len(body.Data))
	for _, g := range body.Data {
		images = append(images, toImageRef(g))
	}
	return images, nil
}

// toImageRef picks the fixed height rendition for display, falling back to
// the original, and keeps the original aspect ratio.
func toImageRef(g gif) game.ImageRef {
	r := g.Images.FixedHeight
	if r.URL == "" {
		r = g.Images.Original
	}
	width, height := atoi(g.Images.Original.Width), atoi(g.Images.Original.Height)
	if width == 0 || height == 0 {
		width, height = atoi(r.Width), atoi(r.Height)
	}
	return game.ImageRef{
		ID:     g.ID,
		Title:  g.Title,
		URL:    r.URL,
		Width:  width,
		Height: height,
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
