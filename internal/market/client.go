package market

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const baseURL = "https://evetycoon.com/api/v1"

// Client is a concurrency-bounded HTTP client for the Tycoon market API.
type Client struct {
	http    *http.Client
	sem     chan struct{}
	baseURL string
}

// NewClient creates a market client. At most 10 requests are in flight at
// once to stay inside the API's implicit rate limits.
func NewClient() *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		sem:     make(chan struct{}, 10),
		baseURL: baseURL,
	}
}

// SetBaseURL overrides the API endpoint, mainly for tests and proxies.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "eve-trader/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("market API %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
