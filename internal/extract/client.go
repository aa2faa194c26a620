// Package extract calls the external image-understanding service that turns
// screenshots into raw JSON payloads, and fans those calls out per image.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Extractor is the collaborator contract: one call per image, returning the
// raw payload text exactly as the service produced it. Cleaning and
// validation happen downstream in the normalizer.
type Extractor interface {
	ExtractMatchResult(imageRef string) (string, error)
	ExtractRoster(imageRef string) (string, error)
}

// Client is a minimal HTTP client for the extraction service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a client for the extraction service at baseURL. The HTTP
// timeout is the only mitigation for a stuck call; there is no cancellation
// once a batch has started.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// ExtractMatchResult asks the service to read one result screenshot.
func (c *Client) ExtractMatchResult(imageRef string) (string, error) {
	return c.extract(imageRef, "match_result")
}

// ExtractRoster asks the service to read one slotlist screenshot.
func (c *Client) ExtractRoster(imageRef string) (string, error) {
	return c.extract(imageRef, "slotlist")
}

// extract performs one extraction call and returns the raw payload text.
func (c *Client) extract(imageRef, kind string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"image": imageRef,
		"kind":  kind,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", imageRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extract %s: HTTP %d", imageRef, resp.StatusCode)
	}

	var result struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("extract %s: decode response: %w", imageRef, err)
	}
	if result.Payload == "" {
		return "", fmt.Errorf("extract %s: empty payload", imageRef)
	}
	return result.Payload, nil
}
