package geoportal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

const errorBodyLimit = 10000

// Client queries the NSPD geoportal search API for cadastral parcel data.
// The API rejects cookie-less requests, so a session is bootstrapped once per
// run by visiting the public map page, then reused for every lookup.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	mapURL       string
	userAgent    string
	bootstrapped bool
}

func NewClient(baseURL, mapURL, userAgent string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		baseURL:   baseURL,
		mapURL:    mapURL,
		userAgent: userAgent,
	}
}

// Lookup fetches parcel data for one cadastral number. Exactly one of the
// returned strings is non-empty: the JSON payload on success, a diagnostic
// otherwise. Remote errors and transport failures are both reported through
// the diagnostic so the caller can record them against the row and retry on
// a later run.
func (c *Client) Lookup(ctx context.Context, cadNum string) (string, string) {
	if err := c.ensureSession(ctx); err != nil {
		return "", fmt.Sprintf("Exception: %v", err)
	}

	lookupURL := fmt.Sprintf("%s?thematicSearchId=1&query=%s", c.baseURL, url.QueryEscape(cadNum))
	req, err := http.NewRequestWithContext(ctx, "GET", lookupURL, nil)
	if err != nil {
		return "", fmt.Sprintf("Exception: %v", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", c.mapURL)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Sprintf("Exception: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", formatErrorResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Sprintf("Exception: failed to read response body: %v", err)
	}

	payload, err := compactJSON(body)
	if err != nil {
		return "", fmt.Sprintf("Exception: invalid JSON response: %v", err)
	}

	return payload, ""
}

// ensureSession visits the map page once to collect session cookies.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.bootstrapped {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.mapURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open map session: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("map session returned HTTP %d", resp.StatusCode)
	}

	c.bootstrapped = true
	return nil
}

// formatErrorResponse renders a non-200 response as a stable diagnostic with
// enough context to debug the remote side from the stored cell alone.
func formatErrorResponse(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	bodyText := string(body)
	if err != nil {
		bodyText = "<binary or unreadable>"
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}
	headersJSON, _ := json.Marshal(headers)

	return fmt.Sprintf("Status: %d\nURL: %s\nHeaders: %s\nBody: %s",
		resp.StatusCode, resp.Request.URL.String(), headersJSON, bodyText)
}

func compactJSON(body []byte) (string, error) {
	if !json.Valid(body) {
		return "", fmt.Errorf("response is not valid JSON")
	}
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", err
	}
	compacted, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(compacted), nil
}
