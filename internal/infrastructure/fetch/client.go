package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"HamptonCollector/internal/domain"
)

const userAgent = "HamptonCollector/1.0"

// Client performs plain HTTP calls against open-data endpoints and document
// URLs. Safe for concurrent use.
type Client struct {
	http *http.Client
}

// NewClient wires an HTTP client; a nil client gets a 20s timeout default.
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{http: client}
}

// JSON issues a single GET with the given query parameters and returns the
// raw body. No pagination, no rate-limit handling.
func (c *Client) JSON(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	endpoint, err := buildURL(rawURL, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// VerifyDocument issues a HEAD request against a document URL. A 200 yields a
// primary_document record carrying content-type, size, and last-modified from
// the response headers; any other status is an error.
func (c *Client) VerifyDocument(ctx context.Context, rawURL string) (*domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("head document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document returned %s", resp.Status)
	}

	rec := domain.NewRecord(documentID(rawURL), domain.TypePrimaryDocument)
	rec.URL = rawURL
	rec.ContentType = resp.Header.Get("Content-Type")
	rec.ContentLength = resp.ContentLength
	rec.LastModified = resp.Header.Get("Last-Modified")
	return &rec, nil
}

func buildURL(base string, params url.Values) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint url %s: %w", base, err)
	}

	query := parsed.Query()
	for key, values := range params {
		for _, v := range values {
			query.Set(key, v)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// documentID derives a stable identifier from the URL path, falling back to
// the whole URL for opaque paths.
func documentID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	base := path.Base(parsed.Path)
	if base == "" || base == "." || base == "/" {
		return rawURL
	}
	return strings.TrimSpace(base)
}
