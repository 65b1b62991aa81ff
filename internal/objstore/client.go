package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// RetryableError indicates a transient storage failure (429 or 5xx).
type RetryableError struct {
	StatusCode int
	Op         string
	Key        string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s %s: retryable status %d", e.Op, e.Key, e.StatusCode)
}

// Client communicates with a bucket-oriented object storage HTTP API:
//
//	PUT    /buckets/{bucket}/objects/{key}
//	GET    /buckets/{bucket}/objects/{key}
//	HEAD   /buckets/{bucket}/objects/{key}
//	DELETE /buckets/{bucket}/objects/{key}
//	GET    /buckets/{bucket}/objects?prefix=...&limit=...
type Client struct {
	baseURL    string
	bucket     string
	apiKey     string
	publicURL  string
	httpClient *http.Client
}

func NewClient(baseURL, bucket, apiKey, publicURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		bucket:    bucket,
		apiKey:    apiKey,
		publicURL: strings.TrimRight(publicURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ObjectInfo is a single entry from a prefix listing.
type ObjectInfo struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Client) objectURL(key string) string {
	return fmt.Sprintf("%s/buckets/%s/objects/%s", c.baseURL, url.PathEscape(c.bucket), escapeKey(key))
}

// escapeKey escapes each path segment but keeps the slashes.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, contentType string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.httpClient.Do(httpReq)
}

// statusError converts an unexpected response into an error, draining a
// bounded amount of the body for the message.
func statusError(resp *http.Response, op, key string) error {
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Op: op, Key: key}
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s %s: status %d: %s", op, key, resp.StatusCode, string(respBody))
}

// PutObject stores data under key, replacing any existing object.
func (c *Client) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := c.do(ctx, http.MethodPut, c.objectURL(key), data, contentType)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return statusError(resp, "put", key)
	}
	return nil
}

// GetObject downloads an object. It returns ErrNotFound when the key is absent.
func (c *Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, c.objectURL(key), nil, "")
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "get", key)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether an object is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := c.do(ctx, http.MethodHead, c.objectURL(key), nil, "")
	if err != nil {
		return false, fmt.Errorf("head object: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode == http.StatusOK:
		return true, nil
	default:
		return false, statusError(resp, "head", key)
	}
}

// DeleteObject removes an object. Deleting a missing key is not an error.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.objectURL(key), nil, "")
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return statusError(resp, "delete", key)
	}
}

// ListObjects does a prefix scan of the bucket.
func (c *Client) ListObjects(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	q := url.Values{}
	q.Set("prefix", prefix)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := fmt.Sprintf("%s/buckets/%s/objects?%s", c.baseURL, url.PathEscape(c.bucket), q.Encode())
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "list", prefix)
	}

	var result struct {
		Objects []ObjectInfo `json:"objects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return result.Objects, nil
}

// URL returns the address clients can download key from.
func (c *Client) URL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + escapeKey(key)
	}
	return c.objectURL(key)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
