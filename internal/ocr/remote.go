package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

// Remote posts page images to an HTTP recognition service and decodes
// its PaddleOCR-shaped answer.
type Remote struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewRemote(endpoint, apiKey string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Remote{
		url:    endpoint,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *Remote) Name() string { return "remote" }

// Recognize sends one page image. 429 and 5xx answers come back as
// *RetryableError.
func (r *Remote) Recognize(ctx context.Context, in Input) ([]tables.TextFragment, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, fmt.Errorf("parse ocr url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(in.Page))
	if len(in.Languages) > 0 {
		q.Set("lang", strings.Join(in.Languages, "+"))
	}
	if in.DPI > 0 {
		q.Set("dpi", strconv.Itoa(in.DPI))
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(in.Image))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", http.DetectContentType(in.Image))
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ocr service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr service status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	frags, err := ParsePaddleResult(respBody)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", in.Page, err)
	}
	return frags, nil
}

// Close releases idle connections.
func (r *Remote) Close() {
	r.httpClient.CloseIdleConnections()
}
