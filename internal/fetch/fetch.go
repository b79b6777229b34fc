// Package fetch reads background image bytes from a URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Fetcher returns the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) ([]byte, error)
}

// FetchError reports a failed fetch of URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DefaultMaxBytes caps how much of a response URLFetcher will read.
const DefaultMaxBytes = 64 << 20

// URLFetcher reads http, https and file URLs.
type URLFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewURLFetcher returns a fetcher using http.DefaultClient.
func NewURLFetcher() *URLFetcher {
	return &URLFetcher{Client: http.DefaultClient, MaxBytes: DefaultMaxBytes}
}

// Fetch implements Fetcher. Every failure is a *FetchError.
func (f *URLFetcher) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	data, err := f.fetch(ctx, u)
	if err != nil {
		return nil, &FetchError{URL: u.String(), Err: err}
	}
	return data, nil
}

func (f *URLFetcher) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "file":
		data, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, err
		}
		if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
			return nil, fmt.Errorf("file larger than %d bytes", f.MaxBytes)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func (f *URLFetcher) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	var r io.Reader = resp.Body
	if f.MaxBytes > 0 {
		r = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("response larger than %d bytes", f.MaxBytes)
	}
	return data, nil
}

// ImageURL unwraps image search result links that carry the real image
// location in an imgurl query parameter. Other URLs are returned as is.
func ImageURL(u *url.URL) *url.URL {
	raw := u.Query().Get("imgurl")
	if raw == "" {
		return u
	}
	inner, err := url.Parse(raw)
	if err != nil || inner.Scheme == "" {
		return u
	}
	return inner
}
