// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package pkgtrack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
)

// BaseURL is the PyPI JSON API root.
const BaseURL = "https://pypi.org/pypi"

const requestTimeout = 6 * time.Second

// Release is one published version of a package.
type Release struct {
	Version    string
	UploadedAt time.Time
}

// Client queries the PyPI JSON API.
type Client struct {
	BaseURL string
	hc      *http.Client
}

// NewClient prepares a PyPI client with retries on transient failures
// and a circuit breaker so a dead PyPI does not stall every workbook
// refresh for the full timeout, again and again.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = requestTimeout
	rc.HTTPClient.Transport = &breakerTransport{
		tr: rc.HTTPClient.Transport,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "pypi",
			Interval: 10 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 3 &&
					float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
			},
		}),
	}
	return &Client{BaseURL: baseURL, hc: rc.StandardClient()}
}

type breakerTransport struct {
	tr http.RoundTripper
	cb *gobreaker.CircuitBreaker
}

func (bt *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := bt.cb.Execute(func() (interface{}, error) {
		return bt.tr.RoundTrip(req)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*http.Response), nil
}

func (c *Client) get(ctx context.Context, packageName string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		c.BaseURL+"/"+url.PathEscape(packageName)+"/json", nil)
	if err != nil {
		return nil, err
	}
	return c.hc.Do(req)
}

// Exists reports whether PyPI knows the package. A reachable PyPI
// answering anything but 200 means "no"; only transport failures are
// errors.
func (c *Client) Exists(ctx context.Context, packageName string) (bool, error) {
	resp, err := c.get(ctx, packageName)
	if err != nil {
		return false, fmt.Errorf("%q: %w", packageName, err)
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// Releases downloads the version history of the package, sorted by
// upload time. Releases without any uploaded files are skipped, they
// carry no timestamp.
func (c *Client) Releases(ctx context.Context, packageName string) ([]Release, error) {
	resp, err := c.get(ctx, packageName)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", packageName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%q: %s", packageName, resp.Status)
	}
	var payload struct {
		Releases map[string][]struct {
			UploadTime string `json:"upload_time"`
		} `json:"releases"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %q: %w", packageName, err)
	}
	releases := make([]Release, 0, len(payload.Releases))
	for version, files := range payload.Releases {
		if len(files) == 0 {
			continue
		}
		t, err := time.Parse("2006-01-02T15:04:05", files[0].UploadTime)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, files[0].UploadTime); err != nil {
				return nil, fmt.Errorf("%q version %q upload_time %q: %w",
					packageName, version, files[0].UploadTime, err)
			}
		}
		releases = append(releases, Release{Version: version, UploadedAt: t})
	}
	sort.Slice(releases, func(i, j int) bool {
		return releases[i].UploadedAt.Before(releases[j].UploadedAt)
	})
	return releases, nil
}
