// Package source is the HTTP client for the system of record. It
// implements the record-source contracts of the sync and reindex
// usecases against the upstream change-feed API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/courtlens/docketdex/internal/domain"
	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

const defaultTimeout = 30 * time.Second

// Client fetches records over HTTP. A 404 maps to the matching domain
// not-found sentinel so vanished records read as clean deletes.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a record-source client. timeout <= 0 uses the default.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetDocket fetches one docket record.
func (c *Client) GetDocket(ctx context.Context, id int64) (domdocket.Docket, error) {
	var d domdocket.Docket
	err := c.getJSON(ctx, fmt.Sprintf("/dockets/%d", id), domain.ErrDocketNotFound, &d)
	return d, err
}

// GetFiling fetches one filing record.
func (c *Client) GetFiling(ctx context.Context, id int64) (domfiling.Filing, error) {
	var f domfiling.Filing
	err := c.getJSON(ctx, fmt.Sprintf("/filings/%d", id), domain.ErrFilingNotFound, &f)
	return f, err
}

// ListFilings returns all filings under a docket.
func (c *Client) ListFilings(ctx context.Context, docketID int64) ([]domfiling.Filing, error) {
	var filings []domfiling.Filing
	err := c.getJSON(ctx, fmt.Sprintf("/dockets/%d/filings", docketID), domain.ErrDocketNotFound, &filings)
	return filings, err
}

// GetParties returns the current party, attorney and firm sets of a docket.
func (c *Client) GetParties(ctx context.Context, docketID int64) (domdocket.Parties, error) {
	var p domdocket.Parties
	err := c.getJSON(ctx, fmt.Sprintf("/dockets/%d/parties", docketID), domain.ErrDocketNotFound, &p)
	return p, err
}

// ListDocketIDs returns up to limit docket ids greater than afterID, in
// ascending order. Used by the batch reindexer.
func (c *Client) ListDocketIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	q := url.Values{}
	q.Set("after_id", strconv.FormatInt(afterID, 10))
	q.Set("limit", strconv.Itoa(limit))

	var ids []int64
	err := c.getJSON(ctx, "/dockets?"+q.Encode(), nil, &ids)
	return ids, err
}

// getJSON runs one GET and decodes the body. notFound, when non-nil,
// is returned for a 404 instead of a generic status error.
func (c *Client) getJSON(ctx context.Context, path string, notFound error, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("source GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound && notFound != nil:
		return notFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("source GET %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("source GET %s: decode: %w", path, err)
	}
	return nil
}
