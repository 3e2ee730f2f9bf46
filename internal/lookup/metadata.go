// Package lookup consults an external product-metadata service keyed by
// barcode. The service needs no authentication; every failure degrades to
// "not found" so product creation is never blocked on it.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds one lookup end to end.
const DefaultTimeout = 15 * time.Second

// Metadata is the optional enrichment the service returns for a barcode.
type Metadata struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Client is the metadata-lookup collaborator. A nil *Client is valid and
// always reports not found.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a client against baseURL. timeout <= 0 falls back to
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// ByBarcode fetches metadata for a scanned code. ok=false means no data:
// unknown barcode, timeout, network failure or a malformed response all land
// there, logged but never surfaced as errors.
func (c *Client) ByBarcode(ctx context.Context, barcode string) (Metadata, bool) {
	if c == nil {
		return Metadata{}, false
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warn().Err(err).Str("barcode", barcode).Msg("metadata lookup request failed")
		return Metadata{}, false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("barcode", barcode).Msg("metadata lookup failed")
		return Metadata{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode != http.StatusNotFound {
			c.log.Warn().Int("status", resp.StatusCode).Str("barcode", barcode).Msg("metadata lookup rejected")
		}
		return Metadata{}, false
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		c.log.Warn().Err(err).Str("barcode", barcode).Msg("metadata lookup decode failed")
		return Metadata{}, false
	}
	return meta, true
}
