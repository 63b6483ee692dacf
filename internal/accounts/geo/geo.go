// Package geo resolves approximate locations for client IP addresses using
// the ip-api.com JSON endpoint.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/pkg/slogx"
)

const (
	DefaultBaseURL = "http://ip-api.com/json/"
	DefaultTimeout = 1500 * time.Millisecond
)

// LocalLocation is returned for loopback and private addresses without a
// network call.
var LocalLocation = domain.Location{
	City:        "Local Dev",
	Region:      "Local Dev",
	Country:     "Local Dev",
	CountryCode: "LD",
	Timezone:    "UTC",
}

// Client looks up IP locations. Lookups never fail: an unavailable or
// unknown location is reported as nil.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
}

// Lookup resolves ip. It returns nil when the address is invalid, the
// service is unreachable or slow, or the service has no answer.
func (c *Client) Lookup(ctx context.Context, ip string) *domain.Location {
	if IsLocal(ip) {
		loc := LocalLocation
		return &loc
	}

	logger := slogx.FromContext(ctx)
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		logger.Debug("geo lookup skipped", "ip", ip, "reason", "invalid address")
		return nil
	}

	loc, err := c.fetch(ctx, addr.Unmap().String())
	if err != nil {
		logger.Warn("geo lookup failed", "ip", ip, "error", err)
		return nil
	}
	return loc
}

func (c *Client) fetch(ctx context.Context, ip string) (*domain.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+url.PathEscape(ip), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("lookup status %q: %s", body.Status, body.Message)
	}

	region := body.RegionName
	if region == "" {
		region = body.Region
	}
	return &domain.Location{
		City:        body.City,
		Region:      region,
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Latitude:    body.Lat,
		Longitude:   body.Lon,
		Timezone:    body.Timezone,
	}, nil
}

// IsLocal reports whether ip is loopback, private, link-local or
// unspecified, or the literal "localhost".
func IsLocal(ip string) bool {
	ip = strings.TrimSpace(ip)
	if strings.EqualFold(ip, "localhost") {
		return true
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified()
}
