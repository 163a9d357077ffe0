package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
)

// NominatimConfig wires a Nominatim client.
type NominatimConfig struct {
	BaseURL       string
	CountrySuffix string
	UserAgent     string
	// RatePerSecond bounds outgoing requests; the public instance allows one per second.
	RatePerSecond float64
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Nominatim geocodes store addresses against an OpenStreetMap Nominatim server.
type Nominatim struct {
	baseURL    string
	suffix     string
	userAgent  string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewNominatim creates a client.
func NewNominatim(cfg NominatimConfig) *Nominatim {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "fernet-barato-api"
	}
	return &Nominatim{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		suffix:     strings.TrimSpace(cfg.CountrySuffix),
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		httpClient: httpClient,
	}
}

// Query returns the search text sent for an address.
func (n *Nominatim) Query(address string) string {
	address = strings.TrimSpace(address)
	if n.suffix == "" {
		return address
	}
	return address + ", " + n.suffix
}

func (n *Nominatim) Locate(ctx context.Context, store domain.Store) (domain.Coordinates, bool, error) {
	if strings.TrimSpace(store.Address) == "" {
		return domain.Coordinates{}, false, nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", n.Query(store.Address))
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, false, fmt.Errorf("geocode status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return domain.Coordinates{}, false, fmt.Errorf("geocode response is not JSON")
	}

	hit := gjson.GetBytes(body, "0")
	if !hit.Exists() {
		return domain.Coordinates{}, false, nil
	}
	c, err := domain.ParseCoordinates(hit.Get("lat").String(), hit.Get("lon").String())
	if err != nil {
		return domain.Coordinates{}, false, err
	}
	return c, true, nil
}
