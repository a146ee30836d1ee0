// Package integration handles external service interactions
package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/abelzeko/border-wait/internal/entities"
	"github.com/abelzeko/border-wait/internal/integration/cbp"
	"github.com/abelzeko/border-wait/internal/integration/cbsa"
	"github.com/abelzeko/border-wait/internal/logger"
)

const (
	defaultCBSAURL = "https://www.cbsa-asfc.gc.ca/bwt-taf/menu-eng.html"
	defaultCBPURL  = "https://bwt.cbp.gov/api/bwtnew"
)

// BorderScraper fetches wait times from CBSA and CBP
type BorderScraper struct {
	cbsaURL          string
	cbpURL           string
	regionPrefix     string
	restrictToRegion bool
	client           *http.Client
	parser           cbsa.Parser
}

// ScraperOptions configures a BorderScraper. Zero values select the defaults.
type ScraperOptions struct {
	CBSAURL          string
	CBPURL           string
	RegionPrefix     string
	RestrictToRegion bool
	Timeout          time.Duration
	// ParseStrategy picks the CBSA table walker; empty means the query parser
	ParseStrategy    cbsa.Strategy
}

// NewBorderScraper creates a new border wait time scraper
func NewBorderScraper(opts ScraperOptions) (*BorderScraper, error) {
	if opts.CBSAURL == "" {
		opts.CBSAURL = defaultCBSAURL
	}
	if opts.CBPURL == "" {
		opts.CBPURL = defaultCBPURL
	}
	if opts.RegionPrefix == "" {
		opts.RegionPrefix = cbp.DefaultRegion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	// The page arrives as a response body, so the configured strategy decides the parser
	parser, err := cbsa.NewParser(cbsa.WithStrategy(opts.ParseStrategy))
	if err != nil {
		return nil, fmt.Errorf("failed to create CBSA parser: %w", err)
	}

	return &BorderScraper{
		cbsaURL:          opts.CBSAURL,
		cbpURL:           opts.CBPURL,
		regionPrefix:     opts.RegionPrefix,
		restrictToRegion: opts.RestrictToRegion,
		client:           &http.Client{Timeout: opts.Timeout},
		parser:           parser,
	}, nil
}

// FetchCanadaData retrieves the CBSA wait times page and extracts Pacific-zone offices
func (bs *BorderScraper) FetchCanadaData(ctx context.Context) ([]entities.CanadaBorderCrossingTimes, error) {
	log := logger.FromContext(ctx)

	// Fetch the wait times page
	body, err := bs.get(ctx, bs.cbsaURL, "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CBSA wait times: %w", err)
	}
	defer body.Close()

	// Hand the page to the table parser; it drops rows outside the Pacific zone
	log.Debug().Str("url", bs.cbsaURL).Msg("parsing CBSA wait times page")
	data, err := bs.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CBSA wait times: %w", err)
	}

	log.Info().Int("offices", len(data)).Msg("extracted CBSA offices")
	return data, nil
}

// FetchUSData retrieves the CBP feed and normalizes it, keeping only the
// configured region when restriction is on
func (bs *BorderScraper) FetchUSData(ctx context.Context) ([]entities.BorderCrossing, error) {
	log := logger.FromContext(ctx)

	// Fetch the JSON feed
	body, err := bs.get(ctx, bs.cbpURL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CBP wait times: %w", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read CBP wait times: %w", err)
	}

	// Normalize every port, then narrow to the region
	all, err := cbp.Normalize(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to normalize CBP wait times: %w", err)
	}

	data := slices.Collect(cbp.SelectByRegion(all, bs.restrictToRegion, bs.regionPrefix))
	log.Info().Int("ports", len(all)).Int("selected", len(data)).Str("region", bs.regionPrefix).
		Bool("restricted", bs.restrictToRegion).Msg("normalized CBP ports")
	return data, nil
}

// get performs the request and returns the body of a 200 response
func (bs *BorderScraper) get(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	log := logger.FromContext(ctx)

	// Create the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)

	// Send an HTTP GET request to the URL
	log.Debug().Str("url", url).Msg("sending HTTP request")
	res, err := bs.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("request failed")
		return nil, err
	}

	// Check for successful response
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		log.Warn().Int("status", res.StatusCode).Str("url", url).Msg("unexpected status code")
		return nil, fmt.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}
	return res.Body, nil
}
