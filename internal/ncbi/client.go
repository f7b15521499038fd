// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ncbi implements the DOI enrichment client for the NCBI ID
// Converter service, which resolves PMIDs and PMCIDs to DOIs.
package ncbi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tmsincomb/oscapify/internal/httputil"
	"github.com/tmsincomb/oscapify/pkg/types"
)

const (
	// BaseURL is the NCBI ID Converter endpoint.
	BaseURL = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/"

	// DefaultTool is the tool name reported to NCBI.
	DefaultTool = "oscapify"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 3 requests per second, the documented ceiling for the
	// shared NCBI service. Burst 1 keeps calls strictly serialized about
	// one request per 0.34s.
	RateLimit = 3.0
)

// Client is a rate-limited HTTP client for the ID Converter API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	tool       string
	userAgent  string
	apiKey     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the NCBI API key for elevated rate limits.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithTool sets the tool name reported to NCBI.
func WithTool(tool string) ClientOption {
	return func(c *Client) { c.tool = tool }
}

// NewClient creates an ID Converter client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		tool:       DefaultTool,
		userAgent:  "oscapify/0.1",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// idconvResponse is the ID Converter JSON body: a records list with zero
// or one entries.
type idconvResponse struct {
	Records []idconvRecord `json:"records"`
	ErrMsg  string         `json:"errmsg"`
}

type idconvRecord struct {
	PMID   flexString `json:"pmid"`
	PMCID  flexString `json:"pmcid"`
	DOI    string     `json:"doi"`
	ErrMsg string     `json:"errmsg"`
	Status string     `json:"status"`
}

// flexString unmarshals from either a JSON string or a JSON number, since
// the service returns PMIDs as numbers on some paths.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*f = flexString(strconv.Itoa(i))
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s as string", string(data))
}

// ConvertID looks up one PMID or PMCID and returns the resolved DOI
// record. A miss or failure is returned as a *LookupError carrying the
// query identifier, request URL, and raw response for debugging.
func (c *Client) ConvertID(ctx context.Context, identifier string) (*types.DOIResult, error) {
	if identifier == "" {
		return nil, &LookupError{
			Kind:    KindNoIdentifier,
			Message: "no identifier available for DOI lookup",
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &LookupError{
			Kind:       KindTransport,
			Identifier: identifier,
			Message:    "rate limiter wait cancelled",
			Err:        err,
		}
	}

	params := url.Values{
		"tool":   {c.tool},
		"ids":    {identifier},
		"format": {"json"},
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &LookupError{
			Kind:       KindTransport,
			Identifier: identifier,
			URL:        reqURL,
			Message:    fmt.Sprintf("creating request: %v", err),
			Err:        err,
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, &LookupError{
			Kind:       KindTransport,
			Identifier: identifier,
			URL:        reqURL,
			Message:    fmt.Sprintf("API request failed: %v", err),
			Err:        err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LookupError{
			Kind:       KindTransport,
			Identifier: identifier,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("reading response: %v", err),
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{
			Kind:       KindHTTP,
			Identifier: identifier,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("ID Converter returned HTTP %d", resp.StatusCode),
			Body:       string(body),
		}
	}

	var parsed idconvResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &LookupError{
			Kind:       KindParse,
			Identifier: identifier,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("parsing ID Converter response: %v", err),
			Body:       string(body),
			Err:        err,
		}
	}

	result, missMsg := parseRecords(parsed)
	if result == nil {
		return nil, &LookupError{
			Kind:       KindNoRecord,
			Identifier: identifier,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Message:    missMsg,
			Body:       string(body),
		}
	}
	return result, nil
}

// parseRecords extracts a DOI result from a decoded response, or returns
// a diagnostic message describing why the lookup is a miss.
func parseRecords(resp idconvResponse) (*types.DOIResult, string) {
	if len(resp.Records) == 0 {
		if resp.ErrMsg != "" {
			return nil, "API error: " + resp.ErrMsg
		}
		return nil, "no records found"
	}

	rec := resp.Records[0]
	if rec.ErrMsg != "" {
		return nil, "API error: " + rec.ErrMsg
	}
	if rec.Status != "" && rec.Status != "live" {
		return nil, "record status: " + rec.Status
	}
	if rec.DOI == "" {
		return nil, "API returned no DOI"
	}

	return &types.DOIResult{
		DOI:   rec.DOI,
		PMID:  string(rec.PMID),
		PMCID: string(rec.PMCID),
	}, ""
}
