package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"xe-rate-service/internal/domain/model"
	"xe-rate-service/pkg/logger"
	"xe-rate-service/pkg/utils"
)

// DefaultBaseURL is the XE Currency Data convert_from endpoint.
const DefaultBaseURL = "https://xecdapi.xe.com/v1/convert_from.json"

// XEClient fetches mid-market rates from the XE Currency Data API. It keeps no
// state between calls and never retries.
type XEClient struct {
	baseURL    string
	accountID  string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

type XEOption func(*XEClient)

// WithHTTPClient replaces the default client, whose only setting is the timeout.
func WithHTTPClient(client *http.Client) XEOption {
	return func(c *XEClient) {
		c.httpClient = client
	}
}

type convertFromResponse struct {
	To []quote `json:"to"`
}

type quote struct {
	QuoteCurrency string           `json:"quotecurrency"`
	Mid           *decimal.Decimal `json:"mid"`
}

type errorResponse struct {
	Message *string `json:"message"`
}

func NewXEClient(baseURL, accountID, apiKey string, timeout time.Duration, log *logger.Logger, opts ...XEOption) *XEClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &XEClient{
		baseURL:   baseURL,
		accountID: accountID,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *XEClient) FetchRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, error) {
	rates, err := c.FetchRates(ctx, from, []model.Currency{to})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return rates[to], nil
}

// FetchRates returns a rate for every code in to, or an error. Partial results
// are never returned.
func (c *XEClient) FetchRates(ctx context.Context, from model.Currency, to []model.Currency) (map[model.Currency]decimal.Decimal, error) {
	if len(to) == 0 {
		return nil, ErrNoTargets
	}

	req, err := c.buildRequest(ctx, from, to)
	if err != nil {
		return nil, err
	}

	c.log.Debug("Fetching rates", "from", from.String(), "to", utils.JoinCodes(to))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{
			Kind:    model.KindTransport,
			Message: fmt.Sprintf("failed to send request: %v", err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.FetchError{
			Kind:       model.KindTransport,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, body)
	}

	rates, err := extractRates(body, to)
	if err != nil {
		c.log.Error("Failed to parse rates response", "error", err, "from", from.String())
		return nil, &model.FetchError{
			Kind:       model.KindParse,
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage,
			Err:        err,
		}
	}

	return rates, nil
}

func (c *XEClient) buildRequest(ctx context.Context, from model.Currency, to []model.Currency) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}

	// The provider expects a literal comma between targets, which url.Values
	// would escape.
	u.RawQuery = "from=" + url.QueryEscape(from.String()) + "&to=" + utils.JoinCodes(escapeAll(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountID, c.apiKey)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// statusError turns a non-200 answer into a FetchError carrying the provider's
// message. A body that cannot be read as such is reported as-is instead.
func (c *XEClient) statusError(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		c.log.Error("Failed to decode error response", "error", err, "status_code", statusCode)
		return fmt.Errorf("failed to decode error response (status %d): %w", statusCode, err)
	}
	if errResp.Message == nil {
		return fmt.Errorf("%w (status %d)", ErrMissingMessage, statusCode)
	}

	c.log.Warn("Provider returned an error", "status_code", statusCode, "message", *errResp.Message)
	return &model.FetchError{
		Kind:       model.KindStatus,
		StatusCode: statusCode,
		Message:    *errResp.Message,
	}
}

func extractRates(body []byte, to []model.Currency) (map[model.Currency]decimal.Decimal, error) {
	var data convertFromResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	rates := make(map[model.Currency]decimal.Decimal, len(to))
	for _, currency := range to {
		q, found := findQuote(data.To, currency)
		if !found {
			return nil, fmt.Errorf("rate not found for currency: %s", currency)
		}
		if q.Mid == nil {
			return nil, fmt.Errorf("mid missing for currency: %s", currency)
		}
		rates[currency] = *q.Mid
	}

	return rates, nil
}

func findQuote(quotes []quote, currency model.Currency) (quote, bool) {
	for _, q := range quotes {
		if q.QuoteCurrency == currency.String() {
			return q, true
		}
	}
	return quote{}, false
}

func escapeAll(codes []model.Currency) []model.Currency {
	escaped := make([]model.Currency, len(codes))
	for i, code := range codes {
		escaped[i] = model.Currency(url.QueryEscape(code.String()))
	}
	return escaped
}
