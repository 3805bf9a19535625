package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"coin-price-service/internal/domain/ports"
	"coin-price-service/pkg/logger"
)

const (
	DefaultCoinMarketCapURL = "https://pro-api.coinmarketcap.com"

	quotesLatestPath = "/v2/cryptocurrency/quotes/latest"
	apiKeyHeader     = "X-CMC_PRO_API_KEY"
)

var (
	ErrPriceNotFound    = errors.New("price not found")
	ErrDuplicatedTicker = errors.New("maybe duplicated ticker")
	ErrUpstreamStatus   = errors.New("upstream returned non-OK status")
)

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CoinMarketCap fetches latest quotes from the CoinMarketCap pro API.
type CoinMarketCap struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	log        *logger.Logger
}

type CoinMarketCapOption func(*CoinMarketCap)

func WithBaseURL(baseURL string) CoinMarketCapOption {
	return func(c *CoinMarketCap) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient HTTPClient) CoinMarketCapOption {
	return func(c *CoinMarketCap) {
		c.httpClient = httpClient
	}
}

type quotesResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]json.RawMessage `json:"data"`
}

type coinQuotes struct {
	Quote map[string]struct {
		Price json.RawMessage `json:"price"`
	} `json:"quote"`
}

func NewCoinMarketCap(apiKey string, timeout time.Duration, log *logger.Logger, opts ...CoinMarketCapOption) *CoinMarketCap {
	if log == nil {
		log = logger.Discard()
	}

	c := &CoinMarketCap{
		baseURL: DefaultCoinMarketCapURL,
		apiKey:  apiKey,
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

func (c *CoinMarketCap) Name() string { return "coinmarketcap" }

func (c *CoinMarketCap) GetPrice(ctx context.Context, ticker, currency string) (string, error) {
	query := url.Values{}
	query.Set("symbol", ticker)
	query.Set("convert", currency)
	endpoint := c.baseURL + quotesLatestPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("request error: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("response error: %w", err)
	}

	var apiResp quotesResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("JSON parse error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("CoinMarketCap returned non-OK status",
			"status", resp.StatusCode,
			"error_code", apiResp.Status.ErrorCode,
			"ticker", ticker,
			"currency", currency,
		)
		if apiResp.Status.ErrorMessage != "" {
			return "", fmt.Errorf("%w %d: %s", ErrUpstreamStatus, resp.StatusCode, apiResp.Status.ErrorMessage)
		}
		return "", fmt.Errorf("%w %d", ErrUpstreamStatus, resp.StatusCode)
	}

	return extractPrice(apiResp, ticker, currency)
}

func extractPrice(apiResp quotesResponse, ticker, currency string) (string, error) {
	raw, ok := apiResp.Data[ticker]
	if !ok {
		return "", ErrPriceNotFound
	}

	var coins []coinQuotes
	if err := json.Unmarshal(raw, &coins); err != nil {
		return "", ErrPriceNotFound
	}
	if len(coins) > 1 {
		return "", ErrDuplicatedTicker
	}
	if len(coins) == 0 {
		return "", ErrPriceNotFound
	}

	quote, ok := coins[0].Quote[currency]
	if !ok {
		return "", ErrPriceNotFound
	}

	// Only a bare JSON number counts; strings and null do not.
	priceRaw := bytes.TrimSpace(quote.Price)
	if len(priceRaw) == 0 || priceRaw[0] == '"' || bytes.Equal(priceRaw, []byte("null")) {
		return "", ErrPriceNotFound
	}

	price, err := decimal.NewFromString(string(priceRaw))
	if err != nil {
		return "", ErrPriceNotFound
	}

	return price.String(), nil
}

var _ ports.PriceSource = (*CoinMarketCap)(nil)
