package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-price-service/pkg/logger"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, <-chan *http.Request) {
	t.Helper()

	requests := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case requests <- r.Clone(context.Background()):
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, requests
}

func newTestClient(baseURL string) *CoinMarketCap {
	return NewCoinMarketCap("secret-key", 5*time.Second, logger.Discard(), WithBaseURL(baseURL))
}

func TestCoinMarketCap_GetPrice(t *testing.T) {
	testCases := []struct {
		name          string
		status        int
		body          string
		ticker        string
		currency      string
		expectedPrice string
		expectedError error
		errorContains string
	}{
		{
			name:          "Success",
			status:        http.StatusOK,
			body:          `{"data":{"BTC":[{"symbol":"BTC","quote":{"USD":{"price":64250.123456789}}}]}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedPrice: "64250.123456789",
		},
		{
			name:          "Success - Trailing Zeros Trimmed",
			status:        http.StatusOK,
			body:          `{"data":{"ETH":[{"quote":{"EUR":{"price":100.0}}}]}}`,
			ticker:        "ETH",
			currency:      "EUR",
			expectedPrice: "100",
		},
		{
			name:          "Success - Exponent Notation",
			status:        http.StatusOK,
			body:          `{"data":{"SHIB":[{"quote":{"USD":{"price":1.5e-5}}}]}}`,
			ticker:        "SHIB",
			currency:      "USD",
			expectedPrice: "0.000015",
		},
		{
			name:          "Error - Duplicated Ticker",
			status:        http.StatusOK,
			body:          `{"data":{"BTC":[{"quote":{"USD":{"price":1}}},{"quote":{"USD":{"price":2}}}]}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrDuplicatedTicker,
		},
		{
			name:          "Error - Ticker Missing",
			status:        http.StatusOK,
			body:          `{"data":{}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrPriceNotFound,
		},
		{
			name:          "Error - Empty Coin List",
			status:        http.StatusOK,
			body:          `{"data":{"BTC":[]}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrPriceNotFound,
		},
		{
			name:          "Error - Currency Missing",
			status:        http.StatusOK,
			body:          `{"data":{"BTC":[{"quote":{"EUR":{"price":1}}}]}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrPriceNotFound,
		},
		{
			name:          "Error - Price Is Null",
			status:        http.StatusOK,
			body:          `{"data":{"BTC":[{"quote":{"USD":{"price":null}}}]}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrPriceNotFound,
		},
		{
			name:          "Error - Price Is String",
			status:        http.StatusOK,
			body:          `{"data":{"BTC":[{"quote":{"USD":{"price":"12"}}}]}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrPriceNotFound,
		},
		{
			name:          "Error - Ticker Case Differs",
			status:        http.StatusOK,
			body:          `{"data":{"BTC":[{"quote":{"USD":{"price":1}}}]}}`,
			ticker:        "btc",
			currency:      "USD",
			expectedError: ErrPriceNotFound,
		},
		{
			name:          "Error - Invalid JSON",
			status:        http.StatusOK,
			body:          `not json`,
			ticker:        "BTC",
			currency:      "USD",
			errorContains: "JSON parse error",
		},
		{
			name:          "Error - Upstream Status With Message",
			status:        http.StatusUnauthorized,
			body:          `{"status":{"error_code":1001,"error_message":"This API Key is invalid."}}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrUpstreamStatus,
			errorContains: "This API Key is invalid.",
		},
		{
			name:          "Error - Upstream Status Without Message",
			status:        http.StatusInternalServerError,
			body:          `{}`,
			ticker:        "BTC",
			currency:      "USD",
			expectedError: ErrUpstreamStatus,
			errorContains: "500",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tc.status, tc.body)
			client := newTestClient(srv.URL)

			price, err := client.GetPrice(context.Background(), tc.ticker, tc.currency)

			if tc.expectedError == nil && tc.errorContains == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedPrice, price)
				return
			}

			require.Error(t, err)
			assert.Empty(t, price)
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
			}
			if tc.errorContains != "" {
				assert.Contains(t, err.Error(), tc.errorContains)
			}
		})
	}
}

func TestCoinMarketCap_BuildsRequest(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{"data":{"BTC":[{"quote":{"USD":{"price":1}}}]}}`)
	client := newTestClient(srv.URL)

	_, err := client.GetPrice(context.Background(), "BTC", "USD")
	require.NoError(t, err)

	captured := <-requests

	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/v2/cryptocurrency/quotes/latest", captured.URL.Path)
	assert.Equal(t, "BTC", captured.URL.Query().Get("symbol"))
	assert.Equal(t, "USD", captured.URL.Query().Get("convert"))
	assert.Equal(t, "secret-key", captured.Header.Get("X-CMC_PRO_API_KEY"))
}

type failingHTTPClient struct{ err error }

func (f failingHTTPClient) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestCoinMarketCap_TransportError(t *testing.T) {
	transportErr := errors.New("connection refused")
	client := NewCoinMarketCap("key", time.Second, logger.Discard(),
		WithBaseURL("http://example.invalid"),
		WithHTTPClient(failingHTTPClient{err: transportErr}),
	)

	_, err := client.GetPrice(context.Background(), "BTC", "USD")

	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.Contains(t, err.Error(), "request error")
}

func TestCoinMarketCap_ContextCanceled(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	client := newTestClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPrice(ctx, "BTC", "USD")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCoinMarketCap_DefaultBaseURL(t *testing.T) {
	client := NewCoinMarketCap("key", time.Second, nil, WithBaseURL(""))

	assert.Equal(t, DefaultCoinMarketCapURL, client.baseURL)
	assert.Equal(t, "coinmarketcap", client.Name())
}
