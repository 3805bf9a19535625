package model

import "fmt"

// QuoteKey identifies one cached price. Both parts are compared as-is,
// so "btc" and "BTC" are different keys.
type QuoteKey struct {
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
}

func NewQuoteKey(ticker, currency string) QuoteKey {
	return QuoteKey{Ticker: ticker, Currency: currency}
}

func (k QuoteKey) String() string {
	return fmt.Sprintf("%s-%s", k.Ticker, k.Currency)
}
