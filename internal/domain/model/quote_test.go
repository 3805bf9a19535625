package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteKey_CaseSensitive(t *testing.T) {
	assert.Equal(t, NewQuoteKey("BTC", "USD"), NewQuoteKey("BTC", "USD"))
	assert.NotEqual(t, NewQuoteKey("BTC", "USD"), NewQuoteKey("btc", "USD"))
	assert.NotEqual(t, NewQuoteKey("BTC", "USD"), NewQuoteKey("BTC", "usd"))
	assert.Equal(t, "BTC-USD", NewQuoteKey("BTC", "USD").String())
}

func TestAllowList_Contains(t *testing.T) {
	list := AllowList{"BTC", "ETH"}

	assert.True(t, list.Contains("BTC"))
	assert.False(t, list.Contains("btc"))
	assert.False(t, list.Contains("DOGE"))
	assert.False(t, AllowList(nil).Contains("BTC"))
}

func TestPairs(t *testing.T) {
	pairs := Pairs(AllowList{"BTC", "ETH"}, AllowList{"USD", "EUR"})

	assert.Equal(t, []QuoteKey{
		{Ticker: "BTC", Currency: "USD"},
		{Ticker: "BTC", Currency: "EUR"},
		{Ticker: "ETH", Currency: "USD"},
		{Ticker: "ETH", Currency: "EUR"},
	}, pairs)
	assert.Empty(t, Pairs(nil, AllowList{"USD"}))
}
