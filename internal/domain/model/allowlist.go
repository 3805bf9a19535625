package model

import "slices"

// AllowList is an ordered set of accepted tickers or currencies.
type AllowList []string

func (a AllowList) Contains(value string) bool {
	return slices.Contains(a, value)
}

// Pairs returns every ticker/currency combination of the two lists.
func Pairs(tickers, currencies AllowList) []QuoteKey {
	pairs := make([]QuoteKey, 0, len(tickers)*len(currencies))
	for _, ticker := range tickers {
		for _, currency := range currencies {
			pairs = append(pairs, NewQuoteKey(ticker, currency))
		}
	}
	return pairs
}
