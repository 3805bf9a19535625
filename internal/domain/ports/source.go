package ports

import "context"

//go:generate mockgen -source=source.go -destination=../../mocks/source_mock.go -package=mocks

// PriceSource returns the current price of ticker expressed in currency.
// The price is an opaque string that callers replay verbatim.
type PriceSource interface {
	GetPrice(ctx context.Context, ticker, currency string) (string, error)
}
