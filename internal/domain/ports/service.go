package ports

import "context"

//go:generate mockgen -source=service.go -destination=../../mocks/service_mock.go -package=mocks

type PriceService interface {
	GetPrice(ctx context.Context, ticker, currency string) (string, error)
	DefaultCurrency() string
	WarmUp(ctx context.Context) error
}
