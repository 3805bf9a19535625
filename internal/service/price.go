package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"coin-price-service/internal/domain/model"
	"coin-price-service/internal/domain/ports"
	"coin-price-service/pkg/logger"
)

var (
	ErrTickerNotAllowed   = errors.New("ticker not allowed")
	ErrCurrencyNotAllowed = errors.New("currency not allowed")
	ErrExternalAPIFailure = errors.New("external API failure")
)

const (
	DefaultCurrency          = "USD"
	defaultWarmUpConcurrency = 4
)

type Settings struct {
	AllowedTickers    []string
	AllowedCurrencies []string
	DefaultCurrency   string
	WarmUpConcurrency int
}

// PriceService validates requests against the allow-lists and resolves
// prices through source, which is normally the cached vendor chain.
type PriceService struct {
	source            ports.PriceSource
	tickers           model.AllowList
	currencies        model.AllowList
	defaultCurrency   string
	warmUpConcurrency int
	log               *logger.Logger
}

func NewPriceService(source ports.PriceSource, settings Settings, log *logger.Logger) *PriceService {
	if settings.DefaultCurrency == "" {
		settings.DefaultCurrency = DefaultCurrency
	}
	if settings.WarmUpConcurrency <= 0 {
		settings.WarmUpConcurrency = defaultWarmUpConcurrency
	}

	return &PriceService{
		source:            source,
		tickers:           model.AllowList(settings.AllowedTickers),
		currencies:        model.AllowList(settings.AllowedCurrencies),
		defaultCurrency:   settings.DefaultCurrency,
		warmUpConcurrency: settings.WarmUpConcurrency,
		log:               log,
	}
}

// DefaultCurrency is the currency used when a request omits one.
func (s *PriceService) DefaultCurrency() string {
	return s.defaultCurrency
}

// GetPrice returns the price of ticker in currency. Both are checked against
// the allow-lists as given; an empty currency is rejected like any other.
func (s *PriceService) GetPrice(ctx context.Context, ticker, currency string) (string, error) {
	if !s.tickers.Contains(ticker) {
		return "", ErrTickerNotAllowed
	}
	if !s.currencies.Contains(currency) {
		return "", ErrCurrencyNotAllowed
	}

	price, err := s.source.GetPrice(ctx, ticker, currency)
	if err != nil {
		s.log.Error("Failed to get price", "error", err, "ticker", ticker, "currency", currency)
		return "", fmt.Errorf("%w: %w", ErrExternalAPIFailure, err)
	}

	return price, nil
}

// WarmUp looks up every allowed ticker/currency pair so the first real
// requests hit the cache. Individual failures are logged and joined; they
// do not stop the other lookups.
func (s *PriceService) WarmUp(ctx context.Context) error {
	pairs := model.Pairs(s.tickers, s.currencies)
	if len(pairs) == 0 {
		return nil
	}

	s.log.Info("Warming up prices", "pairs", len(pairs))

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(s.warmUpConcurrency)

	for _, pair := range pairs {
		if ctx.Err() != nil {
			break
		}

		pair := pair
		g.Go(func() error {
			if _, err := s.source.GetPrice(ctx, pair.Ticker, pair.Currency); err != nil {
				s.log.Warn("Failed to warm up price", "pair", pair, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", pair, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	s.log.Info("Finished warming up prices", "pairs", len(pairs), "failed", len(errs))
	return errors.Join(errs...)
}

var _ ports.PriceService = (*PriceService)(nil)
