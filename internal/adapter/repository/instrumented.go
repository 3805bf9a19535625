package repository

import (
	"context"
	"time"

	"coin-price-service/internal/domain/ports"
	"coin-price-service/internal/metrics"
	"coin-price-service/pkg/logger"
)

// InstrumentedSource records call count, failures and latency of the
// wrapped source. Results and errors pass through untouched.
type InstrumentedSource struct {
	name    string
	source  ports.PriceSource
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewInstrumentedSource(name string, source ports.PriceSource, m *metrics.Metrics, log *logger.Logger) *InstrumentedSource {
	if log == nil {
		log = logger.Discard()
	}
	return &InstrumentedSource{
		name:    name,
		source:  source,
		metrics: m,
		log:     log,
	}
}

func (s *InstrumentedSource) GetPrice(ctx context.Context, ticker, currency string) (string, error) {
	start := time.Now()
	price, err := s.source.GetPrice(ctx, ticker, currency)
	elapsed := time.Since(start)

	s.metrics.UpstreamRequestsTotal.WithLabelValues(s.name).Inc()
	s.metrics.UpstreamRequestDuration.WithLabelValues(s.name).Observe(elapsed.Seconds())

	if err != nil {
		s.metrics.UpstreamErrorsTotal.WithLabelValues(s.name).Inc()
		s.log.Error("Failed to fetch price",
			"source", s.name,
			"ticker", ticker,
			"currency", currency,
			"duration", elapsed,
			"error", err,
		)
		return "", err
	}

	s.log.Debug("Fetched price",
		"source", s.name,
		"ticker", ticker,
		"currency", currency,
		"duration", elapsed,
	)
	return price, nil
}

var _ ports.PriceSource = (*InstrumentedSource)(nil)
