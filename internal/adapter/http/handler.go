package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coin-price-service/internal/domain/ports"
	"coin-price-service/internal/metrics"
	"coin-price-service/internal/service"
	"coin-price-service/pkg/logger"
)

const plainText = "text/plain; charset=utf-8"

type Handler struct {
	service ports.PriceService
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(service ports.PriceService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		log:     log,
		metrics: metrics,
	}
}

// GetCoinPriceHandler serves GET /coins/:ticker/price?currency=XXX.
// A missing currency query falls back to the service default; an empty one
// is passed through and rejected.
func (h *Handler) GetCoinPriceHandler(c *gin.Context) {
	h.metrics.PriceRequestsTotal.Inc()

	ticker := c.Param("ticker")
	currency, ok := c.GetQuery("currency")
	if !ok {
		currency = h.service.DefaultCurrency()
	}

	price, err := h.service.GetPrice(c.Request.Context(), ticker, currency)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, plainText, []byte(price))
}

func (h *Handler) HealthHandler(c *gin.Context) {
	c.Data(http.StatusOK, plainText, []byte("OK"))
}

func (h *Handler) sendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.Data(statusCode, plainText, []byte(message))
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	switch {
	case errors.Is(err, service.ErrTickerNotAllowed):
		statusCode = http.StatusBadRequest
		errorMessage = "Ticker not allowed"
	case errors.Is(err, service.ErrCurrencyNotAllowed):
		statusCode = http.StatusBadRequest
		errorMessage = "Currency not allowed"
	case errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusGatewayTimeout
		errorMessage = "upstream timeout"
	case errors.Is(err, service.ErrExternalAPIFailure):
		statusCode = http.StatusBadGateway
		errorMessage = err.Error()
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode, "request_id", requestID(c))
	h.sendErrorResponse(c, statusCode, errorMessage)
}
