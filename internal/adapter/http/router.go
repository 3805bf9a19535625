package http

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coin-price-service/internal/metrics"
	"coin-price-service/pkg/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type RouterConfig struct {
	// BasePath is where the price API is mounted, e.g. "/api".
	BasePath       string
	AllowedOrigins []string
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

type Router struct {
	handler *Handler
	log     *logger.Logger
	metrics *metrics.Metrics
	cfg     RouterConfig
}

func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics, cfg RouterConfig) *Router {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		handler: handler,
		log:     log,
		metrics: metrics,
		cfg:     cfg,
	}
}

func (r *Router) SetupRoutes() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(r.corsConfig()))
	engine.Use(requestIDMiddleware)
	engine.Use(r.loggingMiddleware)

	api := engine.Group(r.cfg.BasePath)
	api.GET("/coins/:ticker/price", r.handler.GetCoinPriceHandler)

	engine.GET("/health", r.handler.HealthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.cfg.Gatherer, promhttp.HandlerOpts{})))

	return engine
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(r.cfg.AllowedOrigins) == 0 || slices.Contains(r.cfg.AllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.cfg.AllowedOrigins
	}
	return cfg
}

func requestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (r *Router) loggingMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	duration := time.Since(start)
	status := c.Writer.Status()

	if c.Request.URL.Path != "/metrics" {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.metrics.HTTPRequestDuration.WithLabelValues(path, c.Request.Method).Observe(duration.Seconds())
		r.metrics.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(status/100)+"xx").Inc()
	}

	r.log.Info("HTTP request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"status", status,
		"duration", duration,
		"remote_addr", c.ClientIP(),
		"user_agent", c.Request.UserAgent(),
		"request_id", requestID(c),
	)
}
