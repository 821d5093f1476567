package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/knowledge"
	"github.com/verdanthealth/medguard/internal/logging"
	"github.com/verdanthealth/medguard/internal/rules"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server provides the HTTP API over the rule engine and the knowledge
// retriever.
type Server struct {
	echo        *echo.Echo
	engine      *rules.Engine
	retriever   *knowledge.Retriever
	logger      *logging.Logger
	config      *Config
	defaultTopK int
}

// NewServer creates a new HTTP server. The engine is required; the
// retriever may run degraded but must not be nil.
func NewServer(engine *rules.Engine, retriever *knowledge.Retriever, defaultTopK int, logger *logging.Logger, cfg *Config) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("rule engine cannot be nil")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8090,
		}
	}
	if defaultTopK <= 0 {
		defaultTopK = 3
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	metrics := NewHTTPMetrics(logger.Underlying())
	e.Use(metrics.MetricsMiddleware())

	s := &Server{
		echo:        e,
		engine:      engine,
		retriever:   retriever,
		logger:      logger,
		config:      cfg,
		defaultTopK: defaultTopK,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health and scrape endpoints
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/safety/checks", s.handleSafetyCheck)
	v1.POST("/knowledge/query", s.handleKnowledgeQuery)
}

// handleHealth reports overall status plus per-source detail. The
// process keeps serving with degraded sources; "degraded" here means
// some checks or queries cannot give full coverage, not that the
// service is down.
func (s *Server) handleHealth(c echo.Context) error {
	components := map[string]string{}
	status := "ok"

	for _, missing := range s.engine.Missing() {
		components[missing] = "degraded"
		status = "degraded"
	}
	if s.retriever.Degraded() {
		components["knowledge_base"] = "degraded"
		status = "degraded"
	} else {
		components["knowledge_base"] = "ok"
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:     status,
		Components: components,
	})
}

// handleSafetyCheck runs the full deterministic rule pass over one
// patient context.
func (s *Server) handleSafetyCheck(c echo.Context) error {
	var req SafetyCheckRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid safety check request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if len(req.Medications) == 0 && len(req.Allergies) == 0 && req.SymptomText == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one of medications, allergies, or symptom_text is required")
	}

	report := s.engine.RunAllChecks(c.Request().Context(), rules.Input{
		DrugNames:        req.Medications,
		PatientAllergies: req.Allergies,
		SymptomText:      req.SymptomText,
	})

	// Alerts is never null on the wire: an empty list means "no risk
	// found", and the degraded flag carries "could not fully check".
	return c.JSON(http.StatusOK, SafetyCheckResponse{
		Alerts:   report.Alerts,
		Degraded: report.Degraded,
		Missing:  report.Missing,
	})
}

// handleKnowledgeQuery retrieves the most relevant knowledge base
// chunks for a free-text clinical question.
func (s *Server) handleKnowledgeQuery(c echo.Context) error {
	var req KnowledgeQueryRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid knowledge query request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query field is required")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	result := s.retriever.Retrieve(c.Request().Context(), req.Query, topK)

	return c.JSON(http.StatusOK, KnowledgeQueryResponse{
		Context:  result,
		Degraded: result == knowledge.NoKnowledgeSentinel,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
