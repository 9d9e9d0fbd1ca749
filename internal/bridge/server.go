package bridge

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quartzhollow/mcpgraph/internal/logging"
)

// Server is the bridge's plain-HTTP surface: /health, /tools,
// /tools/call, /openapi.json, /metrics.
type Server struct {
	echo    *echo.Echo
	client  *Client
	logger  *logging.Logger
	version string
}

// Config configures the bridge's HTTP server.
type Config struct {
	Version string
}

// NewServer builds the bridge's echo instance and registers its
// routes. client is the MCP server connection the bridge forwards to.
func NewServer(client *Client, logger *logging.Logger, cfg Config) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			logger.Info(c.Request().Context(), "bridge http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
			)
			return err
		}
	})

	s := &Server{echo: e, client: client, logger: logger, version: cfg.Version}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/tools", s.handleTools)
	s.echo.POST("/tools/call", s.handleToolsCall)
	s.echo.GET("/openapi.json", s.handleOpenAPI)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "healthy", Version: s.version})
}

type toolsResponse struct {
	Tools []ToolInfo `json:"tools"`
}

func (s *Server) handleTools(c echo.Context) error {
	tools, err := s.client.ListTools(c.Request().Context())
	if err != nil {
		s.logger.Error(c.Request().Context(), "bridge: fetch tool catalogue failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch tool catalogue from MCP server")
	}
	return c.JSON(http.StatusOK, toolsResponse{Tools: tools})
}

type toolsCallRequest struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// handleToolsCall always answers with HTTP 200 and a {success,
// content, error} body once the request itself parses and names a
// tool_name. A malformed request body or a missing tool_name gets a
// 400.
func (s *Server) handleToolsCall(c echo.Context) error {
	var req toolsCallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ToolName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tool_name is required")
	}

	result := s.client.CallTool(c.Request().Context(), req.ToolName, req.Arguments)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleOpenAPI(c echo.Context) error {
	return c.JSON(http.StatusOK, OpenAPIDocument())
}

// Start binds addr and serves until the listener closes.
func (s *Server) Start(addr string) error {
	s.logger.Info(context.Background(), "starting bridge http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
