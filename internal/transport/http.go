package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quartzhollow/mcpgraph/internal/logging"
	"github.com/quartzhollow/mcpgraph/internal/rpc"
)

const serverVersion = "1.0.0"

// HTTPAdapter binds a TCP listener and exposes the MCP server's HTTP
// surface: /version, /tools/list, /tools/call, /metrics.
type HTTPAdapter struct {
	echo       *echo.Echo
	dispatcher *rpc.Dispatcher
	logger     *logging.Logger
}

// NewHTTPAdapter builds the adapter's echo instance and registers its
// routes. It does not start listening until Start is called.
func NewHTTPAdapter(dispatcher *rpc.Dispatcher, logger *logging.Logger) *HTTPAdapter {
	if logger == nil {
		logger = logging.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"*"},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
			)
			return err
		}
	})

	a := &HTTPAdapter{echo: e, dispatcher: dispatcher, logger: logger}
	a.registerRoutes()
	return a
}

func (a *HTTPAdapter) registerRoutes() {
	a.echo.GET("/version", a.handleVersion)
	a.echo.GET("/tools/list", a.handleToolsList)
	a.echo.POST("/tools/call", a.handleToolsCall)
	a.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (a *HTTPAdapter) handleVersion(c echo.Context) error {
	return c.String(http.StatusOK, serverVersion)
}

// handleToolsList synthesizes a tools/list request with id=1, calls
// the dispatcher, and unwraps result from the envelope for the
// response body rather than returning the envelope itself.
func (a *HTTPAdapter) handleToolsList(c echo.Context) error {
	req := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	raw := a.dispatcher.Handle(c.Request().Context(), req)

	var envelope rpc.Response
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("malformed dispatcher response: %v", err))
	}
	if envelope.Error != nil {
		return c.JSON(http.StatusInternalServerError, envelope.Error)
	}
	return c.JSON(http.StatusOK, envelope.Result)
}

// handleToolsCall forwards the request body verbatim to the
// dispatcher and, unlike /tools/list, returns the full JSON-RPC
// envelope as-is.
func (a *HTTPAdapter) handleToolsCall(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("read request body: %v", err))
	}

	raw := a.dispatcher.HandleBytes(c.Request().Context(), body)

	var envelope rpc.Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return c.String(http.StatusInternalServerError, fmt.Sprintf("malformed dispatcher response: %v", err))
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// Start binds addr and serves until the listener is closed or an
// unrecoverable error occurs.
func (a *HTTPAdapter) Start(addr string) error {
	a.logger.Info(context.Background(), "starting mcp server http transport", zap.String("addr", addr))
	return a.echo.Start(addr)
}

// Shutdown gracefully stops the listener.
func (a *HTTPAdapter) Shutdown(ctx context.Context) error {
	return a.echo.Shutdown(ctx)
}
