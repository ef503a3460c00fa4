// Package http serves the client use cases as a small local web front end.
package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xcro3dile/docqa-go/internal/adapters/notify"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
)

//go:embed templates/*
var templatesFS embed.FS

// Deps are the use cases the server exposes.
type Deps struct {
	Conversation *usecases.Conversation
	PDFs         *usecases.PDFCollections
	Chats        *usecases.ChatCollections
	Database     *usecases.DatabaseBrowser
	Preview      *usecases.Preview
	System       *usecases.System

	// Inspector validates uploaded PDFs. Optional.
	Inspector ports.PDFInspector

	// Notices collects the notifications raised by the use cases.
	Notices *notify.Recorder

	// Gatherer backs /metrics. Defaults to the global registry.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// Server is the local web front end.
type Server struct {
	deps   Deps
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

type templateRenderer struct {
	templates *template.Template
}

func (r *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// NewServer builds the echo instance and registers every route.
func NewServer(deps Deps, addr string) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Notices == nil {
		deps.Notices = notify.NewRecorder(0)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &templateRenderer{templates: tmpl}
	e.Use(middleware.Recover())
	e.Use(requestLogger(deps.Logger))

	s := &Server{deps: deps, echo: e, addr: addr, logger: deps.Logger}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo

	// UI
	e.GET("/", s.handleIndex)
	e.POST("/ask", s.handleAskForm)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/models", s.handleModels)
	api.PUT("/selection", s.handleSelect)
	api.PUT("/sources", s.handleSources)

	api.POST("/ask", s.handleAsk)
	api.GET("/messages", s.handleMessages)
	api.DELETE("/messages", s.handleReset)

	api.GET("/pdf/collections", s.handleListPDFs)
	api.POST("/pdf/collections", s.handleUploadPDFs)
	api.DELETE("/pdf/collections/:id", s.handleDeletePDFs)
	api.GET("/pdf/collections/:id/files/:name", s.handleDownloadPDF)

	api.GET("/chat/collections", s.handleListChats)
	api.POST("/chat/collections", s.handleUploadChat)
	api.DELETE("/chat/collections/:id", s.handleDeleteChat)

	api.GET("/db/tables", s.handleTables)

	api.POST("/preview", s.handleOpenPreview)
	api.GET("/preview", s.handlePreview)
	api.DELETE("/preview", s.handleClosePreview)
	api.GET("/preview/text", s.handlePreviewText)
	api.POST("/preview/:action", s.handlePreviewAction)

	api.GET("/notifications", s.handleNotifications)
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.echo.Server.ReadTimeout = 15 * time.Second
	s.echo.Server.WriteTimeout = 5 * time.Minute // questions can take long

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown", "error", err)
		}
	}()

	s.logger.Info("docqa web front end starting", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving on %s: %w", s.addr, err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "duration", v.Latency}
			if v.Error != nil {
				logger.Warn("request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	})
}
