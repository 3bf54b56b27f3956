// Package server is the thin HTTP edge: it maps routes onto the takes
// service and service errors onto HTTP statuses. No business logic lives
// here.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Hoossayn/hottakes-backend/internal/app"
	"github.com/Hoossayn/hottakes-backend/internal/config"
	svcErr "github.com/Hoossayn/hottakes-backend/internal/errors"
	"github.com/Hoossayn/hottakes-backend/internal/service/takes"
)

type Server struct {
	echo   *echo.Echo
	appCtx *app.AppContext
	svc    *takes.Service
}

// New wires the takes service into an echo instance.
func New(cfg *config.Config, appCtx *app.AppContext) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		appCtx: appCtx,
		svc:    takes.NewService(appCtx, cfg.App.BaseURL),
	}
	e.HTTPErrorHandler = s.handleError
	s.registerRoutes()
	return s
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/healthz", s.handleHealth)

	e.POST("/hottakes", s.handleCreateTake)
	e.POST("/hottakes/post", s.handlePostTake)
	e.POST("/hottakes/bulk", s.handleCreateMany)
	e.GET("/hottakes/:id", s.handleGetTake)
	e.DELETE("/hottakes/:id", s.handleDeleteTake)
	e.POST("/hottakes/:id/react", s.handleReact)

	e.GET("/feed/:username", s.handlePublicFeed)
	e.GET("/users/:username/hottakes", s.handleInbound)
	e.GET("/users/:username/hottakes/mine", s.handleMine)
	e.GET("/users/:username/hottakes/reacted", s.handlePreviouslyReacted)
	e.GET("/users/:username/hottakes/count", s.handleReceivedCount)
	e.GET("/users/:username/stats", s.handleStats)
}

// handleError funnels every error through the service taxonomy so transport
// status codes stay consistent with it.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	httpStatus := http.StatusInternalServerError
	message := err.Error()

	if errors.As(err, &httpErr) {
		httpStatus = httpErr.Code
		message = http.StatusText(httpStatus)
		if m, isString := httpErr.Message.(string); isString {
			message = m
		}
	} else {
		if st, ok := status.FromError(err); ok {
			message = st.Message()
		}
		switch svcErr.Code(err) {
		case codes.NotFound:
			httpStatus = http.StatusNotFound
		case codes.InvalidArgument:
			httpStatus = http.StatusBadRequest
		case codes.AlreadyExists:
			httpStatus = http.StatusConflict
		case codes.DeadlineExceeded:
			httpStatus = http.StatusGatewayTimeout
		case codes.Canceled:
			httpStatus = http.StatusRequestTimeout
		}
	}

	if httpStatus >= http.StatusInternalServerError {
		s.appCtx.Logger.Error("request failed", "path", c.Path(), "err", err)
	}

	_ = c.JSON(httpStatus, map[string]any{
		"success": false,
		"message": message,
	})
}
