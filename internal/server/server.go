// Package server exposes a gateway.Gateway over HTTP (JSON, echo).
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/dedupe"
	"kanban-cli/internal/gateway"
)

// maxBodyBytes bounds request bodies; reorder bodies carry whole id sequences.
const maxBodyBytes = 1 << 20

type Options struct {
	// Owner is used when a request does not carry the owner header.
	Owner  string
	Dedupe dedupe.Store
	Logger *log.Logger
}

type Server struct {
	gw     gateway.Gateway
	opts   Options
	logger *log.Logger
	echo   *echo.Echo
}

func New(gw gateway.Gateway, opts Options) *Server {
	if opts.Dedupe == nil {
		opts.Dedupe = dedupe.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if strings.TrimSpace(opts.Owner) == "" {
		opts.Owner = "local"
	}
	s := &Server{gw: gw, opts: opts, logger: opts.Logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = s.handleError
	e.Use(s.accessLog, s.recoverer)

	e.GET("/healthz", s.healthz)

	api := e.Group("/api", s.limitBody, s.idempotency)
	api.GET("/boards", s.listBoards)
	api.POST("/boards", s.createBoard)
	api.GET("/boards/:boardId", s.loadBoard)
	api.PATCH("/boards/:boardId", s.renameBoard)
	api.DELETE("/boards/:boardId", s.deleteBoard)

	api.POST("/boards/:boardId/lists", s.createList)
	api.PUT("/boards/:boardId/lists/order", s.reorderLists)
	api.PATCH("/boards/:boardId/lists/:listId", s.renameList)
	api.DELETE("/boards/:boardId/lists/:listId", s.deleteList)

	api.POST("/boards/:boardId/cards", s.createCard)
	api.PUT("/boards/:boardId/cards/order", s.reorderCard)
	api.PATCH("/boards/:boardId/cards/:cardId", s.renameCard)
	api.DELETE("/boards/:boardId/cards/:cardId", s.deleteCard)

	s.echo = e
	return s
}

func (s *Server) Handler() http.Handler { return s.echo }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("kanban api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) owner(c echo.Context) string {
	if o := strings.TrimSpace(c.Request().Header.Get(gateway.HeaderOwner)); o != "" {
		return o
	}
	return s.opts.Owner
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleError renders every error as {error}. Failures are the server saying no (422);
// anything else is unexpected and its detail stays in the log.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := "An unexpected error occurred."
	var he *echo.HTTPError
	switch {
	case gateway.IsFailure(err):
		status = http.StatusUnprocessableEntity
		msg = gateway.Message(err)
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(he.Code)
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithFields(log.Fields{"method": c.Request().Method, "path": c.Path()}).WithError(err).Error("request failed")
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, gateway.Response[any]{Error: msg})
}

func (s *Server) recoverer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return next(c)
	}
}

func (s *Server) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		entry := s.logger.WithFields(log.Fields{
			"method":    c.Request().Method,
			"path":      c.Request().URL.Path,
			"status":    c.Response().Status,
			"elapsedMs": time.Since(start).Milliseconds(),
		})
		if c.Response().Status >= http.StatusInternalServerError {
			entry.Warn("request")
		} else {
			entry.Debug("request")
		}
		return nil
	}
}

func (s *Server) limitBody(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Body != nil {
			req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)
		}
		return next(c)
	}
}

// sonicSerializer plugs bytedance/sonic into echo's Bind and JSON helpers.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	var (
		b   []byte
		err error
	)
	if indent != "" {
		b, err = sonic.ConfigStd.MarshalIndent(i, "", indent)
	} else {
		b, err = sonic.ConfigStd.Marshal(i)
	}
	if err != nil {
		return err
	}
	_, err = c.Response().Write(b)
	return err
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	dec := sonic.ConfigStd.NewDecoder(c.Request().Body)
	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body.").SetInternal(err)
	}
	return nil
}
