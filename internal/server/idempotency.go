package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-cli/internal/gateway"
)

// idempotency answers a repeated Idempotency-Key with the first successful response
// instead of executing the request again. A failed request releases its key so the
// client may retry it.
func (s *Server) idempotency(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		key := strings.TrimSpace(req.Header.Get(gateway.HeaderIdempotencyKey))
		if key == "" || req.Method == http.MethodGet || req.Method == http.MethodHead {
			return next(c)
		}
		ctx := req.Context()
		scope := s.owner(c)
		fields := log.Fields{"key": key, "path": req.URL.Path}

		claimed, err := s.opts.Dedupe.Claim(ctx, scope, key)
		if err != nil {
			// Without the store we cannot tell duplicates apart; serve the request.
			s.logger.WithFields(fields).WithError(err).Warn("idempotency store unavailable")
			return next(c)
		}
		if !claimed {
			body, done, err := s.opts.Dedupe.Lookup(ctx, scope, key)
			if err != nil {
				return err
			}
			if !done {
				return echo.NewHTTPError(http.StatusConflict, "Request already in progress.")
			}
			s.logger.WithFields(fields).Debug("replaying response")
			c.Response().Header().Set(gateway.HeaderReplayed, "true")
			return c.JSONBlob(http.StatusOK, body)
		}

		res := c.Response()
		rec := &recorder{ResponseWriter: res.Writer}
		res.Writer = rec
		err = next(c)
		res.Writer = rec.ResponseWriter

		if err == nil && res.Status >= 200 && res.Status < 300 {
			if cerr := s.opts.Dedupe.Complete(ctx, scope, key, rec.buf.Bytes()); cerr != nil {
				s.logger.WithFields(fields).WithError(cerr).Warn("storing idempotent response")
			}
			return nil
		}
		if rerr := s.opts.Dedupe.Release(ctx, scope, key); rerr != nil {
			s.logger.WithFields(fields).WithError(rerr).Warn("releasing idempotency key")
		}
		return err
	}
}

type recorder struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}
