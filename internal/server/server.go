// Package server exposes a filter over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/weiiwang01/bloomset/internal/bloom"
	"github.com/weiiwang01/bloomset/internal/loader"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

type insertResponse struct {
	Inserted int `json:"inserted"`
}

type queryResult struct {
	Key     string `json:"key"`
	Present bool   `json:"present"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
}

type Server struct {
	filter  *bloom.Locked
	limiter *rate.Limiter
	echo    *echo.Echo
}

// New returns a server answering for filter. Requests beyond the limiter's
// budget are rejected with 429.
func New(filter *bloom.Locked, limiter *rate.Limiter) *Server {
	s := &Server{
		filter:  filter,
		limiter: limiter,
		echo:    echo.New(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				slog.Warn("request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error.Error())
				return nil
			}
			slog.Debug("request served", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	s.echo.Use(s.limit)
	s.echo.POST("/keys", s.insert)
	s.echo.GET("/keys", s.query)
	s.echo.GET("/stats", s.stats)
	return s
}

func (s *Server) limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.limiter.Allow() {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
		return next(c)
	}
}

// insert adds every key of the request body, in the key file format.
func (s *Server) insert(c echo.Context) error {
	n, err := loader.Load(c.Request().Context(), s.filter, c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("failed to insert keys after %d: %s", n, err))
	}
	return c.JSON(http.StatusOK, insertResponse{Inserted: n})
}

// query looks up each "key" query parameter.
func (s *Server) query(c echo.Context) error {
	keys := c.QueryParams()["key"]
	if len(keys) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing key parameter")
	}
	resp := queryResponse{Results: make([]queryResult, 0, len(keys))}
	for _, raw := range keys {
		tok := loader.ParseToken(raw)
		resp.Results = append(resp.Results, queryResult{Key: tok.Raw, Present: s.filter.Query(tok.Key)})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.filter.Stats())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Listen opens a TCP listener on address with address reuse enabled.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return ln, nil
}

// Serve serves HTTP on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	slog.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("server shutting down", "addr", ln.Addr().String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	ln, err := Listen(ctx, address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
