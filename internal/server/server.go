// Package server exposes the resolver over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/famomatic/ytresolve/client"
)

const (
	msgNoVideoID      = "The 'video_id' parameter wasn't sent!"
	msgBadVideoID     = "Wrong 'video_id' value!"
	msgBadBody        = "Unable to parse body"
	msgNoCookie       = "No cookie sent"
	msgCookiesSet     = "Default cookies accepted"
	msgCookiesCleared = "Default cookies cleared"
	msgWrongRequest   = "Wrong request!"
	msgHelp           = "Wrong request! To use this server, send 'GET /api/get_video_info?video_id=<id>'"
)

// Backend is what the HTTP layer needs from a resolver client.
type Backend interface {
	Resolve(ctx context.Context, input string, opts client.ResolveOptions) (*client.Result, error)
	Clients() []client.ClientListing
	SetDefaultCookies(list []client.Cookie)
	ClearDefaultCookies()
}

type Server struct {
	backend Backend
	router  *gin.Engine
	logger  *slog.Logger
}

func New(backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{backend: backend, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), gzip.Gzip(gzip.DefaultCompression))

	api := router.Group("/api")
	api.GET("/get_video_info", s.getVideoInfo)
	api.POST("/get_video_info", s.postVideoInfo)
	api.GET("/get_yt_client_list", s.clientList)
	api.PUT("/default_cookies", s.putDefaultCookies)
	api.DELETE("/default_cookies", s.deleteDefaultCookies)
	router.NoRoute(s.wrongRequest)

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

type videoInfoBody struct {
	VideoID       string          `json:"video_id"`
	APIClientName string          `json:"api_client_name"`
	RequestedData string          `json:"requested_data"`
	Cookies       []client.Cookie `json:"cookies"`
}

type cookiesBody struct {
	Cookies []client.Cookie `json:"cookies"`
}

func (s *Server) getVideoInfo(c *gin.Context) {
	s.resolve(c, videoInfoBody{
		VideoID:       c.Query("video_id"),
		APIClientName: c.Query("api_client_name"),
		RequestedData: c.Query("requested_data"),
	})
}

func (s *Server) postVideoInfo(c *gin.Context) {
	var body videoInfoBody
	if !readJSON(c, &body) {
		return
	}
	s.resolve(c, body)
}

func (s *Server) resolve(c *gin.Context, body videoInfoBody) {
	if body.VideoID == "" {
		c.String(http.StatusBadRequest, msgNoVideoID)
		return
	}
	if body.APIClientName == "" {
		body.APIClientName = "auto"
	}
	if body.RequestedData == "" {
		body.RequestedData = "all"
	}

	res, err := s.backend.Resolve(c.Request.Context(), body.VideoID, client.ResolveOptions{
		ClientID:      body.APIClientName,
		RequestedData: body.RequestedData,
		Cookies:       body.Cookies,
	})
	switch {
	case errors.Is(err, client.ErrInvalidInput):
		c.String(http.StatusBadRequest, msgBadVideoID)
		return
	case res == nil || res.Answer == nil:
		if err == nil {
			err = errors.New("empty result")
		}
		s.logger.Error("resolution failed", "video_id", body.VideoID, "error", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.PureJSON(statusFor(res.Answer.ErrorCode), res.Answer)
}

func (s *Server) clientList(c *gin.Context) {
	c.PureJSON(http.StatusOK, s.backend.Clients())
}

func (s *Server) putDefaultCookies(c *gin.Context) {
	var body cookiesBody
	if !readJSON(c, &body) {
		return
	}
	if len(body.Cookies) == 0 {
		c.String(http.StatusBadRequest, msgNoCookie)
		return
	}
	s.backend.SetDefaultCookies(body.Cookies)
	c.String(http.StatusOK, msgCookiesSet)
}

func (s *Server) deleteDefaultCookies(c *gin.Context) {
	s.backend.ClearDefaultCookies()
	c.String(http.StatusOK, msgCookiesCleared)
}

func (s *Server) wrongRequest(c *gin.Context) {
	s.logger.Warn("request rejected", "method", c.Request.Method, "path", c.Request.URL.Path)
	if c.Request.URL.Path == "/" {
		c.String(http.StatusBadRequest, msgHelp)
		return
	}
	c.String(http.StatusBadRequest, msgWrongRequest)
}

func readJSON(c *gin.Context, out any) bool {
	raw, err := io.ReadAll(c.Request.Body)
	if err == nil {
		err = json.Unmarshal(raw, out)
	}
	if err != nil {
		c.String(http.StatusInternalServerError, msgBadBody)
		return false
	}
	return true
}

// statusFor maps an answer error code to an HTTP status.
func statusFor(code int) int {
	if code < 100 {
		return http.StatusInternalServerError
	}
	return code
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client", c.ClientIP(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	}
}
