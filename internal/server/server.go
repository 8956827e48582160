// Package server is the development circle service: the REST collection
// and the avatar upload endpoint the admin client talks to.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/circles/internal/store"
)

// Options configures the router.
type Options struct {
	UploadDir   string
	JWTSecret   []byte
	MaxUploadMB int
}

type Server struct {
	store store.Store
	opt   Options
	log   *zap.Logger
}

func New(st store.Store, opt Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.MaxUploadMB <= 0 {
		opt.MaxUploadMB = 10
	}
	return &Server{store: st, opt: opt, log: log}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.opt.UploadDir != "" {
		r.Static("/uploads", s.opt.UploadDir)
	}

	authed := r.Group("")
	if len(s.opt.JWTSecret) > 0 {
		authed.Use(AuthMiddleware(s.opt.JWTSecret))
	}
	{
		circles := authed.Group("/api/circles")
		circles.GET("", s.listCircles)
		circles.GET("/:id", s.getCircle)
		circles.POST("", s.createCircle)
		circles.PUT("/:id", s.updateCircle)
		circles.DELETE("", s.removeCircles)

		authed.POST("/upload.do", s.uploadAvatar)
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("circle service listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	s.log.Info("circle service stopped")
	return err
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
