// Package server exposes a TaskRepository over HTTP with the JSON task
// contract the remote-store client speaks.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/domain"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
)

// DefaultBasePath is the route prefix the client expects.
const DefaultBasePath = "/api/Task"

const shutdownTimeout = 5 * time.Second

// Server serves tasks from a repository.
type Server struct {
	repo     repository.TaskRepository
	mapper   *domain.TaskMapper
	router   *gin.Engine
	basePath string
}

// New creates a server with routes mounted under basePath.
func New(repo repository.TaskRepository, basePath string) *Server {
	if basePath == "" {
		basePath = DefaultBasePath
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if logging.DebugEnabled() {
		router.Use(gin.LoggerWithWriter(logging.Output()))
	}

	s := &Server{
		repo:     repo,
		mapper:   domain.NewTaskMapper(),
		router:   router,
		basePath: basePath,
	}

	api := router.Group(basePath)
	{
		api.GET("", s.handleList)
		api.GET("/:id", s.handleGet)
		api.POST("", s.handleCreate)
		api.PUT("/:id", s.handleUpdate)
		api.DELETE("/:id", s.handleDelete)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Debugf("server: listening on %s%s\n", addr, s.basePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
