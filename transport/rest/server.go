package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oxalis-games/tictactoe/internal/entity"
)

type stateReader interface {
	State(ctx context.Context, id string) (entity.SessionState, error)
}

// Server is the read-only HTTP surface: a health probe and session snapshot
// reads for the initial page load. Gameplay goes through the socket.
type Server struct {
	logger *slog.Logger
	games  stateReader
}

func New(logger *slog.Logger, games stateReader) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

// Engine builds the gin engine with all routes mounted.
func (that *Server) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/ping", that.handlePing)
	engine.GET("/api/sessions/:id", that.handleSessionState)

	return engine
}

// Start - starts the HTTP server and blocks until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Engine(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
