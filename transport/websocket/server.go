package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/oxalis-games/tictactoe/internal/session"
)

type sessionManager interface {
	Attach(ctx context.Context, id string) (*session.Session, error)
	Release(id string)
}

// Server is the socket surface the presentation layer plays through. A
// client connects to /ws, optionally with ?session=<id> to resume, and from
// then on receives a state push for every transition while sending
// {action, payload} requests.
type Server struct {
	logger   *slog.Logger
	games    sessionManager
	upgrader websocket.Upgrader
	validate *validator.Validate
}

func New(logger *slog.Logger, games sessionManager) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.HandleConnection)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
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

// HandleConnection upgrades the request and runs the connection until the
// client leaves. Exported so tests can mount it on a test server.
func (that *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "HandleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sess, err := that.games.Attach(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		log.Error("failed to attach session", "error", err)
		conn.Close()

		return
	}

	log.Info("client attached", "session", sess.ID())

	client := newClient(that.logger, conn, sess, that.validate)
	client.run()

	that.games.Release(sess.ID())

	log.Info("client detached", "session", sess.ID())
}
