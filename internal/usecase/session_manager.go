package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oxalis-games/tictactoe/internal/apperror"
	"github.com/oxalis-games/tictactoe/internal/entity"
	"github.com/oxalis-games/tictactoe/internal/session"
)

const persistTimeout = 5 * time.Second

type sessionRepo interface {
	Save(ctx context.Context, state entity.SessionState) error
	GetByID(ctx context.Context, id string) (entity.SessionState, error)
}

type liveSession struct {
	sess        *session.Session
	refs        int
	unsubscribe func()
}

// SessionManager owns the sessions currently being played. A session lives
// in memory while at least one client is attached; every state change is
// written through to the repository, so after a restart or an eviction the
// session is rebuilt from its stored snapshot until the TTL runs out.
type SessionManager struct {
	logger    *slog.Logger
	repo      sessionRepo
	scheduler session.Scheduler
	defaults  session.Config

	mu   sync.Mutex
	live map[string]*liveSession
}

func NewSessionManager(logger *slog.Logger, repo sessionRepo, scheduler session.Scheduler, defaults session.Config) *SessionManager {
	return &SessionManager{
		logger: logger.With("component", "session_manager"),

		repo:      repo,
		scheduler: scheduler,
		defaults:  defaults,
		live:      make(map[string]*liveSession),
	}
}

// Attach returns the session a client joins. An empty or unknown id starts a
// fresh game under a new id; a known id returns the live session or rebuilds
// it from the stored snapshot. Every successful Attach must be paired with a
// Release for the session id when the client disconnects.
func (that *SessionManager) Attach(ctx context.Context, id string) (*session.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if entry, ok := that.live[id]; ok {
		entry.refs++
		return entry.sess, nil
	}

	if id != "" {
		state, err := that.repo.GetByID(ctx, id)
		if err == nil {
			return that.hydrateLocked(id, state)
		}

		if !errors.Is(err, apperror.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session %s: %w", id, err)
		}
		// The snapshot expired or never existed, so the stale id is dead.
		// The client gets a fresh game under a new id instead.
	}

	return that.createLocked(ctx)
}

// Release drops one client's claim on a live session. When the last client
// leaves, the manager stops watching the session and lets the stored
// snapshot carry it until the TTL expires.
func (that *SessionManager) Release(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.live[id]
	if !ok {
		return
	}

	entry.refs--
	if entry.refs > 0 {
		return
	}

	entry.unsubscribe()
	delete(that.live, id)
}

// State returns the current snapshot for id without attaching to it: live
// sessions answer from memory, evicted ones from storage.
func (that *SessionManager) State(ctx context.Context, id string) (entity.SessionState, error) {
	if id == "" {
		return entity.SessionState{}, apperror.ErrSessionIDMissing
	}

	that.mu.Lock()
	entry, ok := that.live[id]
	that.mu.Unlock()

	if ok {
		return entry.sess.Snapshot(), nil
	}

	state, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return entity.SessionState{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	return state, nil
}

func (that *SessionManager) createLocked(ctx context.Context) (*session.Session, error) {
	id := uuid.NewString()
	sess := session.New(id, nil, that.scheduler, that.defaults)

	if err := that.repo.Save(ctx, sess.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist new session: %w", err)
	}

	that.registerLocked(sess)

	return sess, nil
}

func (that *SessionManager) hydrateLocked(id string, state entity.SessionState) (*session.Session, error) {
	cfg := session.Config{
		Mode:         state.Mode,
		ComputerMark: state.ComputerMark,
		MoveDelay:    that.defaults.MoveDelay,
	}

	sess := session.New(id, nil, that.scheduler, cfg)
	if err := sess.Restore(state); err != nil {
		return nil, fmt.Errorf("failed to hydrate session %s: %w", id, err)
	}

	that.registerLocked(sess)

	return sess, nil
}

func (that *SessionManager) registerLocked(sess *session.Session) {
	events, unsubscribe := sess.Subscribe()

	that.live[sess.ID()] = &liveSession{
		sess:        sess,
		refs:        1,
		unsubscribe: unsubscribe,
	}

	go that.persist(events)
}

// persist writes every state change through to the repository. The event
// mailbox replaces unread events, so a slow write skips straight to the
// newest state instead of backing up.
func (that *SessionManager) persist(events <-chan session.Event) {
	log := that.logger.With("method", "persist")

	for event := range events {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)

		if err := that.repo.Save(ctx, event.State); err != nil {
			log.Error("failed to persist session state", "error", err, "session", event.State.ID)
		}

		cancel()
	}
}
