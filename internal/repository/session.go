package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oxalis-games/tictactoe/internal/apperror"
	"github.com/oxalis-games/tictactoe/internal/entity"
)

const sessionKeyPrefix = "session:"

// SessionRepository stores one live snapshot per session. Snapshots expire
// after the configured TTL; finished games stay readable until then so a
// reconnecting client can still render the final board.
type SessionRepository interface {
	Save(ctx context.Context, state entity.SessionState) error
	GetByID(ctx context.Context, id string) (entity.SessionState, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbSession) Save(ctx context.Context, state entity.SessionState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal session state: %w", err)
	}

	sessionKey := sessionKeyPrefix + state.ID
	if err = that.client.Set(ctx, sessionKey, stateJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session state: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (entity.SessionState, error) {
	sessionKey := sessionKeyPrefix + id

	response, err := that.client.Get(ctx, sessionKey).Result()
	if errors.Is(err, redis.Nil) {
		return entity.SessionState{}, apperror.ErrSessionNotFound
	}

	if err != nil {
		return entity.SessionState{}, fmt.Errorf("failed to get session state: %w", err)
	}

	var state entity.SessionState
	if err = json.Unmarshal([]byte(response), &state); err != nil {
		return entity.SessionState{}, fmt.Errorf("failed to unmarshal session state: %w", err)
	}

	return state, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	sessionKey := sessionKeyPrefix + id

	if err := that.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("failed to delete session state: %w", err)
	}

	return nil
}
