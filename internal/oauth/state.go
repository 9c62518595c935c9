package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StateTTL bounds how long a user may take on the consent page.
const StateTTL = 10 * time.Minute

// ErrInvalidState is returned for a missing, unknown, expired or reused state.
var ErrInvalidState = errors.New("invalid oauth state")

// StateStore issues and consumes the state parameter of the OAuth flow.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) error
}

// RedisStateStore keeps each state nonce in Redis until it is consumed or expires.
type RedisStateStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	trace *observability.TraceLayer
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, ttl: StateTTL, trace: observability.NewTraceLayer(nil)}
}

func (s *RedisStateStore) Issue(ctx context.Context) (_ string, err error) {
	ctx, span := s.trace.TraceRedisOperation(ctx, "oauth_state.set")
	defer func() { observability.EndSpan(span, err) }()

	state := uuid.NewString()
	if err := s.rdb.Set(ctx, cache.OAuthStateKey(state), "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume deletes the nonce atomically, so a state can be used at most once.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (err error) {
	if state == "" {
		return ErrInvalidState
	}
	ctx, span := s.trace.TraceRedisOperation(ctx, "oauth_state.getdel")
	defer func() { observability.EndSpan(span, err, ErrInvalidState) }()

	err = s.rdb.GetDel(ctx, cache.OAuthStateKey(state)).Err()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("consume oauth state: %w", err)
	}
	return nil
}

// SignedStateStore is used when Redis is unavailable. The state is a short-lived
// HS256 token, so it is verified rather than looked up.
type SignedStateStore struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedStateStore creates a stateless state store signing with secret.
func NewSignedStateStore(secret string) *SignedStateStore {
	return &SignedStateStore{secret: []byte(secret), ttl: StateTTL}
}

const stateAudience = "oauth-state"

func (s *SignedStateStore) Issue(_ context.Context) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{stateAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return state, nil
}

func (s *SignedStateStore) Consume(_ context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(stateAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}

// NewStateStore prefers Redis and falls back to signed state when rdb is nil.
func NewStateStore(rdb *redis.Client, secret string) StateStore {
	if rdb != nil {
		return NewRedisStateStore(rdb)
	}
	return NewSignedStateStore(secret)
}
