// Package redisstore guarda sesiones y la guardia de envíos duplicados en Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/trek-api/internal/application/session"
)

const (
	sessionPrefix = "trek:session:"
	guardPrefix   = "trek:guard:"
)

// NewClient abre el cliente y verifica la conexión con un ping acotado.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// ── Sesiones ────────────────────────────────────────────────────────────────

var _ session.Store = (*SessionStore)(nil)

// SessionStore sesiones serializadas en JSON con TTL hasta ExpiresAt.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionStore construye el store.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("redis: sesión %s ya expirada", sess.ID)
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+sess.ID, payload, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	payload, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var sess session.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("redis: sesión corrupta: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionPrefix+id).Err()
}

// ── Guardia ─────────────────────────────────────────────────────────────────

var _ session.Guard = (*Guard)(nil)

// Guard candado con SET NX + TTL; el TTL libera la clave si el proceso muere a mitad.
type Guard struct {
	client *redis.Client
}

// NewGuard construye la guardia.
func NewGuard(client *redis.Client) *Guard {
	return &Guard{client: client}
}

func (g *Guard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: guard: %w", err)
	}
	return ok, nil
}

func (g *Guard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, guardPrefix+key).Err()
}
