package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type AdminSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAdminSessionStore(rdb *redis.Client, ttl time.Duration) *AdminSessionStore {
	return &AdminSessionStore{rdb: rdb, ttl: ttl}
}

type AdminSession struct {
	AdminID   uint   `json:"aid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(id string) string        { return fmt.Sprintf("lebs:sess:%s", id) }
func adminSetKey(aid uint) string { return fmt.Sprintf("lebs:admin_sessions:%d", aid) }

func (s *AdminSessionStore) Create(ctx context.Context, id string, adminID uint, email, name string) error {
	now := time.Now()
	b, _ := json.Marshal(AdminSession{
		AdminID:   adminID,
		Email:     email,
		Name:      name,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, adminSetKey(adminID), id)
	pipe.Expire(ctx, adminSetKey(adminID), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *AdminSessionStore) Get(ctx context.Context, id string) (*AdminSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var as AdminSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AdminSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, adminSetKey(as.AdminID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForAdmin drops every live session of one admin, used when the
// password is reset.
func (s *AdminSessionStore) RevokeAllForAdmin(ctx context.Context, adminID uint) error {
	ids, err := s.rdb.SMembers(ctx, adminSetKey(adminID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, adminSetKey(adminID))
	_, err = pipe.Exec(ctx)
	return err
}
