package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	connKeyPrefix = "chat:conn:"
	userKeyPrefix = "chat:user:"
)

// RedisDirectory implements Directory on top of a shared redis instance so
// that every gateway process observes the same session state. All writes
// are per-key atomic commands; there is no read-modify-write across the
// whole directory.
type RedisDirectory struct {
	client redis.UniversalClient
}

func NewRedisDirectory(client redis.UniversalClient) *RedisDirectory {
	return &RedisDirectory{client: client}
}

func connKey(connID uuid.UUID) string { return connKeyPrefix + connID.String() }
func userKey(userID int64) string     { return userKeyPrefix + strconv.FormatInt(userID, 10) }

func (d *RedisDirectory) Bind(ctx context.Context, connID uuid.UUID, userID int64) error {
	// A re-authentication on the same socket must leave the previous
	// user's reverse set, otherwise stale fan-out targets accumulate.
	prev, err := d.client.Get(ctx, connKey(connID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("session: read binding: %w", err)
	}

	pipe := d.client.TxPipeline()
	if err == nil && prev != strconv.FormatInt(userID, 10) {
		if prevID, perr := strconv.ParseInt(prev, 10, 64); perr == nil {
			pipe.SRem(ctx, userKey(prevID), connID.String())
		}
	}
	pipe.Set(ctx, connKey(connID), strconv.FormatInt(userID, 10), 0)
	pipe.SAdd(ctx, userKey(userID), connID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: bind %s: %w", connID, err)
	}
	return nil
}

func (d *RedisDirectory) Unbind(ctx context.Context, connID uuid.UUID) error {
	prev, err := d.client.Get(ctx, connKey(connID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: read binding: %w", err)
	}

	pipe := d.client.TxPipeline()
	pipe.Del(ctx, connKey(connID))
	if prevID, perr := strconv.ParseInt(prev, 10, 64); perr == nil {
		pipe.SRem(ctx, userKey(prevID), connID.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: unbind %s: %w", connID, err)
	}
	return nil
}

func (d *RedisDirectory) ResolveConnections(ctx context.Context, userID int64) ([]uuid.UUID, error) {
	members, err := d.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("session: resolve connections for user %d: %w", userID, err)
	}
	conns := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, perr := uuid.Parse(m)
		if perr != nil {
			continue
		}
		conns = append(conns, id)
	}
	return conns, nil
}

func (d *RedisDirectory) ResolveUser(ctx context.Context, connID uuid.UUID) (int64, bool, error) {
	val, err := d.client.Get(ctx, connKey(connID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("session: resolve user for %s: %w", connID, err)
	}
	userID, perr := strconv.ParseInt(val, 10, 64)
	if perr != nil {
		return 0, false, fmt.Errorf("session: corrupt binding for %s: %w", connID, perr)
	}
	return userID, true, nil
}
