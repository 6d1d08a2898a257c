// Package presence mirrors live room membership into Redis for external
// dashboards and ops tooling. The mirror is write-only and
// non-authoritative: the in-memory registry always wins, and the relay
// never reads this data back, so a missing or lagging Redis changes no
// signaling behavior.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/castrelay/signaling/config"
)

const keyTTL = 24 * time.Hour

type Mirror struct {
	client *redis.Client
}

// Connect builds a mirror backed by the configured Redis instance and
// verifies it is reachable.
func Connect(cfg config.RedisConfig) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Mirror{client: client}, nil
}

func (m *Mirror) Close() error {
	if m == nil {
		return nil
	}
	return m.client.Close()
}

func (m *Mirror) RoomOpened(roomID, host string) {
	m.async(func(ctx context.Context, c *redis.Client) error {
		if err := c.SAdd(ctx, peersKey(roomID), host).Err(); err != nil {
			return err
		}
		return c.Expire(ctx, peersKey(roomID), keyTTL).Err()
	})
}

func (m *Mirror) PeerJoined(roomID, conn string) {
	m.async(func(ctx context.Context, c *redis.Client) error {
		if err := c.SAdd(ctx, peersKey(roomID), conn).Err(); err != nil {
			return err
		}
		return c.Expire(ctx, peersKey(roomID), keyTTL).Err()
	})
}

func (m *Mirror) PeerLeft(roomID, conn string) {
	m.async(func(ctx context.Context, c *redis.Client) error {
		return c.SRem(ctx, peersKey(roomID), conn).Err()
	})
}

func (m *Mirror) RoomClosed(roomID string) {
	m.async(func(ctx context.Context, c *redis.Client) error {
		return c.Del(ctx, peersKey(roomID)).Err()
	})
}

// async runs the write off the signaling path. Failures are logged and
// forgotten; the mirror is best effort.
func (m *Mirror) async(fn func(ctx context.Context, c *redis.Client) error) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := fn(ctx, m.client); err != nil {
			log.Debugf("presence mirror write failed: %v", err)
		}
	}()
}

func peersKey(roomID string) string {
	return "room:" + roomID + ":peers"
}
