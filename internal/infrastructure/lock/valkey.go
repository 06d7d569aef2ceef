package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"LunaroNews/internal/config"
	"LunaroNews/internal/ports"
)

const (
	keyPrefix    = "lunaro:lock:"
	pollInterval = 50 * time.Millisecond
)

// Deletes the key only while it still holds our token.
var releaseScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

// Valkey is a lease lock shared by every process using the same server.
type Valkey struct {
	client valkey.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.Locker = (*Valkey)(nil)

// NewValkeyClient connects and pings the configured server.
func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}
	return client, nil
}

// NewValkey wraps a connected client.
func NewValkey(client valkey.Client, ttl time.Duration, logger *slog.Logger) *Valkey {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Valkey{client: client, ttl: ttl, logger: logger}
}

// Lock polls SET NX PX until the lease is taken or ctx is done.
func (v *Valkey) Lock(ctx context.Context, key string) (func(), error) {
	name := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		err := v.client.Do(ctx, v.client.B().Set().Key(name).Value(token).Nx().PxMilliseconds(v.ttl.Milliseconds()).Build()).Error()
		switch {
		case err == nil:
			return v.unlocker(name, token), nil
		case !valkey.IsValkeyNil(err):
			return nil, fmt.Errorf("acquire lock %q: %w", key, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (v *Valkey) unlocker(name, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Exec(ctx, v.client, []string{name}, []string{token}).Error(); err != nil {
			v.logger.Warn("release lock failed, lease will expire", "key", name, "error", err)
		}
	}
}
