package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
)

// releaseScript удаляет ключ только если он всё ещё принадлежит держателю:
// сравниваем сохранённый токен, чтобы протухший handle не снял чужой замок.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`)

// Manager — реализация LockManager поверх Redis. Замок — это ключ с уникальным
// токеном держателя и ttl (SET NX PX), видимый всем процессам, разделяющим
// этот Redis.
type Manager struct {
	client *redis.Client
	logger *log.Entry
}

// NewManager создаёт Redis-реализацию менеджера распределённых замков.
func NewManager(client *redis.Client, logger *log.Entry) *Manager {
	if logger == nil {
		logger = log.New().WithField("component", "redislock")
	}
	return &Manager{client: client, logger: logger}
}

// Acquire делает одну неблокирующую попытку взять замок на ttl.
// Занятый ключ — это ErrLockBusy; ошибки самого Redis поднимаются как есть.
func (m *Manager) Acquire(ctx context.Context, key string, ttl time.Duration) (domain.LockHandle, error) {
	token := uuid.NewString()

	ok, err := m.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %q: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockBusy
	}

	m.logger.WithFields(log.Fields{
		"key": key,
		"ttl": ttl,
	}).Debug("distributed lock acquired")

	return &handle{client: m.client, key: key, token: token}, nil
}

type handle struct {
	client *redis.Client
	key    string
	token  string
}

// Release снимает замок, если токен всё ещё наш. Повторный вызов и вызов после
// истечения ttl безвредны.
func (h *handle) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, h.client, []string{h.key}, h.token).Err(); err != nil {
		return fmt.Errorf("release lock %q: %w", h.key, err)
	}
	return nil
}

var _ domain.LockManager = (*Manager)(nil)
