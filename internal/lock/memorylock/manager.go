package memorylock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
)

// Manager — in-process реализация LockManager для локальной разработки и
// тестов. Семантика та же, что у Redis-бэкенда: одна неблокирующая попытка,
// ttl, снятие только собственным держателем.
type Manager struct {
	mu   sync.Mutex
	held map[string]entry

	// now подменяется в тестах для проверки истечения ttl.
	now func() time.Time
}

type entry struct {
	token     string
	expiresAt time.Time
}

// NewManager возвращает пустой менеджер замков.
func NewManager() *Manager {
	return &Manager{
		held: make(map[string]entry),
		now:  time.Now,
	}
}

// Acquire делает одну попытку взять замок. Возвращает ErrLockBusy, если ключ
// занят и его ttl ещё не истёк.
func (m *Manager) Acquire(_ context.Context, key string, ttl time.Duration) (domain.LockHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.held[key]; ok && m.now().Before(e.expiresAt) {
		return nil, domain.ErrLockBusy
	}

	token := uuid.NewString()
	m.held[key] = entry{token: token, expiresAt: m.now().Add(ttl)}
	return &handle{manager: m, key: key, token: token}, nil
}

// Held сообщает, удерживается ли сейчас замок с данным ключом.
func (m *Manager) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.held[key]
	return ok && m.now().Before(e.expiresAt)
}

type handle struct {
	manager *Manager
	key     string
	token   string
}

// Release снимает замок, если он всё ещё принадлежит этому держателю.
func (h *handle) Release(_ context.Context) error {
	h.manager.mu.Lock()
	defer h.manager.mu.Unlock()

	if e, ok := h.manager.held[h.key]; ok && e.token == h.token {
		delete(h.manager.held, h.key)
	}
	return nil
}

var _ domain.LockManager = (*Manager)(nil)
