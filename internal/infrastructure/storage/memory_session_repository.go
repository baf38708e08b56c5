package storage

import (
	"context"
	"sync"

	"bloodcell/internal/domain/entity"
	"bloodcell/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий чатов.
// Состояние живёт только в процессе и теряется при перезапуске.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int64]*entity.Session),
	}
}

// Get возвращает сессию чата, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, chatID int64) (*entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	s, exists := r.sessions[chatID]
	r.mu.RUnlock()
	if exists {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Могли создать параллельно, пока ждали блокировку.
	if s, exists := r.sessions[chatID]; exists {
		return s, nil
	}
	s = entity.NewSession(chatID)
	r.sessions[chatID] = s
	return s, nil
}

// Save сохраняет сессию
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.sessions[session.ChatID] = session
	r.mu.Unlock()
	return nil
}

// Delete удаляет сессию
func (r *MemorySessionRepository) Delete(ctx context.Context, chatID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.sessions, chatID)
	r.mu.Unlock()
	return nil
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
