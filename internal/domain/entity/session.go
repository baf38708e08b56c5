package entity

import "time"

// SessionState состояние диалога в чате
type SessionState string

const (
	StateIdle          SessionState = "idle"           // ожидание команды
	StateAwaitingImage SessionState = "awaiting_image" // ожидание снимка мазка
	StateProcessing    SessionState = "processing"     // идёт анализ
)

// Session состояние одного чата бота
type Session struct {
	ChatID       int64
	State        SessionState
	LastAnalysis *Analysis // последний успешный анализ, nil если его не было
	UpdatedAt    time.Time
}

// NewSession создаёт сессию в начальном состоянии
func NewSession(chatID int64) *Session {
	return &Session{
		ChatID:    chatID,
		State:     StateIdle,
		UpdatedAt: time.Now(),
	}
}

// SetState переводит сессию в новое состояние
func (s *Session) SetState(state SessionState) {
	s.State = state
	s.UpdatedAt = time.Now()
}

// Busy true, пока по сессии идёт анализ
func (s *Session) Busy() bool {
	return s.State == StateProcessing
}
