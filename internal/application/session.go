package app

import (
	"context"

	"bloodcell/internal/domain/entity"
	"bloodcell/internal/domain/port"
)

type SessionService struct {
	repo port.SessionRepository
}

func NewSessionService(repo port.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) Get(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.repo.Get(ctx, chatID)
}

func (s *SessionService) SetState(ctx context.Context, chatID int64, state entity.SessionState) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	session.SetState(state)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionService) AwaitImage(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.SetState(ctx, chatID, entity.StateAwaitingImage)
}

func (s *SessionService) Cancel(ctx context.Context, chatID int64) (*entity.Session, error) {
	return s.SetState(ctx, chatID, entity.StateIdle)
}

// Reset забывает сессию чата вместе с последним результатом и возвращает новую.
func (s *SessionService) Reset(ctx context.Context, chatID int64) (*entity.Session, error) {
	if err := s.repo.Delete(ctx, chatID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, chatID)
}

// BeginProcessing переводит сессию в обработку. ok=false, если анализ по чату уже идёт.
func (s *SessionService) BeginProcessing(ctx context.Context, chatID int64) (session *entity.Session, ok bool, err error) {
	session, err = s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, false, err
	}
	if session.Busy() {
		return session, false, nil
	}

	session.SetState(entity.StateProcessing)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// Finish сохраняет результат (nil при ошибке) и возвращает сессию в ожидание команды.
func (s *SessionService) Finish(ctx context.Context, chatID int64, analysis *entity.Analysis) (*entity.Session, error) {
	session, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if analysis != nil {
		session.LastAnalysis = analysis
	}
	session.SetState(entity.StateIdle)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
