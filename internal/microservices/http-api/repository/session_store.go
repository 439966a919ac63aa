package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ErrSessionNotFound is returned for unknown, deleted or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps the sessions behind issued bearer tokens, keyed by opaque session ID.
type SessionStore interface {
	Put(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// dbSessionStore is the GORM implementation of SessionStore
type dbSessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDBSessionStore creates a SessionStore backed by the sessions table
func NewDBSessionStore(db *gorm.DB) SessionStore {
	return &dbSessionStore{db: db, now: time.Now}
}

func (s *dbSessionStore) Put(ctx context.Context, session *models.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get looks up the session and lazily removes it once expired
func (s *dbSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

func (s *dbSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
