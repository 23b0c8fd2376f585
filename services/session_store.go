package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kendall-kelly/canteen-orders/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionState is everything the engine remembers about one conversation
// between turns. At most one of Draft and Carousel is set.
type SessionState struct {
	Auth     *AuthState  `json:"auth,omitempty"`
	Draft    *DraftOrder `json:"draft,omitempty"`
	Carousel *Carousel   `json:"carousel,omitempty"`
}

// SessionStore keeps serialized session state per conversation key.
// Load returns an empty state for unknown keys.
type SessionStore interface {
	Load(ctx context.Context, key string) (*SessionState, error)
	Save(ctx context.Context, key string, state *SessionState) error
	Delete(ctx context.Context, key string) error
}

// SessionKey names the session of a chat.
func SessionKey(handle int64) string {
	return fmt.Sprintf("chat:%d", handle)
}

func decodeSession(data string) (*SessionState, error) {
	state := &SessionState{}
	if data == "" {
		return state, nil
	}
	if err := json.Unmarshal([]byte(data), state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return state, nil
}

func encodeSession(state *SessionState) (string, error) {
	if state == nil {
		state = &SessionState{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(data), nil
}

// GormSessionStore keeps sessions in the conversation_sessions table.
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore creates a session store bound to db
func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) Load(ctx context.Context, key string) (*SessionState, error) {
	var row models.ConversationSession
	if err := s.db.WithContext(ctx).Where(&models.ConversationSession{Key: key}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SessionState{}, nil
		}
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	return decodeSession(row.Data)
}

func (s *GormSessionStore) Save(ctx context.Context, key string, state *SessionState) error {
	data, err := encodeSession(state)
	if err != nil {
		return err
	}
	row := models.ConversationSession{Key: key, Data: data}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save session %s: %w", key, err)
	}
	return nil
}

func (s *GormSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where(&models.ConversationSession{Key: key}).Delete(&models.ConversationSession{}).Error; err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

// MockSessionStore keeps encoded sessions in memory for testing. It stores
// JSON so tests exercise the same round trip as the database store.
type MockSessionStore struct {
	sessions map[string]string
	mu       sync.RWMutex
}

// NewMockSessionStore creates an empty in-memory session store
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]string)}
}

func (m *MockSessionStore) Load(_ context.Context, key string) (*SessionState, error) {
	m.mu.RLock()
	data := m.sessions[key]
	m.mu.RUnlock()
	return decodeSession(data)
}

func (m *MockSessionStore) Save(_ context.Context, key string, state *SessionState) error {
	data, err := encodeSession(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MockSessionStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
	return nil
}

// Raw returns the stored JSON for key
func (m *MockSessionStore) Raw(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[key]
}
