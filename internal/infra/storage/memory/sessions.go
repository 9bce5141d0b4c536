package memory

import (
	"context"
	"sync"
	"time"

	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

// SessionStore keeps login sessions until they expire or are deleted.
type SessionStore struct {
	mu    sync.Mutex
	items map[domainauth.SessionID]domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[domainauth.SessionID]domainauth.Session)}
}

func (s *SessionStore) Save(_ context.Context, session *domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id domainauth.SessionID) (*domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[id]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		delete(s.items, id)
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id domainauth.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.items {
		if session.UserID == userID {
			delete(s.items, id)
		}
	}
	return nil
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
