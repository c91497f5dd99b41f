package session

import (
	"fmt"
	"sync"

	"github.com/jrsteele09/imvestor-client/internal/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of Store. The zero value is an
// empty store ready for use.
type InMemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewInMemoryStore creates a new, empty in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (st *InMemoryStore) Get() (Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if st.session == nil {
		return Session{}, false
	}
	return *st.session, true
}

func (st *InMemoryStore) Begin(s Session) error {
	if s.AccessToken == "" {
		return fmt.Errorf("access token is required: %w", errors.ErrInvalidToken)
	}
	if s.Role != "" && !s.Role.Valid() {
		return fmt.Errorf("%w: %q", errors.ErrInvalidRole, s.Role)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// Keep a private copy so callers cannot mutate the stored session
	cp := s
	st.session = &cp
	return nil
}

func (st *InMemoryStore) SetAccessToken(token string) error {
	if token == "" {
		return fmt.Errorf("access token is required: %w", errors.ErrInvalidToken)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.session == nil {
		return errors.ErrNoSession
	}
	st.session.AccessToken = token
	return nil
}

func (st *InMemoryStore) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.session = nil
}
