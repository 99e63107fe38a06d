// Package session owns the authenticated identity. The current session is a
// single value injected into consumers; persistence sits behind the Storage
// interface so tests can swap the file-backed implementation out.
package session

import (
	"fmt"

	"reelrate/model"
)

// Storage is the durable backing for a session. Implementations persist the
// token and email together and clear them together.
type Storage interface {
	Load() (model.Session, error)
	Save(model.Session) error
	Clear() error
}

// Store holds the current session and publishes login/logout transitions to
// subscribers. All mutation happens on the single UI event thread.
type Store struct {
	storage Storage
	current model.Session
	subs    []func(model.Session)
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Hydrate attempts to restore a persisted session on process start. Absence
// of a stored session is not an error; subscribers are only notified when a
// session was actually restored.
func (s *Store) Hydrate() error {
	session, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !session.Valid() {
		return nil
	}
	s.current = session
	s.publish()
	return nil
}

// Login persists the session and publishes it to all subscribers.
func (s *Store) Login(token, email string) error {
	session := model.Session{Token: token, Email: email}
	if !session.Valid() {
		return fmt.Errorf("token and email are required")
	}
	if err := s.storage.Save(session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.current = session
	s.publish()
	return nil
}

// Logout clears durable storage and publishes "no session". It is safe to
// call with no session active.
func (s *Store) Logout() error {
	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = model.Session{}
	s.publish()
	return nil
}

// Current returns the session value; check Valid before using the token.
func (s *Store) Current() model.Session {
	return s.current
}

// Active reports whether protected actions are currently permitted.
func (s *Store) Active() bool {
	return s.current.Valid()
}

// Subscribe registers a callback invoked on every session transition with
// the new value. Logout delivers the zero session.
func (s *Store) Subscribe(fn func(model.Session)) {
	s.subs = append(s.subs, fn)
}

func (s *Store) publish() {
	for _, fn := range s.subs {
		fn(s.current)
	}
}
