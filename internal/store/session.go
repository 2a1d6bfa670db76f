package store

import (
	"errors"
	"strconv"

	"aams/internal/kv"
)

// Session state is tab-local in spirit: login and logout are never
// broadcast, so one context's session changes cannot log out another.
// Within one process the session key is still a single shared slot,
// though — when the HTTP server hosts several logged-in users,
// CurrentUser reflects whoever logged in last, and so do the MarkedBy
// and actor stamps derived from it. Callers that need the exact
// requesting user pass an explicit id instead of relying on the session.

// Login matches email and password against the users collection and
// records the session. ErrInvalidCredentials on no match.
func (s *Store) Login(email, password string) (*User, error) {
	users, err := s.Users()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email && users[i].Password == password {
			u := users[i]
			if err := s.putRaw(keyCurrentUser, []byte(u.ID)); err != nil {
				return nil, err
			}
			ts := strconv.FormatInt(s.now().UnixMilli(), 10)
			if err := s.putRaw(keySessionTimestamp, []byte(ts)); err != nil {
				return nil, err
			}
			if err := s.putRaw(keySessionActive, []byte("true")); err != nil {
				return nil, err
			}
			return &u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// CurrentUser resolves the recorded session to a user, or nil when no
// session exists or the user is gone.
func (s *Store) CurrentUser() (*User, error) {
	raw, err := s.kv.Get(keyCurrentUser)
	if err != nil {
		if errors.Is(err, kv.ErrNoKey) {
			return nil, nil
		}
		return nil, err
	}
	return s.UserByID(string(raw))
}

// Logout clears the session for this context only.
func (s *Store) Logout() error {
	for _, key := range []string{keyCurrentUser, keySessionTimestamp, keySessionActive} {
		if err := s.kv.Delete(key); err != nil {
			return &WriteError{Key: key, Err: err}
		}
	}
	return nil
}

func (s *Store) putRaw(key string, value []byte) error {
	if err := s.kv.Put(key, value); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}
