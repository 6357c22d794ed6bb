// Package account handles registration, sessions and profiles. Account
// state is a shared resource of its own, guarded independently of the
// seat keys: nothing here ever holds a ledger lock.
package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/railbook/rail-go/internal/domain"
)

type Service struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	loggedIn map[string]bool
}

func New() *Service {
	return &Service{
		users:    make(map[string]*domain.User),
		loggedIn: make(map[string]bool),
	}
}

// AddUser registers a user. The very first user becomes the root
// administrator at privilege 10; after that the creator must be logged
// in and must grant a privilege strictly below their own.
//
// Returns:
//   - account.ErrUserExists if the username is taken.
//   - account.ErrNotLoggedIn if the creator has no session.
//   - account.ErrPermissionDenied if the granted privilege is too high.
func (s *Service) AddUser(ctx context.Context, creator string, u domain.User) error {
	const op = "service.account.AddUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return fmt.Errorf("%s: %s: %w", op, u.Username, ErrUserExists)
	}

	if len(s.users) == 0 {
		u.Privilege = 10
		cp := u
		s.users[u.Username] = &cp
		return nil
	}

	if !s.loggedIn[creator] {
		return fmt.Errorf("%s: %s: %w", op, creator, ErrNotLoggedIn)
	}

	c, ok := s.users[creator]
	if !ok {
		return fmt.Errorf("%s: %s: %w", op, creator, ErrUserNotFound)
	}

	if u.Privilege >= c.Privilege {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	cp := u
	s.users[u.Username] = &cp

	return nil
}

// Login opens a session.
//
// Returns:
//   - account.ErrUserNotFound / account.ErrBadCredential on a failed check.
//   - account.ErrAlreadyLoggedIn if a session is already open.
func (s *Service) Login(ctx context.Context, username, password string) error {
	const op = "service.account.Login"

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return fmt.Errorf("%s: %s: %w", op, username, ErrUserNotFound)
	}

	if u.Password != password {
		return fmt.Errorf("%s: %s: %w", op, username, ErrBadCredential)
	}

	if s.loggedIn[username] {
		return fmt.Errorf("%s: %s: %w", op, username, ErrAlreadyLoggedIn)
	}

	s.loggedIn[username] = true

	return nil
}

// Logout closes a session.
func (s *Service) Logout(ctx context.Context, username string) error {
	const op = "service.account.Logout"

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn[username] {
		return fmt.Errorf("%s: %s: %w", op, username, ErrNotLoggedIn)
	}

	delete(s.loggedIn, username)

	return nil
}

// IsLoggedIn reports whether a session is open; the command layer uses
// it to gate booking operations before they reach the engine.
func (s *Service) IsLoggedIn(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loggedIn[username]
}

// Profile returns target's profile, visible to the target themselves
// or to a logged-in caller with strictly higher privilege.
func (s *Service) Profile(ctx context.Context, caller, target string) (domain.User, error) {
	const op = "service.account.Profile"

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, t, err := s.pair(caller, target)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if caller != target && c.Privilege <= t.Privilege {
		return domain.User{}, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	return *t, nil
}

// ProfileUpdate carries the optional fields of ModifyProfile; nil
// means leave unchanged.
type ProfileUpdate struct {
	Password  *string
	Name      *string
	MailAddr  *string
	Privilege *int
}

// ModifyProfile applies an update under the same visibility rule as
// Profile; a privilege change must stay strictly below the caller's.
func (s *Service) ModifyProfile(ctx context.Context, caller, target string, upd ProfileUpdate) (domain.User, error) {
	const op = "service.account.ModifyProfile"

	s.mu.Lock()
	defer s.mu.Unlock()

	c, t, err := s.pair(caller, target)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if caller != target && c.Privilege <= t.Privilege {
		return domain.User{}, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if upd.Privilege != nil && *upd.Privilege >= c.Privilege {
		return domain.User{}, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if upd.Password != nil {
		t.Password = *upd.Password
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.MailAddr != nil {
		t.MailAddr = *upd.MailAddr
	}
	if upd.Privilege != nil {
		t.Privilege = *upd.Privilege
	}

	return *t, nil
}

// pair resolves a logged-in caller and a target user. Callers hold at
// least a read lock.
func (s *Service) pair(caller, target string) (*domain.User, *domain.User, error) {
	if !s.loggedIn[caller] {
		return nil, nil, fmt.Errorf("%s: %w", caller, ErrNotLoggedIn)
	}

	c, ok := s.users[caller]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", caller, ErrUserNotFound)
	}

	t, ok := s.users[target]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", target, ErrUserNotFound)
	}

	return c, t, nil
}

// Reset drops all users and sessions.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*domain.User)
	s.loggedIn = make(map[string]bool)
}

// Snapshot copies every user for the storage collaborator. Sessions
// are not persisted.
func (s *Service) Snapshot() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}

	return out
}

// Restore replaces all users with a stored snapshot.
func (s *Service) Restore(users []domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*domain.User, len(users))
	s.loggedIn = make(map[string]bool)
	for i := range users {
		u := users[i]
		s.users[u.Username] = &u
	}
}
