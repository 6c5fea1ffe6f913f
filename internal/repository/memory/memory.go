// Package memory is an in-process implementation of the repository
// interfaces used by the stub backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/repository"
)

// Store keeps users and roles behind one lock. Ids start at 1 and are never reused.
type Store struct {
	mu         sync.RWMutex
	users      map[int]*repository.UserRecord
	roles      map[int]model.Role
	nextUserID int
	nextRoleID int
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int]*repository.UserRecord),
		roles:      make(map[int]model.Role),
		nextUserID: 1,
		nextRoleID: 1,
	}
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.RoleRepository = (*Store)(nil)
)

func (s *Store) CreateUser(_ context.Context, rec *repository.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByEmail(rec.Email) != nil {
		return fmt.Errorf("failed to create user %s: %w", rec.Email, repository.ErrDuplicateKey)
	}
	rec.UserID = s.nextUserID
	s.nextUserID++
	s.users[rec.UserID] = rec.Clone()
	return nil
}

func (s *Store) GetUser(_ context.Context, id int) (*repository.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to get user %d: %w", id, repository.ErrNotFound)
	}
	return rec.Clone(), nil
}

// GetUserByEmail matches case-insensitively.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*repository.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.findByEmail(email)
	if rec == nil {
		return nil, fmt.Errorf("failed to get user %s: %w", email, repository.ErrNotFound)
	}
	return rec.Clone(), nil
}

func (s *Store) UpdateUser(_ context.Context, rec *repository.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[rec.UserID]; !ok {
		return fmt.Errorf("failed to update user %d: %w", rec.UserID, repository.ErrNotFound)
	}
	if other := s.findByEmail(rec.Email); other != nil && other.UserID != rec.UserID {
		return fmt.Errorf("failed to update user %d: %w", rec.UserID, repository.ErrDuplicateKey)
	}
	s.users[rec.UserID] = rec.Clone()
	return nil
}

// DeleteUser is idempotent. Other records may keep the id in their lists.
func (s *Store) DeleteUser(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// ListUsers returns every record ordered by id.
func (s *Store) ListUsers(_ context.Context) ([]*repository.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*repository.UserRecord, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) findByEmail(email string) *repository.UserRecord {
	for _, rec := range s.users {
		if strings.EqualFold(rec.Email, email) {
			return rec
		}
	}
	return nil
}

func (s *Store) CreateRole(_ context.Context, role *model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.roles {
		if r.RoleName == role.RoleName {
			return fmt.Errorf("failed to create role %s: %w", role.RoleName, repository.ErrDuplicateKey)
		}
	}
	role.RoleID = s.nextRoleID
	s.nextRoleID++
	s.roles[role.RoleID] = *role
	return nil
}

func (s *Store) GetRole(_ context.Context, id int) (*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[id]
	if !ok {
		return nil, fmt.Errorf("failed to get role %d: %w", id, repository.ErrNotFound)
	}
	return &role, nil
}

func (s *Store) UpdateRole(_ context.Context, role *model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role.RoleID]; !ok {
		return fmt.Errorf("failed to update role %d: %w", role.RoleID, repository.ErrNotFound)
	}
	s.roles[role.RoleID] = *role
	return nil
}

// ListRoles returns every role ordered by id.
func (s *Store) ListRoles(_ context.Context) ([]model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoleID < out[j].RoleID })
	return out, nil
}
