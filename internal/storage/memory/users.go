package memory

import (
	"context"

	"github.com/supportdesk/support-portal/internal/domain"
)

func (s *Store) GetUser(_ context.Context, id int64) (*domain.User, error) {
	s.users.mu.RLock()
	defer s.users.mu.RUnlock()
	u, ok := s.users.row(id)
	if !ok {
		return nil, nil
	}
	out := u.Clone()
	return &out, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.users.lookup(s.users.byUsername, username), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.users.lookup(s.users.byEmail, email), nil
}

// lookup resolves key through index and copies the row under one read lock.
func (t userTable) lookup(index map[string]int64, key string) *domain.User {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := index[key]
	if !ok {
		return nil
	}
	u, ok := t.row(id)
	if !ok {
		return nil
	}
	out := u.Clone()
	return &out
}

func (s *Store) CreateUser(_ context.Context, in domain.NewUser) (*domain.User, error) {
	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	if _, taken := s.users.byUsername[in.Username]; taken {
		return nil, domain.ErrUsernameTaken
	}
	if _, taken := s.users.byEmail[in.Email]; taken {
		return nil, domain.ErrEmailTaken
	}

	user := domain.User{
		ID:          s.users.allocate(),
		Username:    in.Username,
		Password:    in.Password,
		Email:       in.Email,
		DisplayName: in.DisplayName,
	}
	if in.PhoneNumber != nil && *in.PhoneNumber != "" {
		user.PhoneNumber = domain.StringPtr(*in.PhoneNumber)
	}
	s.users.rows = append(s.users.rows, user)
	s.users.byUsername[user.Username] = user.ID
	s.users.byEmail[user.Email] = user.ID

	out := user.Clone()
	return &out, nil
}

func (s *Store) UpdateUser(_ context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	current, ok := s.users.row(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Email != nil {
		if owner, taken := s.users.byEmail[*patch.Email]; taken && owner != id {
			return nil, domain.ErrEmailTaken
		}
	}

	updated := current.Clone()
	patch.Apply(&updated)
	if updated.Email != current.Email {
		delete(s.users.byEmail, current.Email)
		s.users.byEmail[updated.Email] = id
	}
	*current = updated

	out := updated.Clone()
	return &out, nil
}

// PromoteAgent grants the agent role to username.
func (s *Store) PromoteAgent(_ context.Context, username string) (*domain.User, error) {
	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	id, ok := s.users.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	current, _ := s.users.row(id)
	current.IsAgent = true

	out := current.Clone()
	return &out, nil
}
