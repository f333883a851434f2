package memstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rzyfront/vendix-core/internal/domain"
)

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(email)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == needle {
			return clone(u), nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (s *Store) GetUser(_ context.Context, orgID, userID int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok || u.OrganizationID != orgID {
		return nil, &domain.ErrNotFound{Resource: "user", ID: strconv.FormatInt(userID, 10)}
	}
	return clone(u), nil
}

func (s *Store) ListUsers(_ context.Context, orgID int64, f domain.UserFilter, page, limit int) ([]domain.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.filterUsers(orgID, f)
	total := int64(len(out))
	return paginate(out, page, limit), total, nil
}

func (s *Store) CountUsers(_ context.Context, orgID int64, f domain.UserFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filterUsers(orgID, f))), nil
}

func (s *Store) CreateUser(_ context.Context, orgID int64, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == needle {
			return nil, &domain.ErrConflict{Message: "email already registered: " + u.Email}
		}
	}

	stored := clone(u)
	stored.ID = s.id()
	stored.OrganizationID = orgID
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.users[stored.ID] = stored
	return clone(stored), nil
}

func (s *Store) UpdateUser(_ context.Context, orgID int64, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok || existing.OrganizationID != orgID {
		return nil, &domain.ErrNotFound{Resource: "user", ID: strconv.FormatInt(u.ID, 10)}
	}

	updated := clone(u)
	updated.OrganizationID = orgID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	s.users[updated.ID] = updated
	return clone(updated), nil
}

func (s *Store) BulkUpdateUserStatus(_ context.Context, orgID int64, userIDs []int64, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for _, id := range userIDs {
		u, ok := s.users[id]
		if !ok || u.OrganizationID != orgID {
			continue
		}
		u.Status = status
		u.UpdatedAt = time.Now().UTC()
		affected++
	}
	return affected, nil
}

func (s *Store) DeleteUser(_ context.Context, orgID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.OrganizationID != orgID {
		return &domain.ErrNotFound{Resource: "user", ID: strconv.FormatInt(userID, 10)}
	}
	delete(s.users, userID)
	return nil
}

func (s *Store) DeleteUsersByStore(_ context.Context, orgID, storeID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for id, u := range s.users {
		if u.OrganizationID != orgID || u.StoreID == nil || *u.StoreID != storeID {
			continue
		}
		delete(s.users, id)
		affected++
	}
	return affected, nil
}

// filterUsers returns sorted copies matching the filter. Callers must hold a lock.
func (s *Store) filterUsers(orgID int64, f domain.UserFilter) []domain.User {
	var out []domain.User
	for _, u := range s.users {
		if u.OrganizationID != orgID {
			continue
		}
		if f.StoreID != nil && (u.StoreID == nil || *u.StoreID != *f.StoreID) {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(u.Email), needle) &&
				!strings.Contains(strings.ToLower(u.Name), needle) {
				continue
			}
		}
		out = append(out, *clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
