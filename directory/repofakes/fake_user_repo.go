package repofakes

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/loophq/go-chat-server/directory"
	"github.com/loophq/go-chat-server/internal/errors"
)

var _ directory.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*directory.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*directory.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(user *directory.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	ur.users[user.ID] = user
	ur.emailIds[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.ErrNotFound
	}
	delete(ur.emailIds, user.Email)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByID(id string) (*directory.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return user, nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*directory.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) ListByTenant(tenantID string, offset, limit int) ([]*directory.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	members := make([]*directory.User, 0)
	for _, user := range ur.users {
		if user.TenantID == tenantID {
			members = append(members, user)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].DisplayName < members[j].DisplayName })

	if offset >= len(members) {
		return []*directory.User{}, nil
	}
	members = members[offset:]
	if limit > 0 && limit < len(members) {
		members = members[:limit]
	}
	return members, nil
}

func (ur *FakeUserRepo) Exists(id, tenantID string) (bool, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	return ok && user.InTenant(tenantID), nil
}
