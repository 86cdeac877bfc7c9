package repofakes

import (
	"sort"
	"sync"

	"github.com/loophq/go-chat-server/directory"
	"github.com/loophq/go-chat-server/internal/errors"
)

var _ directory.TenantRepo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	tenants map[string]*directory.Tenant
	lock    sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{tenants: make(map[string]*directory.Tenant)}
}

func (tr *FakeTenantRepo) Upsert(tenant *directory.Tenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.tenants[tenant.ID] = tenant
	return nil
}

func (tr *FakeTenantRepo) Delete(tenantID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if _, ok := tr.tenants[tenantID]; !ok {
		return errors.ErrTenantNotFound
	}
	delete(tr.tenants, tenantID)
	return nil
}

func (tr *FakeTenantRepo) Get(tenantID string) (*directory.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	tenant, ok := tr.tenants[tenantID]
	if !ok {
		return nil, errors.ErrTenantNotFound
	}
	return tenant, nil
}

func (tr *FakeTenantRepo) List(offset, limit int) ([]*directory.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	all := make([]*directory.Tenant, 0, len(tr.tenants))
	for _, tenant := range tr.tenants {
		all = append(all, tenant)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []*directory.Tenant{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
