package directory

type UserRepo interface {
	Upsert(user *User) error
	Delete(id string) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	ListByTenant(tenantID string, offset, limit int) ([]*User, error)
	Exists(id, tenantID string) (bool, error)
}

type TenantRepo interface {
	Upsert(tenant *Tenant) error
	Delete(tenantID string) error
	Get(tenantID string) (*Tenant, error)
	List(offset, limit int) ([]*Tenant, error)
}
