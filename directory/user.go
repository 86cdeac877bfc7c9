package directory

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a member of exactly one tenant. The coordinator consults the
// directory at handshake time and when answering presence queries; it never
// mutates users.
type User struct {
	ID           string    `json:"id,omitempty" bson:"_id"`
	TenantID     string    `json:"tenant_id,omitempty" bson:"tenant_id"`
	Email        string    `json:"email,omitempty" bson:"email"`
	DisplayName  string    `json:"display_name,omitempty" bson:"display_name"`
	PasswordHash string    `json:"-" bson:"password_hash"` // never serialize
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// InTenant reports whether the user belongs to the given tenant. An empty
// tenant ID matches nothing; tenant scoping is a security boundary.
func (u *User) InTenant(tenantID string) bool {
	return tenantID != "" && u.TenantID == tenantID
}
