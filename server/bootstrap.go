package server

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/loophq/go-chat-server/directory"
)

const (
	demoTenantID  = "demo-tenant"
	demoPassword  = "password123"
	demoTokenNote = "DEV only - tokens signed with the configured JWT secret"
)

// SeedDevData populates an empty directory with a demo tenant and two users
// so a fresh DEV checkout can be exercised immediately. Never runs outside
// DEV or when any tenant already exists.
func (s *Server) SeedDevData() error {
	if s.env != "DEV" {
		return nil
	}

	existing, err := s.repos.Tenants.List(0, 1)
	if err != nil {
		return errors.Wrap(err, "[Server SeedDevData] failed to list tenants")
	}
	if len(existing) > 0 {
		return nil
	}

	tenant := &directory.Tenant{ID: demoTenantID, Name: "Demo Organization", Domain: "demo.localhost"}
	if err := s.repos.Tenants.Upsert(tenant); err != nil {
		return errors.Wrap(err, "[Server SeedDevData] failed to create demo tenant")
	}

	passwordHash, err := directory.HashPassword(demoPassword)
	if err != nil {
		return errors.Wrap(err, "[Server SeedDevData] failed to hash demo password")
	}

	demoUsers := []*directory.User{
		{ID: "demo-alice", TenantID: demoTenantID, Email: "alice@demo.localhost", DisplayName: "Alice Demo", PasswordHash: passwordHash, CreatedAt: time.Now().UTC()},
		{ID: "demo-bob", TenantID: demoTenantID, Email: "bob@demo.localhost", DisplayName: "Bob Demo", PasswordHash: passwordHash, CreatedAt: time.Now().UTC()},
	}

	log.Printf("📋 Seeded demo tenant %q (%s)", tenant.Name, tenant.ID)
	for _, user := range demoUsers {
		if err := s.repos.Users.Upsert(user); err != nil {
			return errors.Wrapf(err, "[Server SeedDevData] failed to create user %s", user.Email)
		}
		token, err := s.signToken(user)
		if err != nil {
			return errors.Wrapf(err, "[Server SeedDevData] failed to sign token for %s", user.Email)
		}
		log.Printf("👤 %s <%s>", user.DisplayName, user.Email)
		log.Printf("   Password: %s", demoPassword)
		log.Printf("   Token:    %s", token)
	}
	log.Printf("   (%s)", demoTokenNote)
	log.Printf("🌐 Connect: %s/ws?token=<token>", s.config.GetBaseURL())

	return nil
}
