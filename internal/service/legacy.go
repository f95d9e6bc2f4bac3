package service

import (
	"context"
	"errors"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

// LegacyService provisions rows in the legacy_users table that older
// ledger tooling keys on.  Provisioning is explicit; payment review only
// reads the table.
type LegacyService struct {
	Users  *repository.UserRepo
	Legacy *repository.LegacyUserRepo
}

func NewLegacyService(users *repository.UserRepo, legacy *repository.LegacyUserRepo) *LegacyService {
	return &LegacyService{Users: users, Legacy: legacy}
}

// ProvisionAdmin ensures an admin legacy row for the account with email.
// The account must already be an admin unless promote is set, in which
// case it is promoted first.  Repeated calls return the same row.
func (s *LegacyService) ProvisionAdmin(ctx context.Context, email string, promote bool) (*model.LegacyUser, error) {
	if repository.NormalizeEmail(email) == "" {
		return nil, invalid("email is required")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("no account with email %s", email)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		if !promote {
			return nil, invalid("%s is not an admin account", u.Email)
		}
		if err := s.Users.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
			return nil, err
		}
	}
	return s.Legacy.Provision(ctx, u.Email, u.Name)
}
