package users

import (
	"fmt"

	"github.com/jrsteele09/crm-console/permissions"
)

// DemoAccount describes a seeded development login
type DemoAccount struct {
	Email    string
	FullName string
	Role     string
	Modules  []string
}

// DemoAccounts are created by Seed
var DemoAccounts = []DemoAccount{
	{Email: "super@example.com", FullName: "Sam Super", Role: "superadmin"},
	{Email: "admin@example.com", FullName: "Ada Admin", Role: "admin", Modules: []string{"dashboard", "users", "roles", "settings"}},
	{Email: "manager@example.com", FullName: "Max Manager", Role: "manager", Modules: []string{"dashboard", "reports", "hr", "profile"}},
	{Email: "viewer@example.com", FullName: "Val Viewer", Role: "viewer"},
}

// Seed creates the demo accounts, all sharing password. Module names are turned
// back into permission ids through perms.
func Seed(repo UserRepo, perms permissions.Map, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("[users Seed] hash password: %w", err)
	}

	for _, acct := range DemoAccounts {
		permIDs := make([]string, 0, len(acct.Modules))
		for _, module := range acct.Modules {
			id, ok := perms.IDFor(module)
			if !ok {
				id = module
			}
			permIDs = append(permIDs, id)
		}

		if err := repo.Upsert(&User{
			Email:        acct.Email,
			FullName:     acct.FullName,
			PasswordHash: hash,
			Role:         acct.Role,
			Permissions:  permIDs,
		}); err != nil {
			return fmt.Errorf("[users Seed] upsert %s: %w", acct.Email, err)
		}
	}
	return nil
}
