package authroles

import (
	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
	"github.com/vv-events/dashboard/internal/ports"
)

var _ ports.RoleChecker = AllowListChecker{}

// AllowListChecker admits the roles named in Roles.
type AllowListChecker struct {
	Roles domainauth.AllowList
}

// NewAllowListChecker builds a checker from raw role names, as read from config.
func NewAllowListChecker(roles ...string) AllowListChecker {
	return AllowListChecker{Roles: domainauth.NewAllowList(roles...)}
}

func (c AllowListChecker) Allowed(role domainauth.Role) bool {
	return c.Roles.Allows(role)
}
