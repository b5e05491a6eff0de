package services

import (
	"rescuetrack/internal/models"
)

// Permission names checked by the RBAC middleware.
const (
	PermRecordsRead     = "records:read"
	PermRecordsWrite    = "records:write"
	PermReportsRead     = "reports:read"
	PermStaffRead       = "staff:read"
	PermStaffManage     = "staff:manage"
	PermInvitesManage   = "invites:manage"
	PermOrganizationAdm = "organization:manage"
	PermAuditRead       = "audit:read"
)

type RBACService interface {
	HasPermission(principal models.Principal, permission string) bool
	Permissions(role string) []string
}

type rbacService struct {
	rolePermissions map[string]map[string]bool
}

func NewRBACService() RBACService {
	user := []string{PermRecordsRead, PermRecordsWrite, PermReportsRead, PermStaffRead}
	admin := append([]string{PermStaffManage, PermInvitesManage, PermOrganizationAdm, PermAuditRead}, user...)

	return &rbacService{
		rolePermissions: map[string]map[string]bool{
			models.RoleUser:  toSet(user),
			models.RoleAdmin: toSet(admin),
		},
	}
}

func toSet(perms []string) map[string]bool {
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

func (s *rbacService) HasPermission(principal models.Principal, permission string) bool {
	return s.rolePermissions[principal.Role][permission]
}

func (s *rbacService) Permissions(role string) []string {
	perms := make([]string, 0, len(s.rolePermissions[role]))
	for p := range s.rolePermissions[role] {
		perms = append(perms, p)
	}
	return perms
}
