package identity

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// Role is the job function a user holds on the construction site or in the office
type Role string

const (
	RoleAdmin             Role = "admin"
	RolePurchasingManager Role = "truong_phong_mh" // head of purchasing
	RolePurchasingStaff   Role = "nhan_vien_mh"
	RoleChiefAccountant   Role = "ke_toan"
	RoleDirector          Role = "giam_doc"
	RoleSiteSupervisor    Role = "giam_sat"
	RoleSupplier          Role = "ncc"
	RoleQuantitySurveyor  Role = "phong_os" // owns project BOQ quotas
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePurchasingManager, RolePurchasingStaff, RoleChiefAccountant,
		RoleDirector, RoleSiteSupervisor, RoleSupplier, RoleQuantitySurveyor:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Actor is the already-authenticated caller of a workflow operation
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// NewActor creates an actor
func NewActor(userID uuid.UUID, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Permission names a guarded workflow mutation
type Permission string

const (
	PermCreateRequest   Permission = "request:create"
	PermCreateRFQ       Permission = "rfq:create"
	PermSubmitQuotation Permission = "quotation:create"
	PermSelectQuotation Permission = "quotation:select"
	PermCreatePO        Permission = "po:create"
	PermSendPO          Permission = "po:send"
	PermIssueStock      Permission = "stock:issue"
	PermReceiveStock    Permission = "stock:receive"
	PermRestock         Permission = "material:restock"
	PermCheckDelivery   Permission = "delivery:check"
	PermManagePayment   Permission = "payment:manage"
	PermManageQuota     Permission = "quota:manage"
	PermTrackDelivery   Permission = "tracking:write"
	PermEvaluate        Permission = "supplier:evaluate"
)

var permissionRoles = map[Permission][]Role{
	PermCreateRequest:   {RolePurchasingStaff, RoleSiteSupervisor},
	PermCreateRFQ:       {RolePurchasingManager},
	PermSubmitQuotation: {RoleSupplier},
	PermSelectQuotation: {RolePurchasingManager},
	PermCreatePO:        {RolePurchasingManager},
	PermSendPO:          {RolePurchasingManager},
	PermIssueStock:      {RolePurchasingManager, RolePurchasingStaff},
	PermReceiveStock:    {RoleSiteSupervisor},
	PermRestock:         {},
	PermCheckDelivery:   {RoleSiteSupervisor},
	PermManagePayment:   {RoleChiefAccountant},
	PermManageQuota:     {RoleQuantitySurveyor},
	PermTrackDelivery:   {RolePurchasingManager, RolePurchasingStaff},
	PermEvaluate:        {RolePurchasingManager, RoleSiteSupervisor},
}

// Can reports whether the role grants the permission. Admin holds every permission.
func (r Role) Can(p Permission) bool {
	if r == RoleAdmin {
		return true
	}
	return slices.Contains(permissionRoles[p], r)
}

// Authorize fails with PermissionDenied unless the actor's role grants p
func (a Actor) Authorize(p Permission) error {
	if a.Role.Can(p) {
		return nil
	}
	return shared.NewPermissionDeniedError(fmt.Sprintf("Role %s is not allowed to %s", a.Role, p)).
		WithDetail("permission", string(p))
}

// approverRolesByLevel maps approval levels to the roles that sign them
var approverRolesByLevel = map[int][]Role{
	1: {RolePurchasingManager},
	2: {RoleChiefAccountant},
	3: {RoleDirector},
}

// ApproverRole returns the non-admin role that signs the given level
func ApproverRole(level int) (Role, bool) {
	roles := approverRolesByLevel[level]
	if len(roles) == 0 {
		return "", false
	}
	return roles[0], true
}

// CanApproveLevel reports whether the role may sign the given approval level
func (r Role) CanApproveLevel(level int) bool {
	if r == RoleAdmin {
		return true
	}
	return slices.Contains(approverRolesByLevel[level], r)
}
