package auth

import (
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
)

// Permission represents a single resource-action pair.
type Permission struct {
	Resource string
	Action   string
}

// Resources guarded by RBAC
const (
	ResourceBookings = "bookings"
	ResourceStations = "stations"
	ResourceUsers    = "users"
	ResourceReports  = "reports"
	ResourceAdmin    = "admin"
)

// Actions
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionManage = "manage"
)

// RBACService maps roles to the resource/action pairs they may use.
type RBACService struct {
	permissions map[domain.UserRole][]Permission
	log         *zap.Logger
}

// NewRBACService creates a new RBACService with predefined role permissions.
//
// Roles:
//   - admin           : everything, including user status changes
//   - support_officer : station review, reports, read-only users
//   - station_owner   : own stations and the bookings made on them
//   - ev_owner        : own bookings, reports
func NewRBACService(log *zap.Logger) *RBACService {
	permissions := map[domain.UserRole][]Permission{
		domain.UserRoleAdmin: {
			{Resource: ResourceBookings, Action: ActionRead},
			{Resource: ResourceBookings, Action: ActionWrite},
			{Resource: ResourceBookings, Action: ActionManage},
			{Resource: ResourceStations, Action: ActionRead},
			{Resource: ResourceStations, Action: ActionWrite},
			{Resource: ResourceStations, Action: ActionManage},
			{Resource: ResourceUsers, Action: ActionRead},
			{Resource: ResourceUsers, Action: ActionWrite},
			{Resource: ResourceUsers, Action: ActionManage},
			{Resource: ResourceReports, Action: ActionRead},
			{Resource: ResourceReports, Action: ActionWrite},
			{Resource: ResourceReports, Action: ActionManage},
			{Resource: ResourceAdmin, Action: ActionRead},
			{Resource: ResourceAdmin, Action: ActionManage},
		},
		domain.UserRoleSupportOfficer: {
			{Resource: ResourceBookings, Action: ActionRead},
			{Resource: ResourceBookings, Action: ActionManage},
			{Resource: ResourceStations, Action: ActionRead},
			{Resource: ResourceStations, Action: ActionManage},
			{Resource: ResourceUsers, Action: ActionRead},
			{Resource: ResourceReports, Action: ActionRead},
			{Resource: ResourceReports, Action: ActionWrite},
			{Resource: ResourceReports, Action: ActionManage},
			{Resource: ResourceAdmin, Action: ActionRead},
		},
		domain.UserRoleStationOwner: {
			{Resource: ResourceBookings, Action: ActionRead},
			{Resource: ResourceBookings, Action: ActionManage},
			{Resource: ResourceStations, Action: ActionRead},
			{Resource: ResourceStations, Action: ActionWrite},
			{Resource: ResourceReports, Action: ActionWrite},
		},
		domain.UserRoleEVOwner: {
			{Resource: ResourceBookings, Action: ActionRead},
			{Resource: ResourceBookings, Action: ActionWrite},
			{Resource: ResourceStations, Action: ActionRead},
			{Resource: ResourceReports, Action: ActionWrite},
		},
	}

	log.Info("RBAC service initialized",
		zap.Int("roles", len(permissions)),
	)

	return &RBACService{
		permissions: permissions,
		log:         log,
	}
}

// CheckPermission reports whether role may perform action on resource.
func (s *RBACService) CheckPermission(role domain.UserRole, resource, action string) bool {
	perms, exists := s.permissions[role]
	if !exists {
		s.log.Warn("unknown role attempted access",
			zap.String("role", string(role)),
			zap.String("resource", resource),
			zap.String("action", action),
		)
		return false
	}

	for _, p := range perms {
		if p.Resource == resource && p.Action == action {
			return true
		}
	}

	s.log.Warn("permission denied",
		zap.String("role", string(role)),
		zap.String("resource", resource),
		zap.String("action", action),
	)
	return false
}

// GetPermissions returns all permissions assigned to the given role.
// Returns nil if the role does not exist.
func (s *RBACService) GetPermissions(role domain.UserRole) []Permission {
	perms, exists := s.permissions[role]
	if !exists {
		return nil
	}

	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}
