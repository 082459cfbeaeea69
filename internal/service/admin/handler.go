package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/internal/service/auth"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler handles admin HTTP requests
type Handler struct {
	service  ports.AdminService
	stations ports.StationService
	reports  ports.ReportService
}

// NewHandler creates a new admin handler
func NewHandler(service ports.AdminService, stations ports.StationService, reports ports.ReportService) *Handler {
	return &Handler{
		service:  service,
		stations: stations,
		reports:  reports,
	}
}

// RegisterRoutes registers admin routes. Every route needs a staff role;
// changing a user's status additionally needs users:manage.
func (h *Handler) RegisterRoutes(router fiber.Router, authMiddleware fiber.Handler, rbac middleware.PermissionChecker) {
	admin := router.Group("/admin", authMiddleware, middleware.RequireRoles(domain.UserRoleAdmin, domain.UserRoleSupportOfficer))

	// Dashboard
	admin.Get("/dashboard", middleware.RequirePermission(rbac, auth.ResourceAdmin, auth.ActionRead), h.GetDashboard)

	// Stations
	admin.Get("/stations/pending", h.GetPendingStations)
	admin.Patch("/stations/:id/approve", middleware.RequirePermission(rbac, auth.ResourceStations, auth.ActionManage), h.ApproveStation)
	admin.Patch("/stations/:id/reject", middleware.RequirePermission(rbac, auth.ResourceStations, auth.ActionManage), h.RejectStation)

	// Users
	admin.Get("/users", middleware.RequirePermission(rbac, auth.ResourceUsers, auth.ActionRead), h.GetUsers)
	admin.Patch("/users/:id/status", middleware.RequirePermission(rbac, auth.ResourceUsers, auth.ActionManage), h.UpdateUserStatus)

	// Reports
	admin.Get("/reports", h.GetReports)
	admin.Get("/reports/export", h.ExportReports)
	admin.Patch("/reports/:id/resolve", middleware.RequirePermission(rbac, auth.ResourceReports, auth.ActionManage), h.ResolveReport)
}

// GetDashboard handles GET /api/v1/admin/dashboard
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// GetPendingStations handles GET /api/v1/admin/stations/pending
func (h *Handler) GetPendingStations(c *fiber.Ctx) error {
	stations, err := h.service.PendingStations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stations)
}

// ReviewRequest carries the optional review note
type ReviewRequest struct {
	Note string `json:"note"`
}

// ApproveStation handles PATCH /api/v1/admin/stations/:id/approve
func (h *Handler) ApproveStation(c *fiber.Ctx) error {
	return h.review(c, true)
}

// RejectStation handles PATCH /api/v1/admin/stations/:id/reject
func (h *Handler) RejectStation(c *fiber.Ctx) error {
	return h.review(c, false)
}

func (h *Handler) review(c *fiber.Ctx, approve bool) error {
	var req ReviewRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewValidationError("invalid request body")
		}
	}

	station, err := h.stations.Review(c.UserContext(), middleware.Actor(c), c.Params("id"), approve, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(station)
}

// GetUsers handles GET /api/v1/admin/users
func (h *Handler) GetUsers(c *fiber.Ctx) error {
	filter := domain.UserFilter{
		Status: c.Query("status"),
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}
	limit := c.QueryInt("limit", defaultPageSize)
	offset := c.QueryInt("offset", 0)

	users, total, err := h.service.ListUsers(c.UserContext(), filter, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// UserStatusRequest is the body of UpdateUserStatus
type UserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

// UpdateUserStatus handles PATCH /api/v1/admin/users/:id/status
func (h *Handler) UpdateUserStatus(c *fiber.Ctx) error {
	var req UserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	userID := c.Params("id")
	if userID == middleware.Actor(c).UserID && domain.UserStatus(req.Status) == domain.UserStatusSuspended {
		return domain.NewValidationError("you cannot suspend your own account")
	}

	if err := h.service.UpdateUserStatus(c.UserContext(), userID, domain.UserStatus(req.Status)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User status updated",
	})
}

// GetReports handles GET /api/v1/admin/reports
func (h *Handler) GetReports(c *fiber.Ctx) error {
	reports, err := h.reports.List(c.UserContext(), domain.ReportStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(reports)
}

// ResolveRequest is the body of ResolveReport
type ResolveRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

// ResolveReport handles PATCH /api/v1/admin/reports/:id/resolve
func (h *Handler) ResolveReport(c *fiber.Ctx) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	report, err := h.reports.Resolve(c.UserContext(), middleware.Actor(c), c.Params("id"), req.Resolution)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// ExportReports handles GET /api/v1/admin/reports/export
func (h *Handler) ExportReports(c *fiber.Ctx) error {
	status := domain.ReportStatus(c.Query("status"))
	switch status {
	case "", domain.ReportStatusOpen, domain.ReportStatusResolved:
	default:
		return domain.NewValidationError("status must be open or resolved")
	}

	data, err := h.service.ExportReports(c.UserContext(), status)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reports.xlsx"`)
	return c.Send(data)
}
