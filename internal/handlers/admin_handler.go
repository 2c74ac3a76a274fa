package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/services"
	"github.com/shikhoron/qna-service/internal/utils"
)

// AdminHandler exposes account management: the admin console session,
// user listing and removal, suspensions, the moderator roster and the
// xlsx account export.
type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	userService  services.UserService
}

func NewAdminHandler(adminService services.AdminService, userService services.UserService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		userService:  userService,
	}
}

// ===== SESSION =====

// Login opens an administrator session. Credentials that resolve to a
// non-admin account are rejected and the issued session is rolled back.
func (h *AdminHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if resp.User.Role != models.RoleAdmin {
		if err := h.userService.Logout(c.Request.Context(), resp.Token); err != nil {
			h.LogError(c, "Failed to roll back non-admin session", err)
		}
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Administrator credentials required"})
		return
	}

	c.SetCookie(SessionCookieName, resp.Token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, resp)
}

// Logout destroys the administrator session
func (h *AdminHandler) Logout(c *gin.Context) {
	if token := TokenFromContext(c); token != "" {
		if err := h.userService.Logout(c.Request.Context(), token); err != nil {
			h.handleServiceError(c, err)
			return
		}
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out"})
}

// Session reports whether the current session carries the admin flag
func (h *AdminHandler) Session(c *gin.Context) {
	actor := ActorFromContext(c)
	if !actor.IsAdmin {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "No administrator session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"actor": actor})
}

// ===== USERS =====

// ListUsers returns accounts matching the query, role and pagination filters
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Query: c.Query("query"),
	}

	if roles := c.Query("role"); roles != "" {
		for _, r := range strings.Split(roles, ",") {
			filters.Roles = append(filters.Roles, models.UserRole(r))
		}
	}
	filters.Limit, filters.Offset = paginationFromQuery(c)

	users, err := h.adminService.ListUsers(c.Request.Context(), ActorFromContext(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteUser removes an account
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), ActorFromContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

// SuspendUser blocks an account from logging in
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	h.setSuspended(c, true)
}

// UnsuspendUser restores a suspended account
func (h *AdminHandler) UnsuspendUser(c *gin.Context) {
	h.setSuspended(c, false)
}

func (h *AdminHandler) setSuspended(c *gin.Context, suspended bool) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.adminService.SetSuspended(c.Request.Context(), ActorFromContext(c), id, suspended)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ExportUsers streams every account as an xlsx workbook
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	data, err := h.adminService.ExportUsers(c.Request.Context(), ActorFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("users-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ===== MODERATORS =====

// ListModerators returns all moderator accounts
func (h *AdminHandler) ListModerators(c *gin.Context) {
	moderators, err := h.adminService.ListModerators(c.Request.Context(), ActorFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"moderators": moderators, "total": len(moderators)})
}

// AddModerator promotes an existing account or creates a new one
func (h *AdminHandler) AddModerator(c *gin.Context) {
	var req services.ModeratorCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	moderator, err := h.adminService.AddModerator(c.Request.Context(), ActorFromContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, moderator)
}

// UpdateModerator edits a moderator account
func (h *AdminHandler) UpdateModerator(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ModeratorUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	moderator, err := h.adminService.UpdateModerator(c.Request.Context(), ActorFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, moderator)
}

// RemoveModerator demotes a moderator back to their base role
func (h *AdminHandler) RemoveModerator(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.adminService.RemoveModerator(c.Request.Context(), ActorFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
