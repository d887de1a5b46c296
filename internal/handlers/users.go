package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/auth"
	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/middleware"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/response"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

// UserHandler lets tenant administrators manage their team.
type UserHandler struct {
	authService *auth.Service
	users       db.UserCollection
	logger      log.FieldLogger
}

func NewUserHandler(authService *auth.Service, users db.UserCollection, logger log.FieldLogger) *UserHandler {
	return &UserHandler{authService: authService, users: users, logger: logger}
}

// CreateUserRequest adds a user to the caller's tenant.
type CreateUserRequest struct {
	Username  string      `json:"username" binding:"required"`
	Email     string      `json:"email" binding:"required"`
	Password  string      `json:"password" binding:"required"`
	Role      models.Role `json:"role" binding:"required"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

// UpdateUserRequest changes role, names or whether the user may log in.
// Empty fields are left as they are.
type UpdateUserRequest struct {
	Role      models.Role `json:"role"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	IsActive  *bool       `json:"is_active"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.FindUsersByTenant(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.Success(c, http.StatusOK, "", users)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid user request", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if !models.IsValidRole(req.Role) {
		response.FromError(c, xerrors.Invalid("role", "must be admin, manager, operator or viewer"))
		return
	}
	for _, check := range []error{
		h.authService.ValidateUsername(req.Username),
		h.authService.ValidateEmail(req.Email),
		h.authService.ValidatePassword(req.Password),
	} {
		if check != nil {
			response.BadRequest(c, check.Error(), nil)
			return
		}
	}

	ctx := c.Request.Context()
	if _, err := h.users.FindUserByUsername(ctx, req.Username); err == nil {
		response.Error(c, http.StatusConflict, "Username already exists", nil)
		return
	}
	if _, err := h.users.FindUserByEmail(ctx, req.Email); err == nil {
		response.Error(c, http.StatusConflict, "Email already exists", nil)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to hash password", nil)
		return
	}

	tenantID := middleware.TenantID(c)
	user := &models.User{
		TenantID:     tenantID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}
	if err := h.users.InsertUser(ctx, user); err != nil {
		response.FromError(c, err)
		return
	}

	h.logger.WithFields(log.Fields{
		"tenant_id": tenantID,
		"user_id":   user.ID.Hex(),
		"role":      user.Role,
	}).Info("User created")
	response.Success(c, http.StatusCreated, "User created", user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid user request", err)
		return
	}
	if req.Role != "" && !models.IsValidRole(req.Role) {
		response.FromError(c, xerrors.Invalid("role", "must be admin, manager, operator or viewer"))
		return
	}

	user, ok := h.tenantUser(c)
	if !ok {
		return
	}
	claims, _ := middleware.GetClaims(c)
	if user.ID.Hex() == claims.UserID && (req.Role != "" && req.Role != user.Role || req.IsActive != nil && !*req.IsActive) {
		response.Forbidden(c, "You cannot change your own role or deactivate yourself")
		return
	}

	if req.Role != "" {
		user.Role = req.Role
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.users.UpdateUser(c.Request.Context(), user.ID.Hex(), *user); err != nil {
		response.FromError(c, err)
		return
	}
	h.logger.WithFields(log.Fields{"tenant_id": user.TenantID, "user_id": user.ID.Hex()}).Info("User updated")
	response.Success(c, http.StatusOK, "User updated", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	if c.Param("id") == claims.UserID {
		response.Forbidden(c, "You cannot delete yourself")
		return
	}

	tenantID := middleware.TenantID(c)
	if err := h.users.DeleteUser(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	h.logger.WithFields(log.Fields{"tenant_id": tenantID, "user_id": c.Param("id")}).Info("User deleted")
	response.Success(c, http.StatusOK, "User deleted", nil)
}

// tenantUser loads the :id user. Users of other tenants are reported as not
// found.
func (h *UserHandler) tenantUser(c *gin.Context) (*models.User, bool) {
	user, err := h.users.FindUserByID(c.Request.Context(), c.Param("id"))
	if err == nil && user.TenantID != middleware.TenantID(c) {
		err = xerrors.ErrNotFound
	}
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	return user, true
}
