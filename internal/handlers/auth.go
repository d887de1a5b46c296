package handlers

import (
	"context"
	"errors"
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

// Onboarder seeds the data a new tenant needs before it can quote.
type Onboarder interface {
	Onboard(ctx context.Context, tenantID string) (*models.SystemParameters, error)
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
	tenants     db.TenantCollection
	onboarder   Onboarder
	logger      log.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, users db.UserCollection, tenants db.TenantCollection, onboarder Onboarder, logger log.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
		tenants:     tenants,
		onboarder:   onboarder,
		logger:      logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Username and password are required", err)
		return
	}

	user, err := h.users.FindUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.Unauthorized(c, auth.ErrInvalidCredentials.Error())
		return
	}
	if !user.IsActive {
		response.Unauthorized(c, auth.ErrUserInactive.Error())
		return
	}
	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, auth.ErrInvalidCredentials.Error())
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to generate token", nil)
		return
	}

	if err := h.users.UpdateLastLogin(c.Request.Context(), user.ID.Hex()); err != nil {
		h.logger.WithFields(log.Fields{"user_id": user.ID.Hex(), "error": err}).Warn("Failed to update last login")
	}

	response.Success(c, http.StatusOK, "Login successful", resp)
}

// Register signs up a company: it creates the tenant, its first admin and
// the default rate sheet.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid registration request", err)
		return
	}
	req.Company = strings.TrimSpace(req.Company)
	if req.Company == "" {
		response.FromError(c, xerrors.Invalid("company", "is required"))
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

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to hash password", nil)
		return
	}

	tenant := models.NewTenant(req.Company)
	if err := h.tenants.InsertTenant(ctx, tenant); err != nil {
		h.logger.WithError(err).Error("Failed to create tenant")
		response.FromError(c, err)
		return
	}
	tenantID := tenant.ID.Hex()

	user := &models.User{
		TenantID:     tenantID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}
	if err := h.users.InsertUser(ctx, user); err != nil {
		h.logger.WithFields(log.Fields{"tenant_id": tenantID, "error": err}).Error("Failed to create user")
		h.undoRegistration(ctx, tenantID, "")
		response.FromError(c, err)
		return
	}

	if _, err := h.onboarder.Onboard(ctx, tenantID); err != nil {
		h.logger.WithFields(log.Fields{"tenant_id": tenantID, "error": err}).Error("Failed to seed system parameters")
		h.undoRegistration(ctx, tenantID, user.ID.Hex())
		response.FromError(c, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to generate token", nil)
		return
	}

	h.logger.WithFields(log.Fields{
		"tenant_id": tenantID,
		"company":   tenant.Name,
		"username":  user.Username,
	}).Info("Tenant registered")
	response.Success(c, http.StatusCreated, "Registration successful", resp)
}

// undoRegistration removes the user (when userID is set) and the tenant of a
// registration that failed part way, so the company can sign up again.
func (h *AuthHandler) undoRegistration(ctx context.Context, tenantID, userID string) {
	ctx = context.WithoutCancel(ctx)
	fields := log.Fields{"tenant_id": tenantID}
	if userID != "" {
		if err := h.users.DeleteUser(ctx, tenantID, userID); err != nil {
			h.logger.WithFields(fields).WithError(err).Error("Failed to remove user of failed registration")
		}
	}
	if err := h.tenants.DeleteTenant(ctx, tenantID); err != nil {
		h.logger.WithFields(fields).WithError(err).Error("Failed to remove tenant of failed registration")
	}
}

func (h *AuthHandler) issueTokens(user *models.User) (*models.LoginResponse, error) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, RefreshToken: refreshToken, User: *user}, nil
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "", user)
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid JSON", err)
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		if err := h.authService.ValidateEmail(req.Email); err != nil {
			response.BadRequest(c, err.Error(), nil)
			return
		}
		existing, err := h.users.FindUserByEmail(c.Request.Context(), req.Email)
		if err == nil && existing.ID != user.ID {
			response.Error(c, http.StatusConflict, "Email already exists", nil)
			return
		}
		user.Email = req.Email
	}

	if err := h.users.UpdateUser(c.Request.Context(), user.ID.Hex(), *user); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword changes the current user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Current password and new password are required", err)
		return
	}
	if err := h.authService.ValidatePassword(req.NewPassword); err != nil {
		response.BadRequest(c, err.Error(), nil)
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !h.authService.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		response.Unauthorized(c, "Current password is incorrect")
		return
	}

	hash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to hash password", nil)
		return
	}
	user.PasswordHash = hash
	if err := h.users.UpdateUser(c.Request.Context(), user.ID.Hex(), *user); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// currentUser loads the authenticated user. It writes the error response
// and returns false when that is not possible.
func (h *AuthHandler) currentUser(c *gin.Context) (*models.User, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "User context not found")
		return nil, false
	}

	user, err := h.users.FindUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Error(c, http.StatusNotFound, auth.ErrUserNotFound.Error(), nil)
		} else {
			response.FromError(c, err)
		}
		return nil, false
	}
	if user.TenantID != claims.TenantID {
		response.Forbidden(c, "Insufficient permissions")
		return nil, false
	}
	return user, true
}
