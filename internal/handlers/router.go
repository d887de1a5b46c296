package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/auth"
	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/middleware"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/response"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

// RouterConfig holds everything the HTTP API is built from.
type RouterConfig struct {
	Auth       *auth.Service
	Users      db.UserCollection
	Tenants    db.TenantCollection
	Vehicles   db.VehicleCollection
	Parameters interface {
		ParametersService
		Onboarder
	}
	Quotations QuotationService
	Limiter    middleware.Limiter
	Logger     log.FieldLogger
	// Checks are run by /health, keyed by component name.
	Checks map[string]Pinger
}

// NewRouter builds the gin engine with every API route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}
	if cfg.Limiter == nil {
		cfg.Limiter = middleware.NewMemoryLimiter()
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(cfg.Logger), middleware.Recovery(cfg.Logger))

	r.GET("/health", health(cfg.Checks))

	authMW := middleware.NewAuthMiddleware(cfg.Auth)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Users, cfg.Tenants, cfg.Parameters, cfg.Logger)
	vehicles := NewVehicleHandler(cfg.Vehicles, cfg.Logger)
	params := NewParametersHandler(cfg.Parameters)
	quotes := NewQuotationHandler(cfg.Quotations)
	users := NewUserHandler(cfg.Auth, cfg.Users, cfg.Logger)

	api := r.Group("/api")

	public := api.Group("/auth")
	public.POST("/login", middleware.RateLimit(cfg.Limiter, "login", 10, 15*time.Minute, cfg.Logger), authHandler.Login)
	public.POST("/register", middleware.RateLimit(cfg.Limiter, "register", 5, time.Hour, cfg.Logger), authHandler.Register)

	protected := api.Group("", authMW.Authenticate(), requireTenant(cfg.Tenants))

	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)
	protected.POST("/auth/change-password", authHandler.ChangePassword)

	protected.GET("/users", authMW.RequirePermission(models.ActionManageUsers), users.List)
	protected.POST("/users", authMW.RequirePermission(models.ActionManageUsers), users.Create)
	protected.PUT("/users/:id", authMW.RequirePermission(models.ActionManageUsers), users.Update)
	protected.DELETE("/users/:id", authMW.RequirePermission(models.ActionManageUsers), users.Delete)

	protected.GET("/vehicles", authMW.RequirePermission(models.ActionViewVehicles), vehicles.List)
	protected.GET("/vehicles/:id", authMW.RequirePermission(models.ActionViewVehicles), vehicles.Get)
	protected.POST("/vehicles", authMW.RequirePermission(models.ActionManageVehicles), vehicles.Create)
	protected.PUT("/vehicles/:id", authMW.RequirePermission(models.ActionManageVehicles), vehicles.Update)
	protected.DELETE("/vehicles/:id", authMW.RequirePermission(models.ActionManageVehicles), vehicles.Delete)

	protected.GET("/parameters", authMW.RequirePermission(models.ActionViewParameters), params.List)
	protected.GET("/parameters/active", authMW.RequirePermission(models.ActionViewParameters), params.Active)
	protected.GET("/parameters/:id", authMW.RequirePermission(models.ActionViewParameters), params.Get)
	protected.POST("/parameters", authMW.RequirePermission(models.ActionManageParameters), params.Create)
	protected.PUT("/parameters/:id", authMW.RequirePermission(models.ActionManageParameters), params.Update)
	protected.POST("/parameters/:id/activate", authMW.RequirePermission(models.ActionManageParameters), params.Activate)

	protected.POST("/quotations/estimate", authMW.RequirePermission(models.ActionCreateQuotation), quotes.Estimate)
	protected.POST("/quotations", authMW.RequirePermission(models.ActionCreateQuotation), quotes.Create)
	protected.GET("/quotations", authMW.RequirePermission(models.ActionViewQuotations), quotes.List)
	protected.GET("/quotations/:id", authMW.RequirePermission(models.ActionViewQuotations), quotes.Get)

	return r
}

// requireTenant rejects requests without a tenant in their claims, or whose
// tenant is missing or suspended.
func requireTenant(tenants db.TenantCollection) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := middleware.TenantID(c)
		if tenantID == "" {
			response.FromError(c, xerrors.ErrForbidden)
			return
		}

		tenant, err := tenants.FindTenantByID(c.Request.Context(), tenantID)
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			response.Forbidden(c, "Tenant not found")
			return
		case err != nil:
			response.FromError(c, err)
			return
		case !tenant.IsActive():
			response.Forbidden(c, "Tenant is suspended")
			return
		}
		c.Next()
	}
}

func health(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "components": components})
	}
}
