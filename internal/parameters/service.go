// Package parameters manages each tenant's yearly rate sheets and serves the
// active one through a read-through cache.
package parameters

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/cache"
	"github.com/ukydev/fleetquote/internal/db"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/pricing"
	"github.com/ukydev/fleetquote/internal/xerrors"
)

// Service handles system parameter operations.
type Service struct {
	store  db.ParametersCollection
	cache  cache.ParametersCache
	logger log.FieldLogger
	now    func() time.Time
}

// NewService creates a parameters service. A nil cache disables caching.
func NewService(store db.ParametersCollection, c cache.ParametersCache, logger log.FieldLogger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{store: store, cache: c, logger: logger, now: time.Now}
}

// Active returns the tenant's active parameters, from cache when possible.
// Cache failures are logged and fall through to the store.
func (s *Service) Active(ctx context.Context, tenantID string) (*models.SystemParameters, error) {
	p, ok, err := s.cache.Get(ctx, tenantID)
	if err != nil {
		s.logger.WithFields(log.Fields{"tenant_id": tenantID, "error": err}).Warn("Parameters cache read failed")
	}
	if ok {
		return p, nil
	}

	p, err = s.store.FindActiveParameters(ctx, tenantID)
	if err != nil {
		return nil, xerrors.Wrap(err, "load active parameters")
	}

	if err := s.cache.Set(ctx, p); err != nil {
		s.logger.WithFields(log.Fields{"tenant_id": tenantID, "error": err}).Warn("Parameters cache write failed")
	}
	return p, nil
}

// Get returns one record of the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*models.SystemParameters, error) {
	return s.store.FindParametersByID(ctx, tenantID, id)
}

// List returns every record of the tenant.
func (s *Service) List(ctx context.Context, tenantID string) ([]models.SystemParameters, error) {
	return s.store.ListParameters(ctx, tenantID)
}

// Create validates and stores a new record for tenantID. An active record
// replaces the current active one.
func (s *Service) Create(ctx context.Context, tenantID string, p *models.SystemParameters) (*models.SystemParameters, error) {
	p.TenantID = tenantID
	applyDefaults(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.InsertParameters(ctx, p); err != nil {
		return nil, xerrors.Wrap(err, "create parameters")
	}
	s.invalidate(ctx, tenantID)

	s.logger.WithFields(log.Fields{
		"tenant_id":     tenantID,
		"parameters_id": p.ID.Hex(),
		"year":          p.Year,
		"active":        p.IsActive,
	}).Info("System parameters created")
	return p, nil
}

// Update replaces the rates of an existing record.
func (s *Service) Update(ctx context.Context, tenantID, id string, p *models.SystemParameters) (*models.SystemParameters, error) {
	p.TenantID = tenantID
	applyDefaults(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateParameters(ctx, tenantID, id, *p); err != nil {
		return nil, xerrors.Wrap(err, "update parameters")
	}
	s.invalidate(ctx, tenantID)

	s.logger.WithFields(log.Fields{"tenant_id": tenantID, "parameters_id": id}).Info("System parameters updated")
	return s.store.FindParametersByID(ctx, tenantID, id)
}

// Activate makes id the tenant's only active record.
func (s *Service) Activate(ctx context.Context, tenantID, id string) (*models.SystemParameters, error) {
	if err := s.store.ActivateParameters(ctx, tenantID, id); err != nil {
		return nil, xerrors.Wrap(err, "activate parameters")
	}
	s.invalidate(ctx, tenantID)

	s.logger.WithFields(log.Fields{"tenant_id": tenantID, "parameters_id": id}).Info("System parameters activated")
	return s.store.FindParametersByID(ctx, tenantID, id)
}

// Onboard seeds the default rate sheet for the current year.
func (s *Service) Onboard(ctx context.Context, tenantID string) (*models.SystemParameters, error) {
	p := models.DefaultSystemParameters(tenantID, s.now().Year())
	if err := s.store.InsertParameters(ctx, p); err != nil {
		return nil, xerrors.Wrap(err, "seed parameters")
	}
	s.invalidate(ctx, tenantID)
	return p, nil
}

func (s *Service) invalidate(ctx context.Context, tenantID string) {
	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		s.logger.WithFields(log.Fields{"tenant_id": tenantID, "error": err}).Warn("Parameters cache invalidation failed")
	}
}

func applyDefaults(p *models.SystemParameters) {
	if len(p.MarkupOptions) == 0 {
		p.MarkupOptions = append([]float64(nil), pricing.DefaultMarkups...)
	}
	if p.RecommendedMarkup == 0 {
		p.RecommendedMarkup = pricing.DefaultRecommendedMarkup
	}
	if p.PreferredCurrency == "" {
		p.PreferredCurrency = models.CurrencyHNL
	}
	if p.PreferredDistanceUnit == "" {
		p.PreferredDistanceUnit = "km"
	}
	// A negative unit is kept and means rounding to cents.
	if p.LocalRoundingUnit == 0 {
		p.LocalRoundingUnit = pricing.DefaultLocalRoundingUnit
	}
	if p.ForeignRoundingUnit == 0 {
		p.ForeignRoundingUnit = pricing.DefaultForeignRoundingUnit
	}
}
