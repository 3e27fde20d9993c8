package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/fareway/internal/audit/domain"
	"github.com/smallbiznis/fareway/internal/audit/masking"
	"github.com/smallbiznis/fareway/internal/observability/metrics"
	"github.com/smallbiznis/fareway/internal/routing/domain"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("routing.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func validStatus(s domain.ProviderStatus) bool {
	switch s {
	case domain.StatusActive, domain.StatusDegraded, domain.StatusOffline:
		return true
	}
	return false
}

func normalizeRouting(routing *domain.CountryRouting) (domain.CountryRouting, error) {
	if routing == nil {
		return domain.CountryRouting{}, nil
	}
	out := domain.CountryRouting{
		Enabled:   routing.Enabled,
		Exclusive: routing.Exclusive,
	}
	for _, country := range routing.AllowedCountries {
		code := strings.ToUpper(strings.TrimSpace(country))
		if len(code) != 2 {
			return domain.CountryRouting{}, domain.ErrInvalidCountry
		}
		out.AllowedCountries = append(out.AllowedCountries, code)
	}
	return out, nil
}

func (s *service) CreateProvider(ctx context.Context, req domain.CreateProviderRequest) (*domain.Provider, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.ErrInvalidName
	}
	if strings.TrimSpace(req.ServiceType) == "" {
		return nil, domain.ErrInvalidServiceType
	}
	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}
	if !validStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	if req.PriorityWeight != nil && *req.PriorityWeight < 0 {
		return nil, domain.ErrInvalidWeight
	}
	routing, err := normalizeRouting(req.CountryRouting)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, s.db, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateName
	}

	creds := req.Credentials
	if creds == nil {
		creds = map[string]string{}
	}

	provider := &domain.Provider{
		ID:             s.genID.Generate(),
		Name:           strings.TrimSpace(req.Name),
		ServiceType:    req.ServiceType,
		Status:         status,
		IsActive:       true,
		PriorityWeight: req.PriorityWeight,
		CountryRouting: datatypes.NewJSONType(routing),
		Credentials:    datatypes.NewJSONType(creds),
	}
	if err := s.repo.Insert(ctx, s.db, provider); err != nil {
		return nil, err
	}

	s.log.Info("provider created",
		zap.String("provider_id", provider.ID.String()),
		zap.String("name", provider.Name),
		zap.String("service_type", provider.ServiceType),
	)
	return provider, nil
}

func (s *service) UpdateProvider(ctx context.Context, id snowflake.ID, req domain.UpdateProviderRequest) (*domain.Provider, error) {
	provider, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, domain.ErrNotFound
	}

	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		provider.Status = *req.Status
	}
	if req.IsActive != nil {
		provider.IsActive = *req.IsActive
	}
	if req.PriorityWeight != nil {
		if *req.PriorityWeight < 0 {
			return nil, domain.ErrInvalidWeight
		}
		provider.PriorityWeight = req.PriorityWeight
	}
	if req.CountryRouting != nil {
		routing, err := normalizeRouting(req.CountryRouting)
		if err != nil {
			return nil, err
		}
		provider.CountryRouting = datatypes.NewJSONType(routing)
	}
	credentialsChanged := req.Credentials != nil
	if credentialsChanged {
		provider.Credentials = datatypes.NewJSONType(req.Credentials)
	}

	if err := s.repo.Update(ctx, s.db, provider); err != nil {
		return nil, err
	}

	if credentialsChanged && s.auditSvc != nil {
		masked := map[string]any{}
		for key, value := range req.Credentials {
			masked[key] = value
		}
		targetID := provider.ID.String()
		if err := s.auditSvc.AuditLog(ctx, nil, "", nil,
			"routing.provider_credentials_updated", "provider", &targetID,
			map[string]any{"credentials": masking.MaskJSON(masked)},
		); err != nil {
			s.log.Warn("failed to audit credential update", zap.Error(err))
		}
	}
	return provider, nil
}

func (s *service) GetProvider(ctx context.Context, id snowflake.ID) (*domain.Provider, error) {
	provider, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, domain.ErrNotFound
	}
	return provider, nil
}

func (s *service) ListProviders(ctx context.Context, serviceType string, activeOnly bool) ([]*domain.Provider, error) {
	return s.repo.List(ctx, s.db, serviceType, activeOnly)
}

func (s *service) Select(ctx context.Context, req domain.SelectRequest) (*domain.SelectResult, error) {
	if strings.TrimSpace(req.ServiceType) == "" {
		return nil, domain.ErrInvalidServiceType
	}

	providers, err := s.repo.List(ctx, s.db, req.ServiceType, true)
	if err != nil {
		return nil, err
	}

	selection, err := domain.Select(providers, domain.SelectionInput{
		ServiceType: req.ServiceType,
		Country:     strings.ToUpper(strings.TrimSpace(req.Country)),
		ExcludeIDs:  req.ExcludeIDs,
	})
	if err != nil {
		s.log.Warn("no provider available",
			zap.String("service_type", req.ServiceType),
			zap.String("country", req.Country),
		)
		return nil, err
	}

	s.metrics.RecordProviderSelection(ctx, req.ServiceType, selection.Provider.Name)

	result := &domain.SelectResult{Provider: selection.Provider.Redacted()}
	for _, fallback := range selection.Fallbacks {
		result.Fallbacks = append(result.Fallbacks, fallback.Redacted())
	}
	return result, nil
}
