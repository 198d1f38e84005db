package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Hems566/eter-projectv1.0/config"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	"github.com/Hems566/eter-projectv1.0/pkg/clock"
	"github.com/Hems566/eter-projectv1.0/pkg/jwt"
	"github.com/Hems566/eter-projectv1.0/pkg/redis"
)

// Service aggregates every business service.
type Service struct {
	Auth          AuthService
	Catalog       CatalogService
	RentalRequest RentalRequestService
	Supply        SupplyService
	Engagement    EngagementService
	LogSheet      LogSheetService
	Verification  VerificationService
	Export        ExportService
	Aggregation   AggregationService
}

// Options are the workflow tunables shared by the services.
type Options struct {
	Clock               clock.Clock
	Location            *time.Location
	StartWindowDays     int
	ExpiringWithinDays  int
	NumberRetryAttempts int
}

// DefaultOptions match the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Clock:               clock.System,
		Location:            time.UTC,
		StartWindowDays:     30,
		ExpiringWithinDays:  10,
		NumberRetryAttempts: 3,
	}
}

// OptionsFromConfig reads the workflow section.
func OptionsFromConfig(cfg *config.WorkflowConfig) Options {
	return Options{
		Clock:               clock.System,
		Location:            cfg.Location(),
		StartWindowDays:     cfg.StartWindowDays,
		ExpiringWithinDays:  cfg.ExpiringWithinDays,
		NumberRetryAttempts: cfg.NumberRetryAttempts,
	}
}

func (o Options) today() time.Time {
	return clock.Today(o.Clock, o.Location)
}

// Actor is the caller of an operation, resolved once from the authenticated identity.
type Actor struct {
	UserID       string
	Role         model.Role
	Department   string
	Capabilities model.Capabilities
}

// NewActor resolves capabilities from the role.
func NewActor(userID string, role model.Role, department string) Actor {
	return Actor{
		UserID:       userID,
		Role:         role,
		Department:   department,
		Capabilities: model.CapabilitiesFor(role),
	}
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// NewService wires every service.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	store ReportStore,
	opts Options,
	logger *zap.Logger,
) *Service {
	agg := NewAggregationService(logger)
	return &Service{
		Auth:          NewAuthService(repo, jwtMgr, rdb, logger),
		Catalog:       NewCatalogService(repo, logger),
		RentalRequest: NewRentalRequestService(repo, agg, opts, logger),
		Supply:        NewSupplyService(repo, opts, logger),
		Engagement:    NewEngagementService(repo, opts, logger),
		LogSheet:      NewLogSheetService(repo, agg, opts, logger),
		Verification:  NewVerificationService(repo, logger),
		Export:        NewExportService(repo, store, cfg.Storage.PresignExpiry, opts, logger),
		Aggregation:   agg,
	}
}
