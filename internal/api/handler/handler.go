package handler

import "github.com/Hems566/eter-projectv1.0/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth          *AuthHandler
	Catalog       *CatalogHandler
	RentalRequest *RentalRequestHandler
	Supply        *SupplyHandler
	Engagement    *EngagementHandler
	LogSheet      *LogSheetHandler
	Verification  *VerificationHandler
	Export        *ExportHandler
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth),
		Catalog:       NewCatalogHandler(svc.Catalog),
		RentalRequest: NewRentalRequestHandler(svc.RentalRequest),
		Supply:        NewSupplyHandler(svc.Supply),
		Engagement:    NewEngagementHandler(svc.Engagement),
		LogSheet:      NewLogSheetHandler(svc.LogSheet),
		Verification:  NewVerificationHandler(svc.Verification),
		Export:        NewExportHandler(svc.Export),
	}
}
