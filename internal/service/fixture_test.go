package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Hems566/eter-projectv1.0/config"
	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	"github.com/Hems566/eter-projectv1.0/pkg/clock"
)

// ── test fixture ──

// testNow is 2025-03-10 10:00 UTC; every date rule in the tests is relative to it.
var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memStore
	repo  *repository.Repository
	svc   *Service
	opts  Options

	admin     Actor
	buyer     Actor
	requester Actor
	other     Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	repo := newMockRepository(store)
	opts := DefaultOptions()
	opts.Clock = clock.Fixed(testNow)

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: store,
		repo:  repo,
		svc:   NewService(&config.Config{}, repo, nil, nil, nil, opts, zap.NewNop()),
		opts:  opts,
	}
	f.admin = f.addUser("admin", model.RoleAdmin, "")
	f.buyer = f.addUser("buyer", model.RoleBuyer, model.DeptLogistics)
	f.requester = f.addUser("requester", model.RoleRequester, model.DeptWorks)
	f.other = f.addUser("other", model.RoleRequester, model.DeptEquipment)
	return f
}

func (f *fixture) addUser(username string, role model.Role, dept string) Actor {
	u := &model.User{
		UserID:     uuid.NewString(),
		Username:   username,
		FullName:   username,
		Role:       role,
		Department: dept,
		IsActive:   true,
	}
	if err := f.repo.User.Create(f.ctx, u); err != nil {
		f.t.Fatalf("seed user: %v", err)
	}
	return NewActor(u.UserID, role, dept)
}

func (f *fixture) addItem(category model.EquipmentCategory, mode model.BillingMode, price string) *model.CatalogItem {
	item := &model.CatalogItem{
		CatalogItemID: uuid.NewString(),
		Category:      category,
		BillingMode:   mode,
		UnitPrice:     decimal.RequireFromString(price),
		IsActive:      true,
	}
	if err := f.repo.CatalogItem.Create(f.ctx, item); err != nil {
		f.t.Fatalf("seed catalog item: %v", err)
	}
	return item
}

func (f *fixture) addSupplier(name, taxID string) *model.Supplier {
	sp := &model.Supplier{SupplierID: uuid.NewString(), TaxID: taxID, Name: name, IsActive: true}
	if err := f.repo.Supplier.Create(f.ctx, sp); err != nil {
		f.t.Fatalf("seed supplier: %v", err)
	}
	return sp
}

func (f *fixture) createRequest(months int, lines ...dto.RequestLineInput) *dto.RentalRequestResponse {
	f.t.Helper()
	resp, err := f.svc.RentalRequest.Create(f.ctx, &dto.CreateRentalRequestRequest{
		Site:           "Nouadhibou road, km 12",
		DurationMonths: months,
		Lines:          lines,
	}, f.requester)
	if err != nil {
		f.t.Fatalf("create request: %v", err)
	}
	return resp
}

func (f *fixture) validatedRequest(months int, lines ...dto.RequestLineInput) *dto.RentalRequestResponse {
	f.t.Helper()
	req := f.createRequest(months, lines...)
	if _, err := f.svc.RentalRequest.Submit(f.ctx, req.ID, f.requester); err != nil {
		f.t.Fatalf("submit: %v", err)
	}
	resp, err := f.svc.RentalRequest.Decide(f.ctx, req.ID, f.buyer, dto.DecisionApprove, "ok")
	if err != nil {
		f.t.Fatalf("approve: %v", err)
	}
	return resp
}

func (f *fixture) suppliedRequest(compliant bool, unitID string, months int, lines ...dto.RequestLineInput) (*dto.RentalRequestResponse, *dto.SupplyAssignmentResponse) {
	f.t.Helper()
	req := f.validatedRequest(months, lines...)
	supplier := f.addSupplier("Sahel Equipements "+unitID, uniqueTaxID(f.store))
	a, err := f.svc.Supply.Create(f.ctx, &dto.CreateSupplyAssignmentRequest{
		RequestID:  req.ID,
		SupplierID: supplier.SupplierID,
		AssignedOn: "2025-03-09",
		UnitID:     unitID,
		Compliant:  compliant,
	}, f.buyer)
	if err != nil {
		f.t.Fatalf("supply: %v", err)
	}
	return req, a
}

// engagedLine walks one single-line request through the workflow and opens a log
// sheet for the first 30 days of the engagement starting 2025-03-15.
func (f *fixture) engagedLine(item *model.CatalogItem, qty, months int) (*dto.EngagementResponse, *dto.LogSheetResponse) {
	f.t.Helper()
	req, a := f.suppliedRequest(true, "UNIT-"+uuid.NewString()[:6], months,
		dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: qty})
	eng, err := f.svc.Engagement.Create(f.ctx, &dto.CreateEngagementRequest{
		AssignmentID: a.ID,
		StartDate:    "2025-03-15",
	}, f.buyer)
	if err != nil {
		f.t.Fatalf("engage: %v", err)
	}
	sheet, err := f.svc.LogSheet.CreateSheet(f.ctx, &dto.CreateLogSheetRequest{
		EngagementID: eng.ID,
		LineID:       req.Lines[0].ID,
		SheetNumber:  "AT-" + eng.Number,
		PeriodStart:  "2025-03-15",
		PeriodEnd:    "2025-04-13",
	}, f.buyer)
	if err != nil {
		f.t.Fatalf("create log sheet: %v", err)
	}
	return eng, sheet
}

func uniqueTaxID(s *memStore) string {
	s.mu.Lock()
	n := len(s.suppliers)
	s.mu.Unlock()
	return decimal.NewFromInt(int64(10000000 + n)).String()
}

func hours(v string) decimal.Decimal { return decimal.RequireFromString(v) }
