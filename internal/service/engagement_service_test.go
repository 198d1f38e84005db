package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

func TestEngagementService_Create(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req, a := f.suppliedRequest(true, "GR-7", 1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 2})

	eng, err := f.svc.Engagement.Create(f.ctx, &dto.CreateEngagementRequest{
		AssignmentID:      a.ID,
		StartDate:         "2025-03-15",
		SpecialConditions: "operator supplied",
	}, f.buyer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if eng.Number != "CTL-2025-0001" {
		t.Errorf("number = %s", eng.Number)
	}
	if eng.StartDate != "2025-03-15" || eng.EndDate != "2025-04-14" {
		t.Errorf("dates = %s..%s, want 2025-03-15..2025-04-14", eng.StartDate, eng.EndDate)
	}
	if eng.ProvisionalBudget != req.ProvisionalBudget {
		t.Errorf("budget snapshot = %s, want %s", eng.ProvisionalBudget, req.ProvisionalBudget)
	}
	if eng.DaysRemaining != 35 {
		t.Errorf("days remaining = %d, want 35", eng.DaysRemaining)
	}
	if eng.ResponsibleID != f.buyer.UserID || eng.UnitID != "GR-7" || eng.RequestNumber != req.Number {
		t.Errorf("details = %+v", eng)
	}

	got, _ := f.svc.RentalRequest.Get(f.ctx, req.ID)
	if got.Status != model.RequestContracted {
		t.Errorf("request status = %s, want CONTRACTED", got.Status)
	}

	_, err = f.svc.Engagement.Create(f.ctx, &dto.CreateEngagementRequest{AssignmentID: a.ID, StartDate: "2025-03-15"}, f.buyer)
	if !errors.Is(err, ErrRequestNotSupplied) {
		t.Errorf("second engagement: want ErrRequestNotSupplied, got %v", err)
	}
}

func TestEngagementService_Create_NonCompliantAssignment(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req, a := f.suppliedRequest(false, "GR-8", 1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})

	_, err := f.svc.Engagement.Create(f.ctx, &dto.CreateEngagementRequest{AssignmentID: a.ID, StartDate: "2025-03-15"}, f.buyer)
	if !errors.Is(err, pkgerrors.ErrPrecondition) || !errors.Is(err, ErrAssignmentNotCompliant) {
		t.Fatalf("want ErrAssignmentNotCompliant, got %v", err)
	}

	f.store.mu.Lock()
	n := len(f.store.engagements)
	f.store.mu.Unlock()
	if n != 0 {
		t.Errorf("%d engagement rows created", n)
	}
	if got, _ := f.svc.RentalRequest.Get(f.ctx, req.ID); got.Status != model.RequestSupplied {
		t.Errorf("request status = %s, want SUPPLIED", got.Status)
	}
}

func TestEngagementService_Create_StartWindow(t *testing.T) {
	tests := []struct {
		start string
		ok    bool
	}{
		{"2025-03-09", false},
		{"2025-03-10", true},
		{"2025-04-09", true},
		{"2025-04-10", false},
		{"not-a-date", false},
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			f := newFixture(t)
			item := f.addItem(model.CategoryTruck, model.BillingPerDay, "20")
			_, a := f.suppliedRequest(true, "TR-1", 1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})

			_, err := f.svc.Engagement.Create(f.ctx, &dto.CreateEngagementRequest{AssignmentID: a.ID, StartDate: tt.start}, f.buyer)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, pkgerrors.ErrValidation) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
}

func TestEngagementService_Create_Forbidden(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryTruck, model.BillingPerDay, "20")
	_, a := f.suppliedRequest(true, "TR-2", 1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})

	_, err := f.svc.Engagement.Create(f.ctx, &dto.CreateEngagementRequest{AssignmentID: a.ID, StartDate: "2025-03-15"}, f.requester)
	if !errors.Is(err, ErrCannotEngage) {
		t.Errorf("want ErrCannotEngage, got %v", err)
	}
}

func TestEngagementService_GetTotals_FallsBackToBudget(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	eng, _ := f.engagedLine(item, 2, 3)

	totals, err := f.svc.Engagement.GetTotals(f.ctx, eng.ID)
	if err != nil {
		t.Fatal(err)
	}
	if totals.ProvisionalBudget != "18000.000" {
		t.Errorf("budget = %s, want 18000.000", totals.ProvisionalBudget)
	}
	if totals.CurrentAmount != totals.ProvisionalBudget {
		t.Errorf("current = %s, want the budget while nothing is billed", totals.CurrentAmount)
	}
	if totals.BilledAmount != "0.000" {
		t.Errorf("billed = %s, want 0.000", totals.BilledAmount)
	}
}

func TestEngagementService_Update(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	_, a := f.suppliedRequest(true, "GR-9", 2, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})
	eng, err := f.svc.Engagement.Create(f.ctx, &dto.CreateEngagementRequest{AssignmentID: a.ID, StartDate: "2025-03-15"}, f.buyer)
	if err != nil {
		t.Fatal(err)
	}

	start := "2025-03-20"
	cond := "night shifts excluded"
	updated, err := f.svc.Engagement.Update(f.ctx, eng.ID, &dto.UpdateEngagementRequest{StartDate: &start, SpecialConditions: &cond}, f.buyer)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.StartDate != "2025-03-20" || updated.EndDate != "2025-05-19" || updated.SpecialConditions != cond {
		t.Errorf("updated = %+v", updated)
	}
}

func TestEngagementService_Update_StartLockedBySheets(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	eng, _ := f.engagedLine(item, 1, 2)

	start := "2025-03-20"
	_, err := f.svc.Engagement.Update(f.ctx, eng.ID, &dto.UpdateEngagementRequest{StartDate: &start}, f.buyer)
	if !errors.Is(err, ErrEngagementHasSheets) {
		t.Errorf("want ErrEngagementHasSheets, got %v", err)
	}

	// Other fields stay editable.
	cond := "fuel by supplier"
	if _, err := f.svc.Engagement.Update(f.ctx, eng.ID, &dto.UpdateEngagementRequest{SpecialConditions: &cond}, f.buyer); err != nil {
		t.Errorf("conditions update: %v", err)
	}
}

// seedEngagement stores an engagement directly so dates in the past can be tested.
func seedEngagement(f *fixture, number string, start time.Time, days int, budget, billed string) {
	f.t.Helper()
	e := &model.Engagement{
		EngagementID:      uuid.NewString(),
		AssignmentID:      uuid.NewString(),
		Number:            number,
		StartDate:         start,
		EndDate:           start.AddDate(0, 0, days),
		ProvisionalBudget: decimal.RequireFromString(budget),
		CurrentAmount:     decimal.RequireFromString(billed),
		ResponsibleID:     f.buyer.UserID,
	}
	if err := f.repo.Engagement.Create(f.ctx, e); err != nil {
		f.t.Fatalf("seed engagement: %v", err)
	}
}

func TestEngagementService_ExpiringAndExpired(t *testing.T) {
	f := newFixture(t)
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	seedEngagement(f, "CTL-2025-0001", today.AddDate(0, 0, -60), 30, "100", "0")  // ended 2025-02-08
	seedEngagement(f, "CTL-2025-0002", today.AddDate(0, 0, -25), 30, "200", "50") // ends 2025-03-15
	seedEngagement(f, "CTL-2025-0003", today.AddDate(0, 0, -30), 30, "300", "0")  // ends today
	seedEngagement(f, "CTL-2025-0004", today, 60, "400", "0")                     // ends 2025-05-09

	expiring, err := f.svc.Engagement.ListExpiring(f.ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(expiring) != 2 || expiring[0].Number != "CTL-2025-0003" || expiring[1].Number != "CTL-2025-0002" {
		t.Errorf("expiring = %+v", expiring)
	}
	if expiring[0].DaysRemaining != 0 || expiring[1].DaysRemaining != 5 {
		t.Errorf("days remaining = %d, %d", expiring[0].DaysRemaining, expiring[1].DaysRemaining)
	}

	wide := 90
	if all, _ := f.svc.Engagement.ListExpiring(f.ctx, &wide); len(all) != 3 {
		t.Errorf("within 90 days = %d, want 3", len(all))
	}
	negative := -1
	if _, err := f.svc.Engagement.ListExpiring(f.ctx, &negative); !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("negative window: want validation error, got %v", err)
	}

	expired, err := f.svc.Engagement.ListExpired(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(expired) != 1 || expired[0].Number != "CTL-2025-0001" || expired[0].DaysRemaining != 0 {
		t.Errorf("expired = %+v", expired)
	}

	stats, err := f.svc.Engagement.Stats(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := dto.EngagementStatsResponse{Total: 4, Active: 3, Expired: 1, ExpiringSoon: 2, CurrentAmount: "850.000"}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestEngagementService_NotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Engagement.Get(f.ctx, "missing"); !errors.Is(err, ErrEngagementNotFound) {
		t.Errorf("Get: %v", err)
	}
	if _, err := f.svc.Engagement.GetTotals(f.ctx, "missing"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("GetTotals: %v", err)
	}
}
