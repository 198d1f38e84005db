package service

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Hems566/eter-projectv1.0/internal/dto"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// ── Create ──

func TestRentalRequestService_Create_BudgetFromLines(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")

	resp := f.createRequest(3, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 2})

	if resp.ProvisionalBudget != "18000.000" {
		t.Errorf("budget = %s, want 18000.000", resp.ProvisionalBudget)
	}
	if len(resp.Lines) != 1 || resp.Lines[0].Subtotal != "18000.000" {
		t.Fatalf("lines = %+v", resp.Lines)
	}
	if resp.Number != "DL-2025-0001" {
		t.Errorf("number = %s, want DL-2025-0001", resp.Number)
	}
	if resp.Status != model.RequestDraft {
		t.Errorf("status = %s, want DRAFT", resp.Status)
	}
	if resp.Department != model.DeptWorks {
		t.Errorf("department = %q, want the owner's", resp.Department)
	}
	if resp.RequestDate != "2025-03-10" {
		t.Errorf("request date = %s", resp.RequestDate)
	}
}

func TestRentalRequestService_Create_SequentialNumbers(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryTruck, model.BillingPerDay, "10")
	line := dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1}

	for i, want := range []string{"DL-2025-0001", "DL-2025-0002", "DL-2025-0003"} {
		if got := f.createRequest(1, line).Number; got != want {
			t.Errorf("request %d number = %s, want %s", i, got, want)
		}
	}
}

func TestRentalRequestService_Create_RetriesNumberCollision(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryTruck, model.BillingPerDay, "10")
	line := dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1}
	f.createRequest(1, line)

	f.store.staleLatest = 1
	if got := f.createRequest(1, line).Number; got != "DL-2025-0002" {
		t.Errorf("number after retry = %s, want DL-2025-0002", got)
	}
}

func TestRentalRequestService_Create_NumberExhausted(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryTruck, model.BillingPerDay, "10")
	line := dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1}
	f.createRequest(1, line)

	f.store.staleLatest = f.opts.NumberRetryAttempts
	_, err := f.svc.RentalRequest.Create(f.ctx, &dto.CreateRentalRequestRequest{
		Site: "site", DurationMonths: 1, Lines: []dto.RequestLineInput{line},
	}, f.requester)
	if !errors.Is(err, pkgerrors.Conflict(pkgerrors.RuleDuplicateNumber, "")) {
		t.Errorf("want duplicate_number conflict, got %v", err)
	}
}

func TestRentalRequestService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	inactive := f.addItem(model.CategoryOther, model.BillingPerDay, "1")
	inactive.IsActive = false
	_ = f.repo.CatalogItem.Update(f.ctx, inactive)
	line := dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1}

	tests := []struct {
		name string
		req  dto.CreateRentalRequestRequest
	}{
		{"zero months", dto.CreateRentalRequestRequest{Site: "s", DurationMonths: 0, Lines: []dto.RequestLineInput{line}}},
		{"seven months", dto.CreateRentalRequestRequest{Site: "s", DurationMonths: 7, Lines: []dto.RequestLineInput{line}}},
		{"no lines", dto.CreateRentalRequestRequest{Site: "s", DurationMonths: 1}},
		{"blank site", dto.CreateRentalRequestRequest{Site: "  ", DurationMonths: 1, Lines: []dto.RequestLineInput{line}}},
		{"duplicate item", dto.CreateRentalRequestRequest{Site: "s", DurationMonths: 1, Lines: []dto.RequestLineInput{line, line}}},
		{"zero quantity", dto.CreateRentalRequestRequest{Site: "s", DurationMonths: 1,
			Lines: []dto.RequestLineInput{{CatalogItemID: item.CatalogItemID, Quantity: 0}}}},
		{"inactive item", dto.CreateRentalRequestRequest{Site: "s", DurationMonths: 1,
			Lines: []dto.RequestLineInput{{CatalogItemID: inactive.CatalogItemID, Quantity: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RentalRequest.Create(f.ctx, &tt.req, f.requester)
			if !errors.Is(err, pkgerrors.ErrValidation) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
}

func TestRentalRequestService_Create_SnapshotsUnitPrice(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})

	// Catalog price changes behind the service's back; the line keeps its snapshot.
	item.UnitPrice = decimal.NewFromInt(999)
	_ = f.repo.CatalogItem.Update(f.ctx, item)

	got, err := f.svc.RentalRequest.Get(f.ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Lines[0].UnitPrice != "100.000" || got.ProvisionalBudget != "3000.000" {
		t.Errorf("line = %+v budget = %s", got.Lines[0], got.ProvisionalBudget)
	}
}

// Budget always equals the sum of quantity × price × months × 30 over the lines.
func TestRentalRequestService_BudgetProperty(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(7))
	categories := []model.EquipmentCategory{
		model.CategoryGrader, model.CategoryBulldozer, model.CategoryExcavator, model.CategoryCompactor,
		model.CategoryTruck, model.CategoryLightVehicle, model.CategoryGenerator, model.CategoryOther,
	}
	items := make([]*model.CatalogItem, len(categories))
	for i, c := range categories {
		price := decimal.New(int64(rng.Intn(500000)+1), -3)
		items[i] = f.addItem(c, model.BillingPerDay, price.String())
	}

	for round := 0; round < 25; round++ {
		months := rng.Intn(6) + 1
		n := rng.Intn(len(items)) + 1
		perm := rng.Perm(len(items))[:n]

		var lines []dto.RequestLineInput
		want := decimal.Zero
		for _, idx := range perm {
			qty := rng.Intn(5) + 1
			lines = append(lines, dto.RequestLineInput{CatalogItemID: items[idx].CatalogItemID, Quantity: qty})
			want = want.Add(items[idx].UnitPrice.Mul(decimal.NewFromInt(int64(qty * months * 30))).Round(3))
		}

		resp := f.createRequest(months, lines...)
		if resp.ProvisionalBudget != want.StringFixed(3) {
			t.Fatalf("round %d: budget = %s, want %s", round, resp.ProvisionalBudget, want.StringFixed(3))
		}
	}
}

// ── Update / Delete ──

func TestRentalRequestService_Update_DurationRecomputesBudget(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 2})

	months := 3
	resp, err := f.svc.RentalRequest.Update(f.ctx, req.ID, &dto.UpdateRentalRequestRequest{DurationMonths: &months}, f.requester)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if resp.ProvisionalBudget != "18000.000" {
		t.Errorf("budget = %s, want 18000.000", resp.ProvisionalBudget)
	}
}

func TestRentalRequestService_Update_ReplacesLines(t *testing.T) {
	f := newFixture(t)
	grader := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	truck := f.addItem(model.CategoryTruck, model.BillingPerDay, "20")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: grader.CatalogItemID, Quantity: 1})

	resp, err := f.svc.RentalRequest.Update(f.ctx, req.ID, &dto.UpdateRentalRequestRequest{
		Lines: []dto.RequestLineInput{{CatalogItemID: truck.CatalogItemID, Quantity: 5}},
	}, f.requester)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(resp.Lines) != 1 || resp.Lines[0].CatalogItemID != truck.CatalogItemID {
		t.Fatalf("lines = %+v", resp.Lines)
	}
	if resp.ProvisionalBudget != "3000.000" {
		t.Errorf("budget = %s, want 3000.000", resp.ProvisionalBudget)
	}
}

func TestRentalRequestService_Update_OwnerLookupFailure(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})

	storeErr := errors.New("connection reset")
	f.store.userErr = storeErr
	site := "new site"
	if _, err := f.svc.RentalRequest.Update(f.ctx, req.ID, &dto.UpdateRentalRequestRequest{Site: &site}, f.requester); !errors.Is(err, storeErr) {
		t.Fatalf("want store error, got %v", err)
	}

	f.store.userErr = nil
	got, err := f.svc.RentalRequest.Get(f.ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Site == site {
		t.Error("site changed although the update failed")
	}
}

func TestRentalRequestService_Update_Editability(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	line := dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1}
	site := "new site"

	submitted := f.createRequest(1, line)
	if _, err := f.svc.RentalRequest.Submit(f.ctx, submitted.ID, f.requester); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.RentalRequest.Update(f.ctx, submitted.ID, &dto.UpdateRentalRequestRequest{Site: &site}, f.requester)
	if !errors.Is(err, ErrRequestNotEditable) {
		t.Errorf("SUBMITTED: want ErrRequestNotEditable, got %v", err)
	}

	if _, err := f.svc.RentalRequest.Decide(f.ctx, submitted.ID, f.buyer, dto.DecisionReject, "missing site plan"); err != nil {
		t.Fatal(err)
	}
	resp, err := f.svc.RentalRequest.Update(f.ctx, submitted.ID, &dto.UpdateRentalRequestRequest{Site: &site}, f.requester)
	if err != nil {
		t.Fatalf("REJECTED should be editable: %v", err)
	}
	if resp.Site != site {
		t.Errorf("site = %q", resp.Site)
	}
}

func TestRentalRequestService_Update_NotOwner(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})
	site := "x"

	_, err := f.svc.RentalRequest.Update(f.ctx, req.ID, &dto.UpdateRentalRequestRequest{Site: &site}, f.other)
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("want forbidden, got %v", err)
	}
	if _, err := f.svc.RentalRequest.Update(f.ctx, req.ID, &dto.UpdateRentalRequestRequest{Site: &site}, f.admin); err != nil {
		t.Errorf("admin update: %v", err)
	}
}

func TestRentalRequestService_Delete(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	line := dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1}

	draft := f.createRequest(1, line)
	if err := f.svc.RentalRequest.Delete(f.ctx, draft.ID, f.requester); err != nil {
		t.Fatalf("Delete draft: %v", err)
	}
	if _, err := f.svc.RentalRequest.Get(f.ctx, draft.ID); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("want not found after delete, got %v", err)
	}

	submitted := f.createRequest(1, line)
	_, _ = f.svc.RentalRequest.Submit(f.ctx, submitted.ID, f.requester)
	if err := f.svc.RentalRequest.Delete(f.ctx, submitted.ID, f.requester); !errors.Is(err, pkgerrors.ErrPrecondition) {
		t.Errorf("want precondition deleting a submitted request, got %v", err)
	}
}

// ── Workflow ──

func TestRentalRequestService_SubmitWithdraw(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})

	if _, err := f.svc.RentalRequest.Submit(f.ctx, req.ID, f.other); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("non-owner submit: want forbidden, got %v", err)
	}

	resp, err := f.svc.RentalRequest.Submit(f.ctx, req.ID, f.requester)
	if err != nil || resp.Status != model.RequestSubmitted {
		t.Fatalf("submit: %v %+v", err, resp)
	}
	if _, err := f.svc.RentalRequest.Submit(f.ctx, req.ID, f.requester); !errors.Is(err, pkgerrors.ErrWorkflow) {
		t.Errorf("double submit: want workflow error, got %v", err)
	}

	resp, err = f.svc.RentalRequest.Withdraw(f.ctx, req.ID, f.requester)
	if err != nil || resp.Status != model.RequestDraft {
		t.Fatalf("withdraw: %v %+v", err, resp)
	}
}

func TestRentalRequestService_Submit_NoLines(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})
	_ = f.repo.RequestLine.DeleteByRequest(f.ctx, req.ID)

	_, err := f.svc.RentalRequest.Submit(f.ctx, req.ID, f.requester)
	if !errors.Is(err, ErrRequestHasNoLines) {
		t.Errorf("want ErrRequestHasNoLines, got %v", err)
	}
}

func TestRentalRequestService_Decide_AppendsObservation(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})
	_, _ = f.svc.RentalRequest.Submit(f.ctx, req.ID, f.requester)

	resp, err := f.svc.RentalRequest.Decide(f.ctx, req.ID, f.buyer, dto.DecisionApprove, "budget checked")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if resp.Status != model.RequestValidated {
		t.Errorf("status = %s, want VALIDATED", resp.Status)
	}
	if resp.ValidatorID == nil || *resp.ValidatorID != f.buyer.UserID || resp.ValidatedAt == nil {
		t.Errorf("validator not recorded: %+v", resp)
	}
	if resp.Observations != "Validation (10/03/2025 10:00): budget checked" {
		t.Errorf("observations = %q", resp.Observations)
	}
}

func TestRentalRequestService_Decide_SecondDecisionFails(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})
	_, _ = f.svc.RentalRequest.Submit(f.ctx, req.ID, f.requester)

	if _, err := f.svc.RentalRequest.Decide(f.ctx, req.ID, f.buyer, dto.DecisionApprove, ""); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.RentalRequest.Decide(f.ctx, req.ID, f.admin, dto.DecisionReject, "too late")
	if !errors.Is(err, pkgerrors.ErrWorkflow) {
		t.Fatalf("want workflow error, got %v", err)
	}

	got, _ := f.svc.RentalRequest.Get(f.ctx, req.ID)
	if got.Status != model.RequestValidated || strings.Contains(got.Observations, "too late") {
		t.Errorf("second decision leaked: %+v", got)
	}
}

func TestRentalRequestService_Decide_RequiresCapability(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	req := f.createRequest(1, dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1})
	_, _ = f.svc.RentalRequest.Submit(f.ctx, req.ID, f.requester)

	if _, err := f.svc.RentalRequest.Decide(f.ctx, req.ID, f.requester, dto.DecisionApprove, ""); !errors.Is(err, ErrCannotValidate) {
		t.Errorf("want ErrCannotValidate, got %v", err)
	}
}

func TestAppendObservation(t *testing.T) {
	at := testNow
	got := appendObservation("", "  ", at)
	if got != "" {
		t.Errorf("blank note appended: %q", got)
	}
	got = appendObservation("first", "second", at)
	if got != "first\n\nValidation (10/03/2025 10:00): second" {
		t.Errorf("got %q", got)
	}
}

// ── Read ──

func TestRentalRequestService_ListAndStats(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(model.CategoryGrader, model.BillingPerDay, "100")
	line := dto.RequestLineInput{CatalogItemID: item.CatalogItemID, Quantity: 1}

	a := f.createRequest(1, line)
	f.createRequest(1, line)
	_, _ = f.svc.RentalRequest.Submit(f.ctx, a.ID, f.requester)

	pending, err := f.svc.RentalRequest.ListPending(f.ctx, f.buyer)
	if err != nil || len(pending) != 1 || pending[0].ID != a.ID {
		t.Fatalf("pending = %+v, err = %v", pending, err)
	}
	if _, err := f.svc.RentalRequest.ListPending(f.ctx, f.requester); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("requester pending list: want forbidden, got %v", err)
	}

	mine, total, err := f.svc.RentalRequest.List(f.ctx, &dto.RentalRequestListRequest{}, f.other)
	if err != nil || total != 0 || len(mine) != 0 {
		t.Errorf("other requester sees %d requests", total)
	}

	stats, err := f.svc.RentalRequest.Stats(f.ctx, f.buyer)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.ByStatus[model.RequestDraft] != 1 || stats.ByStatus[model.RequestSubmitted] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
