package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/internal/repository"
	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// ── in-memory store shared by every mock repository ──

// memStore holds rows by value so callers never alias stored state.
type memStore struct {
	mu sync.Mutex

	users         map[string]model.User
	items         map[string]model.CatalogItem
	suppliers     map[string]model.Supplier
	requests      map[string]model.RentalRequest
	lines         map[string]model.RequestLine
	assignments   map[string]model.SupplyAssignment
	engagements   map[string]model.Engagement
	sheets        map[string]model.DailyLogSheet
	entries       map[string]model.DailyEntry
	verifications map[string]model.VerificationSheet

	// writes counts aggregate writes by kind: line_subtotal, request_budget, sheet_total, engagement_amount.
	writes map[string]int
	// staleLatest makes LatestNumber report nothing for the next n calls, forcing a number collision.
	staleLatest int
	// userErr fails every user lookup.
	userErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]model.User),
		items:         make(map[string]model.CatalogItem),
		suppliers:     make(map[string]model.Supplier),
		requests:      make(map[string]model.RentalRequest),
		lines:         make(map[string]model.RequestLine),
		assignments:   make(map[string]model.SupplyAssignment),
		engagements:   make(map[string]model.Engagement),
		sheets:        make(map[string]model.DailyLogSheet),
		entries:       make(map[string]model.DailyEntry),
		verifications: make(map[string]model.VerificationSheet),
		writes:        make(map[string]int),
	}
}

func (s *memStore) writeCount(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[kind]
}

// newMockRepository builds a Repository without a database on top of store.
func newMockRepository(store *memStore) *repository.Repository {
	return &repository.Repository{
		User:              &mockUserRepo{s: store},
		CatalogItem:       &mockCatalogItemRepo{s: store},
		Supplier:          &mockSupplierRepo{s: store},
		RentalRequest:     &mockRentalRequestRepo{s: store},
		RequestLine:       &mockRequestLineRepo{s: store},
		SupplyAssignment:  &mockSupplyAssignmentRepo{s: store},
		Engagement:        &mockEngagementRepo{s: store},
		LogSheet:          &mockLogSheetRepo{s: store},
		DailyEntry:        &mockDailyEntryRepo{s: store},
		VerificationSheet: &mockVerificationRepo{s: store},
	}
}

func duplicate(constraint string) error {
	return pkgerrors.Conflict(pkgerrors.RuleDuplicate, "duplicate value violates %s", constraint)
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// latestNumber mirrors the SQL ordering: longest first, then lexical.
func (s *memStore) latestNumber(numbers []string, prefix string) string {
	if s.staleLatest > 0 {
		s.staleLatest--
		return ""
	}
	best := ""
	for _, n := range numbers {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		if len(n) > len(best) || (len(n) == len(best) && n > best) {
			best = n
		}
	}
	return best
}

// ── User ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return duplicate("uq_users_username")
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.s.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.userErr != nil {
		return nil, m.s.userErr
	}
	u, ok := m.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.User
	for _, u := range m.s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, offset, limit), int64(len(all)), nil
}

// ── CatalogItem / Supplier ──

type mockCatalogItemRepo struct{ s *memStore }

func (m *mockCatalogItemRepo) Create(_ context.Context, item *model.CatalogItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, it := range m.s.items {
		if it.Category == item.Category {
			return duplicate("uq_catalog_items_category")
		}
	}
	m.s.items[item.CatalogItemID] = *item
	return nil
}

func (m *mockCatalogItemRepo) GetByID(_ context.Context, id string) (*model.CatalogItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	it, ok := m.s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (m *mockCatalogItemRepo) List(_ context.Context, activeOnly bool) ([]model.CatalogItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.CatalogItem
	for _, it := range m.s.items {
		if activeOnly && !it.IsActive {
			continue
		}
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

func (m *mockCatalogItemRepo) Update(_ context.Context, item *model.CatalogItem) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.items[item.CatalogItemID] = *item
	return nil
}

func (m *mockCatalogItemRepo) CountLines(_ context.Context, id string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, l := range m.s.lines {
		if l.CatalogItemID == id {
			n++
		}
	}
	return n, nil
}

type mockSupplierRepo struct{ s *memStore }

func (m *mockSupplierRepo) Create(_ context.Context, supplier *model.Supplier) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sp := range m.s.suppliers {
		if sp.TaxID == supplier.TaxID {
			return duplicate("uq_suppliers_tax_id")
		}
	}
	m.s.suppliers[supplier.SupplierID] = *supplier
	return nil
}

func (m *mockSupplierRepo) GetByID(_ context.Context, id string) (*model.Supplier, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sp, ok := m.s.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sp, nil
}

func (m *mockSupplierRepo) List(_ context.Context, activeOnly bool) ([]model.Supplier, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Supplier
	for _, sp := range m.s.suppliers {
		if activeOnly && !sp.IsActive {
			continue
		}
		result = append(result, sp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSupplierRepo) Update(_ context.Context, supplier *model.Supplier) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, sp := range m.s.suppliers {
		if id != supplier.SupplierID && sp.TaxID == supplier.TaxID {
			return duplicate("uq_suppliers_tax_id")
		}
	}
	m.s.suppliers[supplier.SupplierID] = *supplier
	return nil
}

// ── RentalRequest / RequestLine ──

type mockRentalRequestRepo struct{ s *memStore }

func (m *mockRentalRequestRepo) Create(_ context.Context, request *model.RentalRequest) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.requests {
		if r.Number == request.Number {
			return pkgerrors.Conflict(pkgerrors.RuleDuplicateNumber, "generated number already taken")
		}
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	row := *request
	row.Owner, row.Lines = nil, nil
	m.s.requests[request.RequestID] = row
	return nil
}

// withDetails joins owner and lines; caller holds the lock.
func (m *mockRentalRequestRepo) withDetails(r model.RentalRequest) *model.RentalRequest {
	if u, ok := m.s.users[r.OwnerID]; ok {
		r.Owner = &u
	}
	r.Lines = nil
	for _, l := range m.s.lines {
		if l.RequestID != r.RequestID {
			continue
		}
		if it, ok := m.s.items[l.CatalogItemID]; ok {
			l.CatalogItem = &it
		}
		r.Lines = append(r.Lines, l)
	}
	sort.Slice(r.Lines, func(i, j int) bool { return r.Lines[i].LineID < r.Lines[j].LineID })
	return &r
}

func (m *mockRentalRequestRepo) GetByID(_ context.Context, id string) (*model.RentalRequest, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.withDetails(r), nil
}

func (m *mockRentalRequestRepo) GetByIDForUpdate(_ context.Context, id string) (*model.RentalRequest, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *mockRentalRequestRepo) Update(_ context.Context, request *model.RentalRequest) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.requests[request.RequestID]
	if !ok || stored.Version != request.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Department = request.Department
	stored.Site = request.Site
	stored.DurationMonths = request.DurationMonths
	stored.Status = request.Status
	stored.Observations = request.Observations
	stored.ValidatedAt = request.ValidatedAt
	stored.ValidatorID = request.ValidatorID
	stored.UpdatedBy = request.UpdatedBy
	stored.Version++
	m.s.requests[request.RequestID] = stored
	request.Version = stored.Version
	return nil
}

func (m *mockRentalRequestRepo) UpdateBudget(_ context.Context, id string, budget decimal.Decimal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r := m.s.requests[id]
	r.ProvisionalBudget = budget
	m.s.requests[id] = r
	m.s.writes["request_budget"]++
	return nil
}

func (m *mockRentalRequestRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.requests, id)
	return nil
}

func matchesFilter(r model.RentalRequest, f repository.RequestFilter) bool {
	if f.OwnerID != "" && r.OwnerID != f.OwnerID {
		return false
	}
	if f.Department != "" && r.Department != f.Department {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

func (m *mockRentalRequestRepo) List(_ context.Context, filter repository.RequestFilter, offset, limit int) ([]model.RentalRequest, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.RentalRequest
	for _, r := range m.s.requests {
		if matchesFilter(r, filter) {
			if u, ok := m.s.users[r.OwnerID]; ok {
				r.Owner = &u
			}
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockRentalRequestRepo) CountByStatus(_ context.Context, filter repository.RequestFilter) (map[model.RequestStatus]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[model.RequestStatus]int64)
	for _, r := range m.s.requests {
		if matchesFilter(r, filter) {
			counts[r.Status]++
		}
	}
	return counts, nil
}

func (m *mockRentalRequestRepo) LatestNumber(_ context.Context, prefix string) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var numbers []string
	for _, r := range m.s.requests {
		numbers = append(numbers, r.Number)
	}
	return m.s.latestNumber(numbers, prefix), nil
}

type mockRequestLineRepo struct{ s *memStore }

func (m *mockRequestLineRepo) Create(_ context.Context, line *model.RequestLine) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.lines {
		if l.RequestID == line.RequestID && l.CatalogItemID == line.CatalogItemID {
			return duplicate("uq_request_lines_item")
		}
	}
	row := *line
	row.CatalogItem = nil
	m.s.lines[line.LineID] = row
	return nil
}

func (m *mockRequestLineRepo) GetByID(_ context.Context, id string) (*model.RequestLine, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	l, ok := m.s.lines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if it, ok := m.s.items[l.CatalogItemID]; ok {
		l.CatalogItem = &it
	}
	return &l, nil
}

func (m *mockRequestLineRepo) ListByRequest(_ context.Context, requestID string) ([]model.RequestLine, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.RequestLine
	for _, l := range m.s.lines {
		if l.RequestID == requestID {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LineID < result[j].LineID })
	return result, nil
}

func (m *mockRequestLineRepo) UpdateSubtotal(_ context.Context, id string, subtotal decimal.Decimal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	l := m.s.lines[id]
	l.Subtotal = subtotal
	m.s.lines[id] = l
	m.s.writes["line_subtotal"]++
	return nil
}

func (m *mockRequestLineRepo) DeleteByRequest(_ context.Context, requestID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, l := range m.s.lines {
		if l.RequestID == requestID {
			delete(m.s.lines, id)
		}
	}
	return nil
}

func (m *mockRequestLineRepo) SumSubtotals(_ context.Context, requestID string) (decimal.Decimal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sum := decimal.Zero
	for _, l := range m.s.lines {
		if l.RequestID == requestID {
			sum = sum.Add(l.Subtotal)
		}
	}
	return sum, nil
}

// ── SupplyAssignment ──

type mockSupplyAssignmentRepo struct{ s *memStore }

func (m *mockSupplyAssignmentRepo) Create(_ context.Context, a *model.SupplyAssignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.assignments {
		if existing.RequestID == a.RequestID {
			return duplicate("uq_supply_assignments_request")
		}
		if strings.EqualFold(existing.UnitID, a.UnitID) {
			return duplicate("uq_supply_assignments_unit_id")
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	row := *a
	row.Request, row.Supplier = nil, nil
	m.s.assignments[a.AssignmentID] = row
	return nil
}

// withDetails caller holds the lock.
func (m *mockSupplyAssignmentRepo) withDetails(a model.SupplyAssignment) *model.SupplyAssignment {
	if r, ok := m.s.requests[a.RequestID]; ok {
		a.Request = (&mockRentalRequestRepo{s: m.s}).withDetails(r)
	}
	if sp, ok := m.s.suppliers[a.SupplierID]; ok {
		a.Supplier = &sp
	}
	return &a
}

func (m *mockSupplyAssignmentRepo) GetByID(_ context.Context, id string) (*model.SupplyAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.withDetails(a), nil
}

func (m *mockSupplyAssignmentRepo) GetByIDForUpdate(_ context.Context, id string) (*model.SupplyAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *mockSupplyAssignmentRepo) GetByRequest(_ context.Context, requestID string) (*model.SupplyAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.assignments {
		if a.RequestID == requestID {
			return m.withDetails(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSupplyAssignmentRepo) UnitIDTaken(_ context.Context, unitID, excludeID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, a := range m.s.assignments {
		if id != excludeID && strings.EqualFold(a.UnitID, unitID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSupplyAssignmentRepo) Update(_ context.Context, a *model.SupplyAssignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	row := *a
	row.Request, row.Supplier = nil, nil
	m.s.assignments[a.AssignmentID] = row
	return nil
}

func (m *mockSupplyAssignmentRepo) List(_ context.Context, offset, limit int) ([]model.SupplyAssignment, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.SupplyAssignment
	for _, a := range m.s.assignments {
		all = append(all, *m.withDetails(a))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AssignedOn.After(all[j].AssignedOn) })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockSupplyAssignmentRepo) ListReady(_ context.Context) ([]model.SupplyAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	engaged := make(map[string]bool)
	for _, e := range m.s.engagements {
		engaged[e.AssignmentID] = true
	}
	var result []model.SupplyAssignment
	for _, a := range m.s.assignments {
		if a.Compliant && !engaged[a.AssignmentID] {
			result = append(result, *m.withDetails(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignedOn.Before(result[j].AssignedOn) })
	return result, nil
}

// ── Engagement ──

type mockEngagementRepo struct{ s *memStore }

func (m *mockEngagementRepo) Create(_ context.Context, e *model.Engagement) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.engagements {
		if existing.Number == e.Number {
			return pkgerrors.Conflict(pkgerrors.RuleDuplicateNumber, "generated number already taken")
		}
		if existing.AssignmentID == e.AssignmentID {
			return duplicate("uq_engagements_assignment")
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	row := *e
	row.Assignment = nil
	m.s.engagements[e.EngagementID] = row
	return nil
}

// withDetails caller holds the lock.
func (m *mockEngagementRepo) withDetails(e model.Engagement) *model.Engagement {
	if a, ok := m.s.assignments[e.AssignmentID]; ok {
		e.Assignment = (&mockSupplyAssignmentRepo{s: m.s}).withDetails(a)
	}
	return &e
}

func (m *mockEngagementRepo) GetByID(_ context.Context, id string) (*model.Engagement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.engagements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.withDetails(e), nil
}

func (m *mockEngagementRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Engagement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.engagements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (m *mockEngagementRepo) GetByAssignment(_ context.Context, assignmentID string) (*model.Engagement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, e := range m.s.engagements {
		if e.AssignmentID == assignmentID {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEngagementRepo) Update(_ context.Context, e *model.Engagement) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored := m.s.engagements[e.EngagementID]
	stored.StartDate = e.StartDate
	stored.EndDate = e.EndDate
	stored.ResponsibleID = e.ResponsibleID
	stored.SpecialConditions = e.SpecialConditions
	stored.UpdatedBy = e.UpdatedBy
	m.s.engagements[e.EngagementID] = stored
	return nil
}

func (m *mockEngagementRepo) UpdateCurrentAmount(_ context.Context, id string, amount decimal.Decimal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e := m.s.engagements[id]
	e.CurrentAmount = amount
	m.s.engagements[id] = e
	m.s.writes["engagement_amount"]++
	return nil
}

func (m *mockEngagementRepo) list(keep func(model.Engagement) bool) []model.Engagement {
	var result []model.Engagement
	for _, e := range m.s.engagements {
		if keep(e) {
			result = append(result, *m.withDetails(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EndDate.Before(result[j].EndDate) })
	return result
}

func (m *mockEngagementRepo) List(_ context.Context, offset, limit int) ([]model.Engagement, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := m.list(func(model.Engagement) bool { return true })
	return page(all, offset, limit), int64(len(all)), nil
}

func (m *mockEngagementRepo) ListEndingBetween(_ context.Context, from, to time.Time) ([]model.Engagement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.list(func(e model.Engagement) bool {
		return !e.EndDate.Before(from) && !e.EndDate.After(to)
	}), nil
}

func (m *mockEngagementRepo) ListEndedBefore(_ context.Context, day time.Time) ([]model.Engagement, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.list(func(e model.Engagement) bool { return e.EndDate.Before(day) }), nil
}

func (m *mockEngagementRepo) Summary(_ context.Context, today, soon time.Time) (*repository.EngagementSummary, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sum := &repository.EngagementSummary{}
	for _, e := range m.s.engagements {
		sum.Total++
		if e.EndDate.Before(today) {
			sum.Expired++
		} else {
			sum.Active++
		}
		if !e.EndDate.Before(today) && !e.EndDate.After(soon) {
			sum.ExpiringSoon++
		}
		sum.CurrentAmount = sum.CurrentAmount.Add(e.DisplayedAmount())
	}
	return sum, nil
}

func (m *mockEngagementRepo) LatestNumber(_ context.Context, prefix string) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var numbers []string
	for _, e := range m.s.engagements {
		numbers = append(numbers, e.Number)
	}
	return m.s.latestNumber(numbers, prefix), nil
}

// ── DailyLogSheet / DailyEntry ──

type mockLogSheetRepo struct{ s *memStore }

func (m *mockLogSheetRepo) Create(_ context.Context, sheet *model.DailyLogSheet) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.sheets {
		if strings.EqualFold(existing.SheetNumber, sheet.SheetNumber) {
			return duplicate("uq_daily_log_sheets_number")
		}
	}
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = time.Now()
	}
	row := *sheet
	row.Engagement, row.Line, row.Entries = nil, nil, nil
	m.s.sheets[sheet.LogSheetID] = row
	return nil
}

func (m *mockLogSheetRepo) GetByID(_ context.Context, id string) (*model.DailyLogSheet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sheet, ok := m.s.sheets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if e, ok := m.s.engagements[sheet.EngagementID]; ok {
		sheet.Engagement = (&mockEngagementRepo{s: m.s}).withDetails(e)
	}
	if l, ok := m.s.lines[sheet.LineID]; ok {
		if it, ok := m.s.items[l.CatalogItemID]; ok {
			l.CatalogItem = &it
		}
		sheet.Line = &l
	}
	return &sheet, nil
}

func (m *mockLogSheetRepo) GetByIDForUpdate(_ context.Context, id string) (*model.DailyLogSheet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sheet, ok := m.s.sheets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sheet, nil
}

func (m *mockLogSheetRepo) ExistsForPeriod(_ context.Context, engagementID, lineID string, periodStart time.Time) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sheet := range m.s.sheets {
		if sheet.EngagementID == engagementID && sheet.LineID == lineID && sheet.PeriodStart.Equal(periodStart) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLogSheetRepo) SheetNumberTaken(_ context.Context, sheetNumber string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sheet := range m.s.sheets {
		if strings.EqualFold(sheet.SheetNumber, sheetNumber) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLogSheetRepo) CountByEngagement(_ context.Context, engagementID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, sheet := range m.s.sheets {
		if sheet.EngagementID == engagementID {
			n++
		}
	}
	return n, nil
}

func (m *mockLogSheetRepo) ListByEngagement(_ context.Context, engagementID string) ([]model.DailyLogSheet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.DailyLogSheet
	for _, sheet := range m.s.sheets {
		if sheet.EngagementID == engagementID {
			result = append(result, sheet)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PeriodStart.Before(result[j].PeriodStart) })
	return result, nil
}

func (m *mockLogSheetRepo) UpdateTotal(_ context.Context, id string, total decimal.Decimal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sheet := m.s.sheets[id]
	sheet.TotalAmount = total
	m.s.sheets[id] = sheet
	m.s.writes["sheet_total"]++
	return nil
}

func (m *mockLogSheetRepo) SumTotals(_ context.Context, engagementID string) (decimal.Decimal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sum := decimal.Zero
	for _, sheet := range m.s.sheets {
		if sheet.EngagementID == engagementID {
			sum = sum.Add(sheet.TotalAmount)
		}
	}
	return sum, nil
}

type mockDailyEntryRepo struct{ s *memStore }

func (m *mockDailyEntryRepo) Create(_ context.Context, entry *model.DailyEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, e := range m.s.entries {
		if e.LogSheetID == entry.LogSheetID && e.EntryDate.Equal(entry.EntryDate) {
			return duplicate("uq_daily_entries_date")
		}
	}
	m.s.entries[entry.EntryID] = *entry
	return nil
}

func (m *mockDailyEntryRepo) GetByID(_ context.Context, id string) (*model.DailyEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (m *mockDailyEntryRepo) ListBySheet(_ context.Context, logSheetID string) ([]model.DailyEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.DailyEntry
	for _, e := range m.s.entries {
		if e.LogSheetID == logSheetID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryDate.Before(result[j].EntryDate) })
	return result, nil
}

func (m *mockDailyEntryRepo) CountBySheet(_ context.Context, logSheetID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, e := range m.s.entries {
		if e.LogSheetID == logSheetID {
			n++
		}
	}
	return n, nil
}

func (m *mockDailyEntryRepo) ListBetween(_ context.Context, from, to time.Time, engagementID string) ([]model.DailyEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.DailyEntry
	for _, e := range m.s.entries {
		if e.EntryDate.Before(from) || e.EntryDate.After(to) {
			continue
		}
		if engagementID != "" && m.s.sheets[e.LogSheetID].EngagementID != engagementID {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryDate.Before(result[j].EntryDate) })
	return result, nil
}

func (m *mockDailyEntryRepo) Update(_ context.Context, entry *model.DailyEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.entries[entry.EntryID] = *entry
	return nil
}

func (m *mockDailyEntryRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.entries, id)
	return nil
}

func (m *mockDailyEntryRepo) SumAmounts(_ context.Context, logSheetID string) (decimal.Decimal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sum := decimal.Zero
	for _, e := range m.s.entries {
		if e.LogSheetID == logSheetID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// ── VerificationSheet ──

type mockVerificationRepo struct{ s *memStore }

func (m *mockVerificationRepo) Create(_ context.Context, v *model.VerificationSheet) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.verifications {
		if existing.LogSheetID == v.LogSheetID {
			return duplicate("uq_verification_sheets_log_sheet")
		}
	}
	row := *v
	row.LogSheet = nil
	m.s.verifications[v.VerificationID] = row
	return nil
}

func (m *mockVerificationRepo) GetByID(_ context.Context, id string) (*model.VerificationSheet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	v, ok := m.s.verifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (m *mockVerificationRepo) GetByLogSheet(_ context.Context, logSheetID string) (*model.VerificationSheet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, v := range m.s.verifications {
		if v.LogSheetID == logSheetID {
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
