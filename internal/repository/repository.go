package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/Hems566/eter-projectv1.0/pkg/errors"
)

// Repository aggregates every repository and owns transaction boundaries.
type Repository struct {
	User              UserRepository
	CatalogItem       CatalogItemRepository
	Supplier          SupplierRepository
	RentalRequest     RentalRequestRepository
	RequestLine       RequestLineRepository
	SupplyAssignment  SupplyAssignmentRepository
	Engagement        EngagementRepository
	LogSheet          LogSheetRepository
	DailyEntry        DailyEntryRepository
	VerificationSheet VerificationSheetRepository

	db          *gorm.DB
	lockTimeout time.Duration
	mu          sync.Mutex // serializes Transaction when no database is attached
}

// NewRepository wires every repository on db. lockTimeout bounds row-lock waits
// inside Transaction; zero leaves the server default.
func NewRepository(db *gorm.DB, lockTimeout time.Duration) *Repository {
	r := newRepository(db)
	r.lockTimeout = lockTimeout
	return r
}

func newRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:              NewUserRepo(db),
		CatalogItem:       NewCatalogItemRepo(db),
		Supplier:          NewSupplierRepo(db),
		RentalRequest:     NewRentalRequestRepo(db),
		RequestLine:       NewRequestLineRepo(db),
		SupplyAssignment:  NewSupplyAssignmentRepo(db),
		Engagement:        NewEngagementRepo(db),
		LogSheet:          NewLogSheetRepo(db),
		DailyEntry:        NewDailyEntryRepo(db),
		VerificationSheet: NewVerificationSheetRepo(db),
		db:                db,
	}
}

// WithTx returns a Repository whose repositories all run on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return newRepository(tx)
}

// Transaction runs fn inside one database transaction. Store errors are
// translated into the pkg/errors taxonomy.
//
// A Repository built without a database (in-memory test doubles) runs fn
// directly, one call at a time.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		return fn(r)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(r.WithTx(tx))
	})
	return translateError(err)
}

// ── error translation ──

// PostgreSQL SQLSTATE codes.
const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// numberConstraints are the unique constraints guarding generated numbers.
var numberConstraints = map[string]bool{
	"uq_rental_requests_number": true,
	"uq_engagements_number":     true,
}

// translateError maps PostgreSQL failures to typed errors; anything else passes through.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if numberConstraints[pgErr.ConstraintName] {
			return &pkgerrors.Error{Kind: pkgerrors.KindConflict, Rule: pkgerrors.RuleDuplicateNumber,
				Message: "generated number already taken", Err: err}
		}
		return &pkgerrors.Error{Kind: pkgerrors.KindConflict, Rule: pkgerrors.RuleDuplicate,
			Message: fmt.Sprintf("duplicate value violates %s", pgErr.ConstraintName), Err: err}
	case codeLockNotAvailable:
		return pkgerrors.Transient(pkgerrors.RuleLockTimeout, err)
	case codeSerializationFailure:
		return pkgerrors.Transient(pkgerrors.RuleSerialization, err)
	case codeDeadlockDetected:
		return pkgerrors.Transient(pkgerrors.RuleDeadlock, err)
	}
	return err
}
