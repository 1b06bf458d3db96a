// Package service implements the pharmacy workflows on top of the store.
// Every workflow that writes more than one row runs in a single transaction.
package service

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/metrics"
)

// Options carries the configuration the services need.
type Options struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Services groups the domain services sharing one database and app state.
type Services struct {
	Inventory    *InventoryService
	Suppliers    *SupplierService
	Customers    *CustomerService
	Billing      *BillingService
	RunningBills *RunningBillService
	Returns      *ReturnService
	Auth         *AuthService
	Settings     *SettingsService
	Reports      *ReportService
}

func New(db *sqlx.DB, state *appstate.State, opts Options) *Services {
	return &Services{
		Inventory:    &InventoryService{db: db, state: state},
		Suppliers:    &SupplierService{db: db},
		Customers:    &CustomerService{db: db},
		Billing:      &BillingService{db: db, state: state},
		RunningBills: &RunningBillService{db: db},
		Returns:      &ReturnService{db: db, state: state},
		Auth:         NewAuthService(db, state, opts),
		Settings:     &SettingsService{db: db, state: state},
		Reports:      &ReportService{db: db, state: state, registerLimit: salesRegisterLimit},
	}
}

// Rejected reports whether err is caused by the caller's input rather than a
// storage failure.
func Rejected(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound)
}

// track counts a workflow outcome and logs storage failures.
func track(workflow string, err error) {
	metrics.Workflows.WithLabelValues(workflow, metrics.Outcome(err, Rejected)).Inc()
	if err != nil && !Rejected(err) {
		log.Error().Err(err).Str("workflow", workflow).Msg("workflow failed")
	}
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

var hundred = decimal.NewFromInt(100)

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
