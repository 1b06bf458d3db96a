package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"medbill/m/domain"
	"medbill/m/internal/database"
	"medbill/m/internal/store"
	"medbill/m/internal/timeutil"
)

// RunningBillService tracks items sold before they were in stock.
type RunningBillService struct {
	db *sqlx.DB
}

func (s *RunningBillService) CreateRunningBill(ctx context.Context, req domain.CreateRunningBillRequest) (domain.RunningBill, error) {
	if req.Quantity <= 0 {
		return domain.RunningBill{}, domain.Invalid("quantity must be positive")
	}
	if req.UnitPrice.IsNegative() {
		return domain.RunningBill{}, domain.Invalid("unit price cannot be negative")
	}
	rb := domain.RunningBill{
		CustomerID:    req.CustomerID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		MedicineID:    req.MedicineID,
		MedicineName:  strings.TrimSpace(req.MedicineName),
		Quantity:      req.Quantity,
		UnitPrice:     round2(req.UnitPrice),
		Status:        domain.RunningBillPending,
		Notes:         strings.TrimSpace(req.Notes),
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		if rb.MedicineID != nil {
			m, err := q.GetMedicine(ctx, *rb.MedicineID)
			if err != nil {
				return err
			}
			if rb.MedicineName == "" {
				rb.MedicineName = m.Name
			}
		}
		if rb.MedicineName == "" {
			return domain.Invalid("medicine name is required")
		}
		if rb.CustomerID != nil {
			c, err := q.GetCustomer(ctx, *rb.CustomerID)
			if err != nil {
				return err
			}
			if rb.CustomerName == "" {
				rb.CustomerName = c.Name
			}
		}
		return q.CreateRunningBill(ctx, &rb)
	})
	track("create_running_bill", err)
	if err != nil {
		return domain.RunningBill{}, err
	}
	return rb, nil
}

// LinkRunningBill fulfils a pending running bill from a batch, deducting the
// stock and marking it STOCKED in one step.
func (s *RunningBillService) LinkRunningBill(ctx context.Context, id, batchID int64) (domain.RunningBill, error) {
	var rb domain.RunningBill
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		var err error
		if rb, err = q.GetRunningBill(ctx, id); err != nil {
			return err
		}
		if rb.Status != domain.RunningBillPending {
			return domain.Invalid("running bill %d is already %s", id, rb.Status)
		}
		b, err := q.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if rb.MedicineID != nil && *rb.MedicineID != b.MedicineID {
			return domain.Invalid("batch %s is not stock of %s", b.BatchNumber, rb.MedicineName)
		}
		if b.Expired(timeutil.Today()) {
			return domain.Invalid("batch %s expired on %s", b.BatchNumber, b.ExpiryDate)
		}
		if b.Quantity < rb.Quantity {
			return domain.Invalid("insufficient stock for batch %s: %d available, %d requested", b.BatchNumber, b.Quantity, rb.Quantity)
		}
		if err := q.DecrementBatch(ctx, batchID, rb.Quantity); err != nil {
			return err
		}
		moved, err := q.MoveRunningBill(ctx, id, domain.RunningBillPending, domain.RunningBillStocked, &batchID)
		if err != nil {
			return err
		}
		if !moved {
			return domain.Invalid("running bill %d is no longer pending", id)
		}
		rb, err = q.GetRunningBill(ctx, id)
		return err
	})
	track("link_running_bill", err)
	if err != nil {
		return domain.RunningBill{}, err
	}
	log.Info().Int64("running_bill_id", id).Int64("batch_id", batchID).Msg("running bill stocked")
	return rb, nil
}

// CancelRunningBill drops a pending running bill; no stock was ever taken.
func (s *RunningBillService) CancelRunningBill(ctx context.Context, id int64) (domain.RunningBill, error) {
	var rb domain.RunningBill
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		var err error
		if rb, err = q.GetRunningBill(ctx, id); err != nil {
			return err
		}
		if rb.Status != domain.RunningBillPending {
			return domain.Invalid("running bill %d is already %s", id, rb.Status)
		}
		if _, err := q.MoveRunningBill(ctx, id, domain.RunningBillPending, domain.RunningBillCancelled, nil); err != nil {
			return err
		}
		rb, err = q.GetRunningBill(ctx, id)
		return err
	})
	track("cancel_running_bill", err)
	if err != nil {
		return domain.RunningBill{}, err
	}
	return rb, nil
}

func (s *RunningBillService) ListRunningBills(ctx context.Context, status domain.RunningBillStatus) ([]domain.RunningBill, error) {
	switch status {
	case "", domain.RunningBillPending, domain.RunningBillStocked, domain.RunningBillCancelled:
	default:
		return nil, domain.Invalid("unknown running bill status %q", status)
	}
	return store.New(s.db).ListRunningBills(ctx, status)
}
