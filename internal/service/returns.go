package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/database"
	"medbill/m/internal/store"
	"medbill/m/internal/timeutil"
)

type ReturnService struct {
	db    *sqlx.DB
	state *appstate.State
}

// refundFor prorates the line total actually charged, discount and GST included.
func refundFor(item domain.BillItem, qty int64) decimal.Decimal {
	return round2(item.TotalAmount.Mul(decimal.NewFromInt(qty)).Div(decimal.NewFromInt(item.Quantity)))
}

// CreateSalesReturn takes items back from a customer. The cumulative returned
// quantity of each bill item can never exceed what was sold.
func (s *ReturnService) CreateSalesReturn(ctx context.Context, req domain.SalesReturnRequest) (domain.SalesReturnResult, error) {
	result, err := s.createSalesReturn(ctx, req)
	track("sales_return", err)
	if err != nil {
		return domain.SalesReturnResult{}, err
	}
	log.Info().Str("return_number", result.ReturnNumber).Str("refund", result.RefundTotal.StringFixed(2)).
		Str("mode", string(req.RefundMode)).Msg("sales return saved")
	return result, nil
}

func (s *ReturnService) createSalesReturn(ctx context.Context, req domain.SalesReturnRequest) (domain.SalesReturnResult, error) {
	if len(req.Lines) == 0 {
		return domain.SalesReturnResult{}, domain.Invalid("return must have at least one line")
	}
	if !req.RefundMode.Valid() {
		return domain.SalesReturnResult{}, domain.Invalid("unknown refund mode %q", req.RefundMode)
	}
	seen := make(map[int64]bool, len(req.Lines))
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return domain.SalesReturnResult{}, domain.Invalid("return quantity must be positive")
		}
		if seen[l.BillItemID] {
			return domain.SalesReturnResult{}, domain.Invalid("bill item %d listed twice", l.BillItemID)
		}
		seen[l.BillItemID] = true
	}

	result := domain.SalesReturnResult{RefundTotal: decimal.Zero}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		bill, err := q.GetBill(ctx, req.BillID)
		if err != nil {
			return err
		}
		if req.RefundMode != domain.RefundCash && bill.CustomerID == nil {
			return domain.Invalid("%s refunds need a bill with a customer", req.RefundMode)
		}

		count, err := q.CountSalesReturns(ctx)
		if err != nil {
			return err
		}
		result.ReturnNumber = fmt.Sprintf("RET-%06d", count+1)
		now := timeutil.Stamp()

		for _, l := range req.Lines {
			item, err := q.GetBillItem(ctx, l.BillItemID)
			if err != nil {
				return err
			}
			if item.BillID != bill.ID {
				return domain.Invalid("bill item %d does not belong to bill %s", item.ID, bill.BillNumber)
			}
			returned, err := q.ReturnedQuantity(ctx, item.ID)
			if err != nil {
				return err
			}
			if l.Quantity > item.Quantity-returned {
				return domain.Invalid("cannot return %d of %s: %d sold, %d already returned",
					l.Quantity, item.MedicineName, item.Quantity, returned)
			}
			ret := domain.SalesReturn{
				ReturnNumber: result.ReturnNumber,
				BillID:       bill.ID,
				BillItemID:   item.ID,
				BatchID:      item.BatchID,
				Quantity:     l.Quantity,
				RefundAmount: refundFor(item, l.Quantity),
				RefundMode:   req.RefundMode,
				Reason:       strings.TrimSpace(req.Reason),
				CreatedBy:    s.state.Operator(),
				CreatedAt:    now,
			}
			if err := q.CreateSalesReturn(ctx, &ret); err != nil {
				return err
			}
			if err := q.IncrementBatch(ctx, item.BatchID, l.Quantity); err != nil {
				return err
			}
			result.Lines = append(result.Lines, ret)
			result.RefundTotal = result.RefundTotal.Add(ret.RefundAmount)
		}

		if req.RefundMode == domain.RefundCash || !result.RefundTotal.IsPositive() {
			return nil
		}
		customer, err := q.GetCustomer(ctx, *bill.CustomerID)
		if err != nil {
			return err
		}
		entryType := domain.CreditReturn
		if req.RefundMode == domain.RefundAdjustment {
			entryType = domain.CreditAdjustment
		}
		balance := customer.CurrentBalance.Sub(result.RefundTotal)
		entry := domain.Credit{
			CustomerID:    customer.ID,
			Type:          entryType,
			Amount:        result.RefundTotal,
			BalanceAfter:  balance,
			BillID:        &bill.ID,
			SalesReturnID: &result.Lines[0].ID,
			Notes:         "Return " + result.ReturnNumber,
			CreatedAt:     now,
		}
		if err := q.CreateCredit(ctx, &entry); err != nil {
			return err
		}
		if err := q.SetCustomerBalance(ctx, customer.ID, balance); err != nil {
			return err
		}
		result.Credit = &entry
		return nil
	})
	return result, err
}

func (s *ReturnService) SalesReturnsForBill(ctx context.Context, billID int64) ([]domain.SalesReturn, error) {
	q := store.New(s.db)
	if _, err := q.GetBill(ctx, billID); err != nil {
		return nil, err
	}
	return q.SalesReturnsForBill(ctx, billID)
}

// CreateSupplierReturn sends stock back to the supplier it was bought from.
// Stock leaves the batch immediately; the return starts PENDING.
func (s *ReturnService) CreateSupplierReturn(ctx context.Context, req domain.SupplierReturnRequest) (domain.SupplierReturn, error) {
	if req.Quantity <= 0 {
		return domain.SupplierReturn{}, domain.Invalid("return quantity must be positive")
	}
	r := domain.SupplierReturn{
		SupplierID: req.SupplierID,
		BatchID:    req.BatchID,
		Quantity:   req.Quantity,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     domain.SupplierReturnPending,
	}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		if _, err := q.GetSupplier(ctx, req.SupplierID); err != nil {
			return err
		}
		b, err := q.GetBatch(ctx, req.BatchID)
		if err != nil {
			return err
		}
		if b.SupplierID != req.SupplierID {
			return domain.Invalid("batch %s was not bought from supplier %d", b.BatchNumber, req.SupplierID)
		}
		if b.Quantity < req.Quantity {
			return domain.Invalid("insufficient stock for batch %s: %d available, %d requested", b.BatchNumber, b.Quantity, req.Quantity)
		}
		if err := q.DecrementBatch(ctx, b.ID, req.Quantity); err != nil {
			return err
		}
		r.Amount = round2(b.PurchasePrice.Mul(decimal.NewFromInt(req.Quantity)))
		return q.CreateSupplierReturn(ctx, &r)
	})
	track("supplier_return", err)
	if err != nil {
		return domain.SupplierReturn{}, err
	}
	return r, nil
}

// UpdateSupplierReturnStatus moves a supplier return along
// PENDING -> APPROVED -> COMPLETED, or to REJECTED. Rejection leaves the
// batch quantity as it is.
func (s *ReturnService) UpdateSupplierReturnStatus(ctx context.Context, id int64, next domain.SupplierReturnStatus) (domain.SupplierReturn, error) {
	var r domain.SupplierReturn
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		var err error
		if r, err = q.GetSupplierReturn(ctx, id); err != nil {
			return err
		}
		if !r.Status.CanTransition(next) {
			return domain.Invalid("supplier return %d cannot move from %s to %s", id, r.Status, next)
		}
		moved, err := q.MoveSupplierReturn(ctx, id, r.Status, next)
		if err != nil {
			return err
		}
		if !moved {
			return domain.Invalid("supplier return %d changed concurrently", id)
		}
		r, err = q.GetSupplierReturn(ctx, id)
		return err
	})
	track("supplier_return_status", err)
	if err != nil {
		return domain.SupplierReturn{}, err
	}
	return r, nil
}

func (s *ReturnService) ListSupplierReturns(ctx context.Context, status domain.SupplierReturnStatus) ([]domain.SupplierReturn, error) {
	return store.New(s.db).ListSupplierReturns(ctx, status)
}
