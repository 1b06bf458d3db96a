package service

import (
	"context"
	"errors"
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

type InventoryService struct {
	db    *sqlx.DB
	state *appstate.State
}

var maxGSTRate = decimal.NewFromInt(28)

func validateMedicine(m *domain.Medicine) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Manufacturer = strings.TrimSpace(m.Manufacturer)
	if m.Name == "" {
		return domain.Invalid("medicine name is required")
	}
	if m.Schedule == "" {
		m.Schedule = domain.ScheduleNone
	}
	if !m.Schedule.Valid() {
		return domain.Invalid("unknown schedule %q", m.Schedule)
	}
	if m.GSTRate.IsNegative() || m.GSTRate.GreaterThan(maxGSTRate) {
		return domain.Invalid("gst rate must be between 0 and 28")
	}
	if m.ReorderLevel < 0 {
		return domain.Invalid("reorder level cannot be negative")
	}
	return nil
}

func (s *InventoryService) CreateMedicine(ctx context.Context, m domain.Medicine) (domain.Medicine, error) {
	if err := validateMedicine(&m); err != nil {
		return domain.Medicine{}, err
	}
	q := store.New(s.db)
	if _, err := q.FindMedicine(ctx, m.Name, m.Manufacturer); err == nil {
		return domain.Medicine{}, domain.Invalid("medicine %s by %q already exists", m.Name, m.Manufacturer)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Medicine{}, err
	}
	m.IsActive = true
	if err := q.CreateMedicine(ctx, &m); err != nil {
		return domain.Medicine{}, err
	}
	return m, nil
}

func (s *InventoryService) UpdateMedicine(ctx context.Context, m domain.Medicine) (domain.Medicine, error) {
	if err := validateMedicine(&m); err != nil {
		return domain.Medicine{}, err
	}
	q := store.New(s.db)
	existing, err := q.GetMedicine(ctx, m.ID)
	if err != nil {
		return domain.Medicine{}, err
	}
	if other, err := q.FindMedicine(ctx, m.Name, m.Manufacturer); err == nil && other.ID != m.ID {
		return domain.Medicine{}, domain.Invalid("medicine %s by %q already exists", m.Name, m.Manufacturer)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Medicine{}, err
	}
	if err := q.UpdateMedicine(ctx, m); err != nil {
		return domain.Medicine{}, err
	}
	m.CreatedAt = existing.CreatedAt
	return m, nil
}

func (s *InventoryService) GetMedicine(ctx context.Context, id int64) (domain.Medicine, error) {
	return store.New(s.db).GetMedicine(ctx, id)
}

func (s *InventoryService) SearchMedicines(ctx context.Context, query string, limit int) ([]domain.Medicine, error) {
	return store.New(s.db).SearchMedicines(ctx, query, clampLimit(limit, 50, 500))
}

func (s *InventoryService) CountMedicines(ctx context.Context) (int64, error) {
	return store.New(s.db).CountMedicines(ctx)
}

// ReceiveBatch records a supplier purchase as a new batch.
func (s *InventoryService) ReceiveBatch(ctx context.Context, b domain.Batch) (domain.Batch, error) {
	b.BatchNumber = strings.TrimSpace(b.BatchNumber)
	switch {
	case b.BatchNumber == "":
		return domain.Batch{}, domain.Invalid("batch number is required")
	case b.Quantity <= 0:
		return domain.Batch{}, domain.Invalid("quantity must be positive")
	case b.PurchasePrice.IsNegative() || b.SellingPrice.IsNegative() || b.MRP.IsNegative():
		return domain.Batch{}, domain.Invalid("prices cannot be negative")
	case b.SellingPrice.GreaterThan(b.MRP):
		return domain.Batch{}, domain.Invalid("selling price %s exceeds MRP %s", b.SellingPrice, b.MRP)
	}
	if _, err := timeutil.ParseDate(b.ExpiryDate); err != nil {
		return domain.Batch{}, domain.Invalid("expiry date must be YYYY-MM-DD")
	}
	b.PurchasePrice, b.SellingPrice, b.MRP = round2(b.PurchasePrice), round2(b.SellingPrice), round2(b.MRP)

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		if _, err := q.GetMedicine(ctx, b.MedicineID); err != nil {
			return err
		}
		if _, err := q.GetSupplier(ctx, b.SupplierID); err != nil {
			return err
		}
		return q.CreateBatch(ctx, &b)
	})
	track("receive_batch", err)
	if err != nil {
		return domain.Batch{}, err
	}
	log.Info().Int64("batch_id", b.ID).Int64("medicine_id", b.MedicineID).Int64("quantity", b.Quantity).Msg("batch received")
	return b, nil
}

// RestockBatch adds units to an existing batch.
func (s *InventoryService) RestockBatch(ctx context.Context, id, quantity int64) (domain.Batch, error) {
	if quantity <= 0 {
		return domain.Batch{}, domain.Invalid("quantity must be positive")
	}
	var b domain.Batch
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		if err := q.IncrementBatch(ctx, id, quantity); err != nil {
			return err
		}
		var err error
		b, err = q.GetBatch(ctx, id)
		return err
	})
	track("restock_batch", err)
	return b, err
}

func (s *InventoryService) GetBatch(ctx context.Context, id int64) (domain.Batch, error) {
	return store.New(s.db).GetBatch(ctx, id)
}

func (s *InventoryService) ListBatches(ctx context.Context, medicineID int64, inStockOnly bool) ([]domain.BatchView, error) {
	return store.New(s.db).ListBatches(ctx, medicineID, inStockOnly)
}

func (s *InventoryService) LowStock(ctx context.Context) ([]domain.StockLevel, error) {
	return store.New(s.db).LowStock(ctx, timeutil.Today())
}

// ExpiringBatches lists stocked batches expiring within days; a non-positive
// value uses the expiry_alert_days setting.
func (s *InventoryService) ExpiringBatches(ctx context.Context, days int) ([]domain.BatchView, error) {
	if days <= 0 {
		days = s.state.Settings().ExpiryAlertDays
	}
	until := timeutil.Now().AddDate(0, 0, days).Format(timeutil.DateLayout)
	return store.New(s.db).ExpiringBatches(ctx, until)
}
