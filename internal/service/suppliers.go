package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"medbill/m/domain"
	"medbill/m/internal/store"
)

type SupplierService struct {
	db *sqlx.DB
}

func (s *SupplierService) CreateSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	sup.Name = strings.TrimSpace(sup.Name)
	if sup.Name == "" {
		return domain.Supplier{}, domain.Invalid("supplier name is required")
	}
	q := store.New(s.db)
	if _, err := q.FindSupplierByName(ctx, sup.Name); err == nil {
		return domain.Supplier{}, domain.Invalid("supplier %s already exists", sup.Name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Supplier{}, err
	}
	if err := q.CreateSupplier(ctx, &sup); err != nil {
		return domain.Supplier{}, err
	}
	return sup, nil
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	sup.Name = strings.TrimSpace(sup.Name)
	if sup.Name == "" {
		return domain.Supplier{}, domain.Invalid("supplier name is required")
	}
	q := store.New(s.db)
	if other, err := q.FindSupplierByName(ctx, sup.Name); err == nil && other.ID != sup.ID {
		return domain.Supplier{}, domain.Invalid("supplier %s already exists", sup.Name)
	}
	if err := q.UpdateSupplier(ctx, sup); err != nil {
		return domain.Supplier{}, err
	}
	return q.GetSupplier(ctx, sup.ID)
}

func (s *SupplierService) GetSupplier(ctx context.Context, id int64) (domain.Supplier, error) {
	return store.New(s.db).GetSupplier(ctx, id)
}

func (s *SupplierService) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return store.New(s.db).ListSuppliers(ctx)
}
