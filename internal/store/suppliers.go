package store

import (
	"context"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const supplierColumns = `id, name, contact_person, phone, email, gstin, address, created_at`

func (q *Queries) CreateSupplier(ctx context.Context, s *domain.Supplier) error {
	s.CreatedAt = timeutil.Stamp()
	id, err := q.insert(ctx, "create supplier", `INSERT INTO suppliers
		(name, contact_person, phone, email, gstin, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.GSTIN, s.Address, s.CreatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (q *Queries) UpdateSupplier(ctx context.Context, s domain.Supplier) error {
	n, err := q.exec(ctx, "update supplier", `UPDATE suppliers SET name = ?, contact_person = ?, phone = ?, email = ?,
		gstin = ?, address = ? WHERE id = ?`, s.Name, s.ContactPerson, s.Phone, s.Email, s.GSTIN, s.Address, s.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("supplier", s.ID)
	}
	return nil
}

func (q *Queries) GetSupplier(ctx context.Context, id int64) (domain.Supplier, error) {
	var s domain.Supplier
	err := q.get(ctx, &s, "supplier", id, `SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`, id)
	return s, err
}

func (q *Queries) FindSupplierByName(ctx context.Context, name string) (domain.Supplier, error) {
	var s domain.Supplier
	err := q.get(ctx, &s, "supplier", name, `SELECT `+supplierColumns+` FROM suppliers WHERE LOWER(name) = LOWER(?)`, name)
	return s, err
}

func (q *Queries) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	err := q.list(ctx, &suppliers, "list suppliers", `SELECT `+supplierColumns+` FROM suppliers ORDER BY name`)
	return suppliers, err
}
