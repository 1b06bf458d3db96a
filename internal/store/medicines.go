package store

import (
	"context"
	"strings"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const medicineColumns = `id, name, generic_name, manufacturer, hsn_code, category, drug_type, pack_size, unit,
	gst_rate, schedule, reorder_level, is_active, created_at`

func (q *Queries) CreateMedicine(ctx context.Context, m *domain.Medicine) error {
	m.CreatedAt = timeutil.Stamp()
	id, err := q.insert(ctx, "create medicine", `INSERT INTO medicines
		(name, generic_name, manufacturer, hsn_code, category, drug_type, pack_size, unit, gst_rate, schedule, reorder_level, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		m.Name, m.GenericName, m.Manufacturer, m.HSNCode, m.Category, m.DrugType, m.PackSize, m.Unit,
		m.GSTRate, m.Schedule, m.ReorderLevel, m.IsActive, m.CreatedAt)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (q *Queries) UpdateMedicine(ctx context.Context, m domain.Medicine) error {
	n, err := q.exec(ctx, "update medicine", `UPDATE medicines SET name = ?, generic_name = ?, manufacturer = ?,
		hsn_code = ?, category = ?, drug_type = ?, pack_size = ?, unit = ?, gst_rate = ?, schedule = ?,
		reorder_level = ?, is_active = ? WHERE id = ?`,
		m.Name, m.GenericName, m.Manufacturer, m.HSNCode, m.Category, m.DrugType, m.PackSize, m.Unit,
		m.GSTRate, m.Schedule, m.ReorderLevel, m.IsActive, m.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("medicine", m.ID)
	}
	return nil
}

func (q *Queries) GetMedicine(ctx context.Context, id int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := q.get(ctx, &m, "medicine", id, `SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id)
	return m, err
}

// SearchMedicines matches name or generic name, case-insensitively.
func (q *Queries) SearchMedicines(ctx context.Context, query string, limit int) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		err := q.list(ctx, &medicines, "list medicines",
			`SELECT `+medicineColumns+` FROM medicines ORDER BY name LIMIT ?`, limit)
		return medicines, err
	}
	like := likePattern(query)
	err := q.list(ctx, &medicines, "search medicines", `SELECT `+medicineColumns+` FROM medicines
		WHERE LOWER(name) LIKE ? OR LOWER(generic_name) LIKE ? ORDER BY name LIMIT ?`, like, like, limit)
	return medicines, err
}

func (q *Queries) CountMedicines(ctx context.Context) (int64, error) {
	var count int64
	err := q.scalar(ctx, &count, "count medicines", `SELECT COUNT(*) FROM medicines WHERE is_active = ?`, true)
	return count, err
}

// LowStock lists active medicines whose unexpired stock is at or below the reorder level.
func (q *Queries) LowStock(ctx context.Context, today string) ([]domain.StockLevel, error) {
	levels := []domain.StockLevel{}
	err := q.list(ctx, &levels, "low stock", `SELECT m.id AS medicine_id, m.name, m.reorder_level,
			COALESCE(SUM(CASE WHEN b.expiry_date >= ? THEN b.quantity ELSE 0 END), 0) AS quantity
		FROM medicines m
		LEFT JOIN batches b ON b.medicine_id = m.id
		WHERE m.is_active = ? AND m.reorder_level > 0
		GROUP BY m.id, m.name, m.reorder_level
		HAVING COALESCE(SUM(CASE WHEN b.expiry_date >= ? THEN b.quantity ELSE 0 END), 0) <= m.reorder_level
		ORDER BY m.name`, today, true, today)
	return levels, err
}

// FindMedicine looks up a medicine by its catalogue identity.
func (q *Queries) FindMedicine(ctx context.Context, name, manufacturer string) (domain.Medicine, error) {
	var m domain.Medicine
	err := q.get(ctx, &m, "medicine", name, `SELECT `+medicineColumns+` FROM medicines
		WHERE LOWER(name) = LOWER(?) AND LOWER(manufacturer) = LOWER(?)`, name, manufacturer)
	return m, err
}
