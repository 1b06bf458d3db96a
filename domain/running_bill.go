package domain

import "github.com/shopspring/decimal"

type RunningBillStatus string

const (
	RunningBillPending   RunningBillStatus = "PENDING"
	RunningBillStocked   RunningBillStatus = "STOCKED"
	RunningBillCancelled RunningBillStatus = "CANCELLED"
)

// RunningBill is a sale promised before the item is in stock.
type RunningBill struct {
	ID            int64             `db:"id" json:"id"`
	CustomerID    *int64            `db:"customer_id" json:"customer_id,omitempty"`
	CustomerName  string            `db:"customer_name" json:"customer_name"`
	CustomerPhone string            `db:"customer_phone" json:"customer_phone"`
	MedicineID    *int64            `db:"medicine_id" json:"medicine_id,omitempty"`
	MedicineName  string            `db:"medicine_name" json:"medicine_name"`
	Quantity      int64             `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal   `db:"unit_price" json:"unit_price"`
	Status        RunningBillStatus `db:"status" json:"status"`
	BatchID       *int64            `db:"batch_id" json:"batch_id,omitempty"`
	Notes         string            `db:"notes" json:"notes"`
	CreatedAt     string            `db:"created_at" json:"created_at"`
	UpdatedAt     string            `db:"updated_at" json:"updated_at"`
}

type CreateRunningBillRequest struct {
	CustomerID    *int64          `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	MedicineID    *int64          `json:"medicine_id,omitempty"`
	MedicineName  string          `json:"medicine_name"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Notes         string          `json:"notes"`
}
