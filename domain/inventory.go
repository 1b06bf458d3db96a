package domain

import "github.com/shopspring/decimal"

// Batch is a received lot of one medicine from one supplier.
type Batch struct {
	ID                int64           `db:"id" json:"id"`
	MedicineID        int64           `db:"medicine_id" json:"medicine_id"`
	SupplierID        int64           `db:"supplier_id" json:"supplier_id"`
	BatchNumber       string          `db:"batch_number" json:"batch_number"`
	ExpiryDate        string          `db:"expiry_date" json:"expiry_date"`
	Quantity          int64           `db:"quantity" json:"quantity"`
	PurchasePrice     decimal.Decimal `db:"purchase_price" json:"purchase_price"`
	MRP               decimal.Decimal `db:"mrp" json:"mrp"`
	SellingPrice      decimal.Decimal `db:"selling_price" json:"selling_price"`
	PurchaseInvoiceNo string          `db:"purchase_invoice_no" json:"purchase_invoice_no"`
	CreatedAt         string          `db:"created_at" json:"created_at"`
	UpdatedAt         string          `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the batch expires before the given day (YYYY-MM-DD).
func (b Batch) Expired(today string) bool {
	return b.ExpiryDate != "" && b.ExpiryDate < today
}

// BatchView joins a batch with the medicine and supplier names for listings.
type BatchView struct {
	Batch
	MedicineName string `db:"medicine_name" json:"medicine_name"`
	SupplierName string `db:"supplier_name" json:"supplier_name"`
}
