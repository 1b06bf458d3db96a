package domain

import "github.com/shopspring/decimal"

type RefundMode string

const (
	RefundCash       RefundMode = "CASH"
	RefundCreditNote RefundMode = "CREDIT_NOTE"
	RefundAdjustment RefundMode = "ADJUSTMENT"
)

func (m RefundMode) Valid() bool {
	switch m {
	case RefundCash, RefundCreditNote, RefundAdjustment:
		return true
	}
	return false
}

// SalesReturn is one returned bill item line.
type SalesReturn struct {
	ID           int64           `db:"id" json:"id"`
	ReturnNumber string          `db:"return_number" json:"return_number"`
	BillID       int64           `db:"bill_id" json:"bill_id"`
	BillItemID   int64           `db:"bill_item_id" json:"bill_item_id"`
	BatchID      int64           `db:"batch_id" json:"batch_id"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	RefundAmount decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	RefundMode   RefundMode      `db:"refund_mode" json:"refund_mode"`
	Reason       string          `db:"reason" json:"reason"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
}

type ReturnLine struct {
	BillItemID int64 `json:"bill_item_id"`
	Quantity   int64 `json:"quantity"`
}

type SalesReturnRequest struct {
	BillID     int64        `json:"bill_id"`
	Lines      []ReturnLine `json:"lines"`
	RefundMode RefundMode   `json:"refund_mode"`
	Reason     string       `json:"reason"`
}

type SalesReturnResult struct {
	ReturnNumber string          `json:"return_number"`
	Lines        []SalesReturn   `json:"lines"`
	RefundTotal  decimal.Decimal `json:"refund_total"`
	Credit       *Credit         `json:"credit,omitempty"`
}

type SupplierReturnStatus string

const (
	SupplierReturnPending   SupplierReturnStatus = "PENDING"
	SupplierReturnApproved  SupplierReturnStatus = "APPROVED"
	SupplierReturnCompleted SupplierReturnStatus = "COMPLETED"
	SupplierReturnRejected  SupplierReturnStatus = "REJECTED"
)

// CanTransition lists the follow-up actions allowed from each status.
func (s SupplierReturnStatus) CanTransition(next SupplierReturnStatus) bool {
	switch s {
	case SupplierReturnPending:
		return next == SupplierReturnApproved || next == SupplierReturnCompleted || next == SupplierReturnRejected
	case SupplierReturnApproved:
		return next == SupplierReturnCompleted || next == SupplierReturnRejected
	}
	return false
}

type SupplierReturn struct {
	ID         int64                `db:"id" json:"id"`
	SupplierID int64                `db:"supplier_id" json:"supplier_id"`
	BatchID    int64                `db:"batch_id" json:"batch_id"`
	Quantity   int64                `db:"quantity" json:"quantity"`
	Amount     decimal.Decimal      `db:"amount" json:"amount"`
	Reason     string               `db:"reason" json:"reason"`
	Status     SupplierReturnStatus `db:"status" json:"status"`
	CreatedAt  string               `db:"created_at" json:"created_at"`
	UpdatedAt  string               `db:"updated_at" json:"updated_at"`
}

type SupplierReturnRequest struct {
	SupplierID int64  `json:"supplier_id"`
	BatchID    int64  `json:"batch_id"`
	Quantity   int64  `json:"quantity"`
	Reason     string `json:"reason"`
}
