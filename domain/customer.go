package domain

import "github.com/shopspring/decimal"

type Customer struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Phone          *string         `db:"phone" json:"phone,omitempty"`
	Address        string          `db:"address" json:"address"`
	CreditLimit    decimal.Decimal `db:"credit_limit" json:"credit_limit"`
	CurrentBalance decimal.Decimal `db:"current_balance" json:"current_balance"`
	CreatedAt      string          `db:"created_at" json:"created_at"`
}

type CreditType string

const (
	CreditSale       CreditType = "SALE"
	CreditPayment    CreditType = "PAYMENT"
	CreditReturn     CreditType = "RETURN"
	CreditAdjustment CreditType = "ADJUSTMENT"
)

// Sign is +1 for entries that raise the amount owed and -1 otherwise.
func (t CreditType) Sign() int {
	if t == CreditSale {
		return 1
	}
	return -1
}

// Credit is an immutable udhar ledger entry.
type Credit struct {
	ID            int64           `db:"id" json:"id"`
	CustomerID    int64           `db:"customer_id" json:"customer_id"`
	Type          CreditType      `db:"type" json:"type"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balance_after"`
	BillID        *int64          `db:"bill_id" json:"bill_id,omitempty"`
	SalesReturnID *int64          `db:"sales_return_id" json:"sales_return_id,omitempty"`
	PaymentMode   string          `db:"payment_mode" json:"payment_mode"`
	Notes         string          `db:"notes" json:"notes"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
}

type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode string          `json:"payment_mode"`
	Notes       string          `json:"notes"`
}

// BalanceCheck compares the stored balance with the one derived from the ledger.
type BalanceCheck struct {
	CustomerID     int64           `json:"customer_id"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	LedgerBalance  decimal.Decimal `json:"ledger_balance"`
	Drift          decimal.Decimal `json:"drift"`
}

func (c BalanceCheck) Consistent() bool {
	return c.Drift.IsZero()
}
