package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const customerColumns = `id, name, phone, address, credit_limit, current_balance, created_at`

const creditColumns = `id, customer_id, type, amount, balance_after, bill_id, sales_return_id, payment_mode, notes, created_at`

func (q *Queries) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	c.CreatedAt = timeutil.Stamp()
	id, err := q.insert(ctx, "create customer", `INSERT INTO customers
		(name, phone, address, credit_limit, current_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		c.Name, c.Phone, c.Address, c.CreditLimit, c.CurrentBalance, c.CreatedAt)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// UpdateCustomer changes profile fields; the balance is only moved by ledger writes.
func (q *Queries) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	n, err := q.exec(ctx, "update customer", `UPDATE customers SET name = ?, phone = ?, address = ?, credit_limit = ?
		WHERE id = ?`, c.Name, c.Phone, c.Address, c.CreditLimit, c.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("customer", c.ID)
	}
	return nil
}

func (q *Queries) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	var c domain.Customer
	err := q.get(ctx, &c, "customer", id, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	return c, err
}

func (q *Queries) FindCustomerByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	var c domain.Customer
	err := q.get(ctx, &c, "customer with phone", phone, `SELECT `+customerColumns+` FROM customers WHERE phone = ?`, phone)
	return c, err
}

func (q *Queries) ListCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	like := likePattern(strings.ToLower(strings.TrimSpace(query)))
	err := q.list(ctx, &customers, "list customers", `SELECT `+customerColumns+` FROM customers
		WHERE LOWER(name) LIKE ? OR COALESCE(phone, '') LIKE ? ORDER BY name`, like, like)
	return customers, err
}

func (q *Queries) SetCustomerBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	n, err := q.exec(ctx, "update balance", `UPDATE customers SET current_balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("customer", id)
	}
	return nil
}

func (q *Queries) CreateCredit(ctx context.Context, c *domain.Credit) error {
	id, err := q.insert(ctx, "create credit entry", `INSERT INTO credits
		(customer_id, type, amount, balance_after, bill_id, sales_return_id, payment_mode, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		c.CustomerID, c.Type, c.Amount, c.BalanceAfter, c.BillID, c.SalesReturnID, c.PaymentMode, c.Notes, c.CreatedAt)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (q *Queries) Credits(ctx context.Context, customerID int64) ([]domain.Credit, error) {
	entries := []domain.Credit{}
	err := q.list(ctx, &entries, "list credit entries",
		`SELECT `+creditColumns+` FROM credits WHERE customer_id = ? ORDER BY id`, customerID)
	return entries, err
}

// LedgerBalance recomputes the balance from the ledger: sales add, everything else subtracts.
func (q *Queries) LedgerBalance(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.scalar(ctx, &balance, "ledger balance", `SELECT COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0)
		FROM credits WHERE customer_id = ?`, domain.CreditSale, customerID)
	return balance.Round(2), err
}

func (q *Queries) TotalReceivable(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.scalar(ctx, &total, "total receivable",
		`SELECT COALESCE(SUM(current_balance), 0) FROM customers WHERE current_balance > 0`)
	return total.Round(2), err
}
