package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/database"
	"medbill/m/internal/store"
	"medbill/m/internal/timeutil"
)

// CustomerService manages customers and their credit (udhar) ledger.
type CustomerService struct {
	db *sqlx.DB
}

func normalizeCustomer(c *domain.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.Invalid("customer name is required")
	}
	if c.Phone != nil {
		phone := strings.TrimSpace(*c.Phone)
		if phone == "" {
			c.Phone = nil
		} else {
			c.Phone = &phone
		}
	}
	if c.CreditLimit.IsNegative() {
		return domain.Invalid("credit limit cannot be negative")
	}
	c.CreditLimit = round2(c.CreditLimit)
	return nil
}

func phoneTaken(ctx context.Context, q *store.Queries, c domain.Customer) error {
	if c.Phone == nil {
		return nil
	}
	other, err := q.FindCustomerByPhone(ctx, *c.Phone)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != c.ID {
		return domain.Invalid("phone %s already belongs to %s", *c.Phone, other.Name)
	}
	return nil
}

func (s *CustomerService) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if err := normalizeCustomer(&c); err != nil {
		return domain.Customer{}, err
	}
	c.ID = 0
	c.CurrentBalance = decimal.Zero
	q := store.New(s.db)
	if err := phoneTaken(ctx, q, c); err != nil {
		return domain.Customer{}, err
	}
	if err := q.CreateCustomer(ctx, &c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if err := normalizeCustomer(&c); err != nil {
		return domain.Customer{}, err
	}
	q := store.New(s.db)
	if _, err := q.GetCustomer(ctx, c.ID); err != nil {
		return domain.Customer{}, err
	}
	if err := phoneTaken(ctx, q, c); err != nil {
		return domain.Customer{}, err
	}
	if err := q.UpdateCustomer(ctx, c); err != nil {
		return domain.Customer{}, err
	}
	return q.GetCustomer(ctx, c.ID)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	return store.New(s.db).GetCustomer(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	return store.New(s.db).ListCustomers(ctx, query)
}

// RecordPayment settles part or all of a customer's outstanding balance.
func (s *CustomerService) RecordPayment(ctx context.Context, customerID int64, req domain.PaymentRequest) (domain.Credit, error) {
	var entry domain.Credit
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		c, err := q.GetCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		amount := round2(req.Amount)
		if !amount.IsPositive() {
			return domain.Invalid("payment amount must be positive")
		}
		if amount.GreaterThan(c.CurrentBalance) {
			return domain.Invalid("payment %s exceeds outstanding balance %s", amount.StringFixed(2), c.CurrentBalance.StringFixed(2))
		}
		mode := strings.ToUpper(strings.TrimSpace(req.PaymentMode))
		if mode == "" {
			mode = string(domain.PaymentCash)
		}
		entry = domain.Credit{
			CustomerID:   c.ID,
			Type:         domain.CreditPayment,
			Amount:       amount,
			BalanceAfter: c.CurrentBalance.Sub(amount),
			PaymentMode:  mode,
			Notes:        strings.TrimSpace(req.Notes),
			CreatedAt:    timeutil.Stamp(),
		}
		if err := q.CreateCredit(ctx, &entry); err != nil {
			return err
		}
		return q.SetCustomerBalance(ctx, c.ID, entry.BalanceAfter)
	})
	track("record_payment", err)
	if err != nil {
		return domain.Credit{}, err
	}
	log.Info().Int64("customer_id", customerID).Str("amount", entry.Amount.StringFixed(2)).
		Str("balance", entry.BalanceAfter.StringFixed(2)).Msg("payment recorded")
	return entry, nil
}

// Ledger returns the customer's credit entries oldest first.
func (s *CustomerService) Ledger(ctx context.Context, customerID int64) ([]domain.Credit, error) {
	q := store.New(s.db)
	if _, err := q.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return q.Credits(ctx, customerID)
}

// VerifyBalance recomputes the balance from the ledger and reports any drift
// from the stored current_balance.
func (s *CustomerService) VerifyBalance(ctx context.Context, customerID int64) (domain.BalanceCheck, error) {
	q := store.New(s.db)
	c, err := q.GetCustomer(ctx, customerID)
	if err != nil {
		return domain.BalanceCheck{}, err
	}
	ledger, err := q.LedgerBalance(ctx, customerID)
	if err != nil {
		return domain.BalanceCheck{}, err
	}
	check := domain.BalanceCheck{
		CustomerID:     c.ID,
		CurrentBalance: round2(c.CurrentBalance),
		LedgerBalance:  ledger,
		Drift:          round2(c.CurrentBalance.Sub(ledger)),
	}
	if !check.Consistent() {
		log.Warn().Int64("customer_id", c.ID).Str("drift", check.Drift.StringFixed(2)).Msg("customer balance drifted from ledger")
	}
	return check, nil
}
