package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/store"
	"medbill/m/internal/timeutil"
)

// salesRegisterLimit bounds how many bills one register request loads.
const salesRegisterLimit = 10000

type ReportService struct {
	db            *sqlx.DB
	state         *appstate.State
	registerLimit int
}

// BillWithItems is one entry of the sales register.
type BillWithItems struct {
	domain.Bill
	Items []domain.BillItem `json:"items"`
}

// dayBounds validates inclusive YYYY-MM-DD bounds, defaulting both to today.
func dayBounds(from, to string) (string, string, error) {
	today := timeutil.Today()
	if from == "" {
		from = today
	}
	if to == "" {
		to = today
	}
	fromDay, err := timeutil.ParseDate(from)
	if err != nil {
		return "", "", domain.Invalid("from must be YYYY-MM-DD")
	}
	toDay, err := timeutil.ParseDate(to)
	if err != nil {
		return "", "", domain.Invalid("to must be YYYY-MM-DD")
	}
	if toDay.Before(fromDay) {
		return "", "", domain.Invalid("from must not be after to")
	}
	from, to = timeutil.DayRange(from, to)
	return from, to, nil
}

// ScheduleRegister lists Schedule H/H1 sales for the drug inspector's register.
func (s *ReportService) ScheduleRegister(ctx context.Context, from, to string) ([]domain.ScheduleRegisterEntry, error) {
	from, to, err := dayBounds(from, to)
	if err != nil {
		return nil, err
	}
	return store.New(s.db).ScheduleRegister(ctx, from, to)
}

func (s *ReportService) SalesSummary(ctx context.Context, from, to string) (domain.SalesSummary, error) {
	from, to, err := dayBounds(from, to)
	if err != nil {
		return domain.SalesSummary{}, err
	}
	return store.New(s.db).SalesTotals(ctx, from, to)
}

// SalesRegister lists the bills of a period with their items. A period with
// more bills than the register limit is rejected rather than truncated.
func (s *ReportService) SalesRegister(ctx context.Context, from, to string) ([]BillWithItems, error) {
	from, to, err := dayBounds(from, to)
	if err != nil {
		return nil, err
	}
	q := store.New(s.db)
	limit := s.registerLimit
	if limit <= 0 {
		limit = salesRegisterLimit
	}
	bills, err := q.ListBills(ctx, domain.BillFilter{From: from, To: to, Limit: limit + 1})
	if err != nil {
		return nil, err
	}
	if len(bills) > limit {
		return nil, domain.Invalid("more than %d bills between %s and %s, narrow the date range", limit, from[:10], to[:10])
	}
	ids := make([]int64, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	items, err := q.BillItemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	byBill := make(map[int64][]domain.BillItem, len(bills))
	for _, it := range items {
		byBill[it.BillID] = append(byBill[it.BillID], it)
	}
	register := make([]BillWithItems, len(bills))
	for i, b := range bills {
		register[i] = BillWithItems{Bill: b, Items: byBill[b.ID]}
	}
	return register, nil
}

// Dashboard summarises today's counter activity and pending follow-ups.
func (s *ReportService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	q := store.New(s.db)
	today := timeutil.Today()
	from, to := timeutil.DayRange(today, today)

	sales, err := q.SalesTotals(ctx, from, to)
	if err != nil {
		return domain.Dashboard{}, err
	}
	low, err := q.LowStock(ctx, today)
	if err != nil {
		return domain.Dashboard{}, err
	}
	until := timeutil.Now().AddDate(0, 0, s.state.Settings().ExpiryAlertDays).Format(timeutil.DateLayout)
	expiring, err := q.ExpiringBatches(ctx, until)
	if err != nil {
		return domain.Dashboard{}, err
	}
	pending, err := q.CountRunningBills(ctx, domain.RunningBillPending)
	if err != nil {
		return domain.Dashboard{}, err
	}
	receivable, err := q.TotalReceivable(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	medicines, err := q.CountMedicines(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Dashboard{
		TodayBills:          sales.Bills,
		TodaySales:          sales.GrandTotal,
		LowStockCount:       len(low),
		ExpiringCount:       len(expiring),
		PendingRunningBills: pending,
		TotalReceivable:     receivable,
		MedicineCount:       medicines,
	}, nil
}
