package store

import (
	"context"

	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

type billTotals struct {
	Bills         int64           `db:"bills"`
	TaxableAmount decimal.Decimal `db:"taxable_amount"`
	TotalGST      decimal.Decimal `db:"total_gst"`
	GrandTotal    decimal.Decimal `db:"grand_total"`
}

func (q *Queries) ScheduleRegister(ctx context.Context, from, to string) ([]domain.ScheduleRegisterEntry, error) {
	entries := []domain.ScheduleRegisterEntry{}
	err := q.list(ctx, &entries, "schedule register", `SELECT b.bill_number, b.created_at AS bill_date,
			bi.medicine_name, bi.batch_number, r.schedule, r.quantity, r.patient_name, r.patient_age,
			r.patient_gender, r.patient_address, r.doctor_name, r.doctor_registration_no, r.prescription_no
		FROM scheduled_medicine_records r
		JOIN bills b ON b.id = r.bill_id
		JOIN bill_items bi ON bi.id = r.bill_item_id
		WHERE b.created_at BETWEEN ? AND ?
		ORDER BY b.created_at, r.id`, from, to)
	return entries, err
}

// SalesTotals aggregates bills created within [from, to].
func (q *Queries) SalesTotals(ctx context.Context, from, to string) (domain.SalesSummary, error) {
	var t billTotals
	if err := sqlxGet(ctx, q, &t, "sales totals", `SELECT COUNT(*) AS bills,
			COALESCE(SUM(taxable_amount), 0) AS taxable_amount,
			COALESCE(SUM(total_gst), 0) AS total_gst,
			COALESCE(SUM(grand_total), 0) AS grand_total
		FROM bills WHERE created_at BETWEEN ? AND ?`, from, to); err != nil {
		return domain.SalesSummary{}, err
	}
	modes := []domain.PaymentModeTotal{}
	if err := q.list(ctx, &modes, "sales by payment mode", `SELECT payment_mode, COUNT(*) AS bills,
			COALESCE(SUM(grand_total), 0) AS grand_total
		FROM bills WHERE created_at BETWEEN ? AND ?
		GROUP BY payment_mode ORDER BY payment_mode`, from, to); err != nil {
		return domain.SalesSummary{}, err
	}
	for i := range modes {
		modes[i].GrandTotal = modes[i].GrandTotal.Round(2)
	}
	return domain.SalesSummary{
		From:          from,
		To:            to,
		Bills:         t.Bills,
		TaxableAmount: t.TaxableAmount.Round(2),
		TotalGST:      t.TotalGST.Round(2),
		GrandTotal:    t.GrandTotal.Round(2),
		ByPaymentMode: modes,
	}, nil
}

// sqlxGet is get without the not-found mapping; aggregates always return a row.
func sqlxGet(ctx context.Context, q *Queries, dest any, op, query string, args ...any) error {
	if err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query), args...).StructScan(dest); err != nil {
		return domain.Persistence(op, err)
	}
	return nil
}
