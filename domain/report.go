package domain

import "github.com/shopspring/decimal"

// ScheduleRegisterEntry is one line of the Schedule H/H1 sales register.
type ScheduleRegisterEntry struct {
	BillNumber           string   `db:"bill_number" json:"bill_number"`
	BillDate             string   `db:"bill_date" json:"bill_date"`
	MedicineName         string   `db:"medicine_name" json:"medicine_name"`
	BatchNumber          string   `db:"batch_number" json:"batch_number"`
	Schedule             Schedule `db:"schedule" json:"schedule"`
	Quantity             int64    `db:"quantity" json:"quantity"`
	PatientName          string   `db:"patient_name" json:"patient_name"`
	PatientAge           int      `db:"patient_age" json:"patient_age"`
	PatientGender        string   `db:"patient_gender" json:"patient_gender"`
	PatientAddress       string   `db:"patient_address" json:"patient_address"`
	DoctorName           string   `db:"doctor_name" json:"doctor_name"`
	DoctorRegistrationNo string   `db:"doctor_registration_no" json:"doctor_registration_no"`
	PrescriptionNo       string   `db:"prescription_no" json:"prescription_no"`
}

type PaymentModeTotal struct {
	PaymentMode PaymentMode     `db:"payment_mode" json:"payment_mode"`
	Bills       int64           `db:"bills" json:"bills"`
	GrandTotal  decimal.Decimal `db:"grand_total" json:"grand_total"`
}

type SalesSummary struct {
	From          string             `json:"from"`
	To            string             `json:"to"`
	Bills         int64              `json:"bills"`
	TaxableAmount decimal.Decimal    `json:"taxable_amount"`
	TotalGST      decimal.Decimal    `json:"total_gst"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	ByPaymentMode []PaymentModeTotal `json:"by_payment_mode"`
}

type Dashboard struct {
	TodayBills          int64           `json:"today_bills"`
	TodaySales          decimal.Decimal `json:"today_sales"`
	LowStockCount       int             `json:"low_stock_count"`
	ExpiringCount       int             `json:"expiring_count"`
	PendingRunningBills int64           `json:"pending_running_bills"`
	TotalReceivable     decimal.Decimal `json:"total_receivable"`
	MedicineCount       int64           `json:"medicine_count"`
}
