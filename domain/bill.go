package domain

import "github.com/shopspring/decimal"

type PaymentMode string

const (
	PaymentCash   PaymentMode = "CASH"
	PaymentCard   PaymentMode = "CARD"
	PaymentUPI    PaymentMode = "UPI"
	PaymentCredit PaymentMode = "CREDIT"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentCredit:
		return true
	}
	return false
}

type Bill struct {
	ID            int64           `db:"id" json:"id"`
	BillNumber    string          `db:"bill_number" json:"bill_number"`
	CustomerID    *int64          `db:"customer_id" json:"customer_id,omitempty"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerPhone string          `db:"customer_phone" json:"customer_phone"`
	DoctorName    string          `db:"doctor_name" json:"doctor_name"`
	PaymentMode   PaymentMode     `db:"payment_mode" json:"payment_mode"`
	TaxableAmount decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	CGSTAmount    decimal.Decimal `db:"cgst_amount" json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `db:"sgst_amount" json:"sgst_amount"`
	TotalGST      decimal.Decimal `db:"total_gst" json:"total_gst"`
	GrandTotal    decimal.Decimal `db:"grand_total" json:"grand_total"`
	CreatedBy     string          `db:"created_by" json:"created_by"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
}

// BillItem fixes price and GST rate at sale time; rows are never updated.
type BillItem struct {
	ID              int64           `db:"id" json:"id"`
	BillID          int64           `db:"bill_id" json:"bill_id"`
	BatchID         int64           `db:"batch_id" json:"batch_id"`
	MedicineID      int64           `db:"medicine_id" json:"medicine_id"`
	MedicineName    string          `db:"medicine_name" json:"medicine_name"`
	HSNCode         string          `db:"hsn_code" json:"hsn_code"`
	BatchNumber     string          `db:"batch_number" json:"batch_number"`
	ExpiryDate      string          `db:"expiry_date" json:"expiry_date"`
	Quantity        int64           `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	GSTRate         decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	TaxableAmount   decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	CGSTAmount      decimal.Decimal `db:"cgst_amount" json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `db:"sgst_amount" json:"sgst_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// Patient carries the prescription details required for Schedule H/H1 sales.
type Patient struct {
	Name                 string `json:"name"`
	Age                  int    `json:"age"`
	Gender               string `json:"gender"`
	Address              string `json:"address"`
	DoctorRegistrationNo string `json:"doctor_registration_no"`
	PrescriptionNo       string `json:"prescription_no"`
}

type ScheduledMedicineRecord struct {
	ID                   int64    `db:"id" json:"id"`
	BillID               int64    `db:"bill_id" json:"bill_id"`
	BillItemID           int64    `db:"bill_item_id" json:"bill_item_id"`
	MedicineID           int64    `db:"medicine_id" json:"medicine_id"`
	Schedule             Schedule `db:"schedule" json:"schedule"`
	PatientName          string   `db:"patient_name" json:"patient_name"`
	PatientAge           int      `db:"patient_age" json:"patient_age"`
	PatientGender        string   `db:"patient_gender" json:"patient_gender"`
	PatientAddress       string   `db:"patient_address" json:"patient_address"`
	DoctorName           string   `db:"doctor_name" json:"doctor_name"`
	DoctorRegistrationNo string   `db:"doctor_registration_no" json:"doctor_registration_no"`
	PrescriptionNo       string   `db:"prescription_no" json:"prescription_no"`
	Quantity             int64    `db:"quantity" json:"quantity"`
	CreatedAt            string   `db:"created_at" json:"created_at"`
}

// BillDetail is a saved bill with its lines and regulatory records.
type BillDetail struct {
	Bill
	Items     []BillItem                `json:"items"`
	Scheduled []ScheduledMedicineRecord `json:"scheduled_records"`
}

type BillLine struct {
	BatchID         int64           `json:"batch_id"`
	Quantity        int64           `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type CreateBillRequest struct {
	CustomerID    *int64      `json:"customer_id,omitempty"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	DoctorName    string      `json:"doctor_name"`
	PaymentMode   PaymentMode `json:"payment_mode"`
	Items         []BillLine  `json:"items"`
	Patient       *Patient    `json:"patient,omitempty"`
}

type BillFilter struct {
	From        string
	To          string
	CustomerID  int64
	PaymentMode PaymentMode
	Limit       int
}
