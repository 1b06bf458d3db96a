package domain

import "github.com/shopspring/decimal"

// Schedule is the drug-control category of a medicine.
type Schedule string

const (
	ScheduleNone Schedule = "NONE"
	ScheduleH    Schedule = "H"
	ScheduleH1   Schedule = "H1"
)

// Regulated reports whether sales of the schedule need a patient record.
func (s Schedule) Regulated() bool {
	return s == ScheduleH || s == ScheduleH1
}

func (s Schedule) Valid() bool {
	switch s {
	case ScheduleNone, ScheduleH, ScheduleH1:
		return true
	}
	return false
}

type Medicine struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	GenericName  string          `db:"generic_name" json:"generic_name"`
	Manufacturer string          `db:"manufacturer" json:"manufacturer"`
	HSNCode      string          `db:"hsn_code" json:"hsn_code"`
	Category     string          `db:"category" json:"category"`
	DrugType     string          `db:"drug_type" json:"drug_type"`
	PackSize     string          `db:"pack_size" json:"pack_size"`
	Unit         string          `db:"unit" json:"unit"`
	GSTRate      decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	Schedule     Schedule        `db:"schedule" json:"schedule"`
	ReorderLevel int64           `db:"reorder_level" json:"reorder_level"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
}

// StockLevel is a medicine with the sum of its unexpired batch quantities.
type StockLevel struct {
	MedicineID   int64  `db:"medicine_id" json:"medicine_id"`
	Name         string `db:"name" json:"name"`
	ReorderLevel int64  `db:"reorder_level" json:"reorder_level"`
	Quantity     int64  `db:"quantity" json:"quantity"`
}
