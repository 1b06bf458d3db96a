package domain

// Settings is the pharmacy profile printed on bills plus a few behaviour knobs.
type Settings struct {
	PharmacyName    string `json:"pharmacy_name"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	GSTIN           string `json:"gstin"`
	DrugLicenseNo   string `json:"drug_license_no"`
	BillPrefix      string `json:"bill_prefix"`
	ExpiryAlertDays int    `json:"expiry_alert_days"`
}

// Setting keys as stored in the settings table.
const (
	SettingPharmacyName    = "pharmacy_name"
	SettingAddress         = "address"
	SettingPhone           = "phone"
	SettingGSTIN           = "gstin"
	SettingDrugLicenseNo   = "drug_license_no"
	SettingBillPrefix      = "bill_prefix"
	SettingExpiryAlertDays = "expiry_alert_days"
)

// DefaultSettings are used for keys missing from the settings table.
func DefaultSettings() Settings {
	return Settings{
		PharmacyName:    "MedBill Pharmacy",
		BillPrefix:      "INV",
		ExpiryAlertDays: 90,
	}
}
