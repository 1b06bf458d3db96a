package migrations

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{id}},
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_active {{bool}} NOT NULL DEFAULT {{true}},
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS medicines (
		id {{id}},
		name TEXT NOT NULL,
		generic_name TEXT NOT NULL DEFAULT '',
		manufacturer TEXT NOT NULL DEFAULT '',
		hsn_code TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		drug_type TEXT NOT NULL DEFAULT '',
		pack_size TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		gst_rate {{money}} NOT NULL DEFAULT 12,
		schedule TEXT NOT NULL DEFAULT 'NONE',
		reorder_level INTEGER NOT NULL DEFAULT 0,
		is_active {{bool}} NOT NULL DEFAULT {{true}},
		created_at TEXT NOT NULL,
		UNIQUE(name, manufacturer)
	);`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id {{id}},
		name TEXT NOT NULL UNIQUE,
		contact_person TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		gstin TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS batches (
		id {{id}},
		medicine_id BIGINT NOT NULL REFERENCES medicines(id),
		supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
		batch_number TEXT NOT NULL,
		expiry_date TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		purchase_price {{money}} NOT NULL,
		mrp {{money}} NOT NULL,
		selling_price {{money}} NOT NULL,
		purchase_invoice_no TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id {{id}},
		name TEXT NOT NULL,
		phone TEXT UNIQUE,
		address TEXT NOT NULL DEFAULT '',
		credit_limit {{money}} NOT NULL DEFAULT 0,
		current_balance {{money}} NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS bills (
		id {{id}},
		bill_number TEXT NOT NULL UNIQUE,
		customer_id BIGINT REFERENCES customers(id),
		customer_name TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		doctor_name TEXT NOT NULL DEFAULT '',
		payment_mode TEXT NOT NULL,
		taxable_amount {{money}} NOT NULL,
		cgst_amount {{money}} NOT NULL,
		sgst_amount {{money}} NOT NULL,
		total_gst {{money}} NOT NULL,
		grand_total {{money}} NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS bill_items (
		id {{id}},
		bill_id BIGINT NOT NULL REFERENCES bills(id),
		batch_id BIGINT NOT NULL REFERENCES batches(id),
		medicine_id BIGINT NOT NULL REFERENCES medicines(id),
		medicine_name TEXT NOT NULL,
		hsn_code TEXT NOT NULL DEFAULT '',
		batch_number TEXT NOT NULL DEFAULT '',
		expiry_date TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price {{money}} NOT NULL,
		discount_percent {{money}} NOT NULL DEFAULT 0,
		gst_rate {{money}} NOT NULL,
		taxable_amount {{money}} NOT NULL,
		cgst_amount {{money}} NOT NULL,
		sgst_amount {{money}} NOT NULL,
		total_amount {{money}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS scheduled_medicine_records (
		id {{id}},
		bill_id BIGINT NOT NULL REFERENCES bills(id),
		bill_item_id BIGINT NOT NULL REFERENCES bill_items(id),
		medicine_id BIGINT NOT NULL REFERENCES medicines(id),
		schedule TEXT NOT NULL,
		patient_name TEXT NOT NULL,
		patient_age INTEGER NOT NULL,
		patient_gender TEXT NOT NULL,
		patient_address TEXT NOT NULL DEFAULT '',
		doctor_name TEXT NOT NULL DEFAULT '',
		doctor_registration_no TEXT NOT NULL DEFAULT '',
		prescription_no TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS running_bills (
		id {{id}},
		customer_id BIGINT REFERENCES customers(id),
		customer_name TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		medicine_id BIGINT REFERENCES medicines(id),
		medicine_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price {{money}} NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'PENDING',
		batch_id BIGINT REFERENCES batches(id),
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sales_returns (
		id {{id}},
		return_number TEXT NOT NULL,
		bill_id BIGINT NOT NULL REFERENCES bills(id),
		bill_item_id BIGINT NOT NULL REFERENCES bill_items(id),
		batch_id BIGINT NOT NULL REFERENCES batches(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		refund_amount {{money}} NOT NULL,
		refund_mode TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS credits (
		id {{id}},
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		type TEXT NOT NULL,
		amount {{money}} NOT NULL CHECK (amount > 0),
		balance_after {{money}} NOT NULL,
		bill_id BIGINT REFERENCES bills(id),
		sales_return_id BIGINT REFERENCES sales_returns(id),
		payment_mode TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS supplier_returns (
		id {{id}},
		supplier_id BIGINT NOT NULL REFERENCES suppliers(id),
		batch_id BIGINT NOT NULL REFERENCES batches(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		amount {{money}} NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_batches_medicine ON batches(medicine_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bills_created ON bills(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_bill_items_bill ON bill_items(bill_id);`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_bill ON scheduled_medicine_records(bill_id);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_returns_item ON sales_returns(bill_item_id);`,
	`CREATE INDEX IF NOT EXISTS idx_credits_customer ON credits(customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_running_bills_status ON running_bills(status);`,
}

var dialects = map[string]*strings.Replacer{
	"sqlite": strings.NewReplacer(
		"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{money}}", "REAL",
		"{{bool}}", "INTEGER",
		"{{true}}", "1",
	),
	"pgx": strings.NewReplacer(
		"{{id}}", "BIGSERIAL PRIMARY KEY",
		"{{money}}", "NUMERIC(14,2)",
		"{{bool}}", "BOOLEAN",
		"{{true}}", "TRUE",
	),
}

// Run creates the database schema required by the pharmacy backend.
func Run(db *sqlx.DB) error {
	dialect, ok := dialects[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for i, stmt := range schema {
		if _, err := db.Exec(dialect.Replace(stmt)); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	log.Debug().Int("statements", len(schema)).Str("driver", db.DriverName()).Msg("schema up to date")
	return nil
}
