package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/database"
	"medbill/m/internal/timeutil"
)

// Catalogue CSV columns, after a header row.
const (
	colName = iota
	colGenericName
	colManufacturer
	colHSNCode
	colCategory
	colDrugType
	colPackSize
	colUnit
	colGSTRate
	colSchedule
	csvColumns
)

// LoadMedicines ingests a catalogue CSV into the medicines table, skipping
// rows that already exist. It returns the number of rows inserted.
func LoadMedicines(ctx context.Context, db *sqlx.DB, csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open medicine catalogue %s: %w", csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("read medicine header: %w", err)
	}

	rows := 0
	err = database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO medicines
			(name, generic_name, manufacturer, hsn_code, category, drug_type, pack_size, unit, gst_rate, schedule,
			 reorder_level, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
			ON CONFLICT (name, manufacturer) DO NOTHING`))
		if err != nil {
			return fmt.Errorf("prepare medicine insert: %w", err)
		}
		defer stmt.Close()

		now := timeutil.Stamp()
		line := 1
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			line++
			if err != nil {
				log.Warn().Err(err).Int("line", line).Msg("skipping unreadable medicine row")
				continue
			}
			if len(record) < csvColumns {
				continue
			}
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
			if record[colName] == "" {
				continue
			}
			rate, err := decimal.NewFromString(record[colGSTRate])
			if err != nil {
				rate = decimal.NewFromInt(12)
			}
			schedule := domain.Schedule(strings.ToUpper(record[colSchedule]))
			if !schedule.Valid() {
				schedule = domain.ScheduleNone
			}

			res, err := stmt.ExecContext(ctx, record[colName], record[colGenericName], record[colManufacturer],
				record[colHSNCode], record[colCategory], record[colDrugType], record[colPackSize], record[colUnit],
				rate, schedule, true, now)
			if err != nil {
				return fmt.Errorf("insert medicine %s: %w", record[colName], err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				rows++
			}
		}
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int("rows", rows).Str("file", csvPath).Msg("seeded medicine catalogue")
	return rows, nil
}
