package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"medbill/m/internal/database"
	"medbill/m/internal/timeutil"
)

// ImportBundle copies the medicines of a bundled SQLite catalogue into an
// empty catalogue. When medicines already exist nothing is imported and the
// existing count is returned.
func ImportBundle(ctx context.Context, db *sqlx.DB, bundlePath string) (int64, error) {
	if db.DriverName() != database.DriverSQLite {
		return 0, fmt.Errorf("bundle import needs sqlite, have %s", db.DriverName())
	}
	if _, err := os.Stat(bundlePath); err != nil {
		return 0, fmt.Errorf("medicine bundle: %w", err)
	}

	var current int64
	if err := db.GetContext(ctx, &current, `SELECT COUNT(*) FROM medicines`); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	if current > 0 {
		log.Debug().Int64("medicines", current).Msg("catalogue present, skipping bundle import")
		return current, nil
	}

	// ATTACH is not allowed inside a transaction, so pin one connection.
	conn, err := db.Connx(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `ATTACH DATABASE ? AS bundle`, bundlePath); err != nil {
		return 0, fmt.Errorf("attach bundle: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), `DETACH DATABASE bundle`); err != nil {
			log.Warn().Err(err).Msg("detach bundle failed")
		}
	}()

	res, err := conn.ExecContext(ctx, `INSERT OR IGNORE INTO medicines
		(name, generic_name, manufacturer, hsn_code, category, drug_type, pack_size, unit, reorder_level, is_active, created_at)
		SELECT name, COALESCE(generic_name, ''), COALESCE(manufacturer, ''), COALESCE(hsn_code, ''),
			COALESCE(category, ''), COALESCE(drug_type, ''), COALESCE(pack_size, ''), COALESCE(unit, ''),
			COALESCE(reorder_level, 0), COALESCE(is_active, 1), ?
		FROM bundle.medicines`, timeutil.Stamp())
	if err != nil {
		return 0, fmt.Errorf("import bundle medicines: %w", err)
	}
	imported, _ := res.RowsAffected()
	log.Info().Int64("medicines", imported).Str("bundle", bundlePath).Msg("imported bundled catalogue")
	return imported, nil
}
