package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbill/m/internal/database"
	"medbill/m/internal/migrations"
)

func newDB(t *testing.T, dsn string) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

func TestLoadMedicinesSkipsDuplicates(t *testing.T) {
	db := newDB(t, "file::memory:")
	path := filepath.Join(t.TempDir(), "medicines.csv")
	csv := "name,generic_name,manufacturer,hsn_code,category,drug_type,pack_size,unit,gst_rate,schedule\n" +
		"Crocin,Paracetamol,GSK,3004,Analgesic,Tablet,15,strip,12,\n" +
		"Alprax,Alprazolam,Torrent,3004,Anxiolytic,Tablet,10,strip,12,h1\n" +
		"Crocin,Paracetamol,GSK,3004,Analgesic,Tablet,15,strip,12,\n" +
		"short,row\n" +
		",missing name,x,x,x,x,x,x,x,x\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	rows, err := LoadMedicines(context.Background(), db, path)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	var schedule string
	require.NoError(t, db.Get(&schedule, `SELECT schedule FROM medicines WHERE name = 'Alprax'`))
	assert.Equal(t, "H1", schedule)

	rows, err = LoadMedicines(context.Background(), db, path)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestLoadMedicinesMissingFile(t *testing.T) {
	db := newDB(t, "file::memory:")
	_, err := LoadMedicines(context.Background(), db, filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestImportBundleOnlyIntoEmptyCatalogue(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "medicines-bundle.db")

	bundle, err := sqlx.Connect(database.DriverSQLite, bundlePath)
	require.NoError(t, err)
	bundle.MustExec(`CREATE TABLE medicines (name TEXT, generic_name TEXT, manufacturer TEXT, hsn_code TEXT,
		category TEXT, drug_type TEXT, pack_size TEXT, unit TEXT, reorder_level INTEGER, is_active INTEGER)`)
	bundle.MustExec(`INSERT INTO medicines VALUES
		('Pan 40', 'Pantoprazole', 'Alkem', '3004', 'Antacid', 'Tablet', '15', 'strip', 5, 1),
		('Shelcal', 'Calcium', 'Torrent', '3004', 'Supplement', 'Tablet', '15', 'strip', 0, 1)`)
	require.NoError(t, bundle.Close())

	db := newDB(t, "file:"+filepath.Join(dir, "main.db"))
	ctx := context.Background()

	imported, err := ImportBundle(ctx, db, bundlePath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), imported)

	again, err := ImportBundle(ctx, db, bundlePath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), again)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM medicines`))
	assert.Equal(t, 2, count)

	_, err = ImportBundle(ctx, db, filepath.Join(dir, "missing.db"))
	assert.Error(t, err)
}
