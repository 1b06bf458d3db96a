package store

import (
	"context"

	"medbill/m/internal/timeutil"
)

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (q *Queries) AllSettings(ctx context.Context) (map[string]string, error) {
	var rows []settingRow
	if err := q.list(ctx, &rows, "load settings", `SELECT key, value FROM settings`); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	return values, nil
}

func (q *Queries) PutSetting(ctx context.Context, key, value string) error {
	_, err := q.exec(ctx, "save setting", `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, timeutil.Stamp())
	return err
}
