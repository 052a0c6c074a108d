package rdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eidos/store"
)

func (d *DB) CreateSleepRecord(ctx context.Context, create *store.SleepRecord) (*store.SleepRecord, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	fields := []string{"user_id", "quality", "duration", "sleep_ts", "wake_ts", "mood", "notes", "created_ts"}
	args := []any{create.UserID, create.Quality, create.Duration, create.SleepTs, create.WakeTs, create.Mood, create.Notes, create.CreatedTs}
	stmt := `INSERT INTO sleep_record (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create sleep record")
	}
	return create, nil
}

func (d *DB) ListSleepRecords(ctx context.Context, find *store.FindSleepRecord) ([]*store.SleepRecord, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+d.next(args)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+d.next(args)), append(args, *v)
	}
	if v := find.SleepTsAfter; v != nil {
		where, args = append(where, "sleep_ts >= "+d.next(args)), append(args, *v)
	}

	query := `SELECT id, user_id, quality, duration, sleep_ts, wake_ts, mood, notes, created_ts FROM sleep_record WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY sleep_ts DESC, id DESC`
	if v := find.Limit; v != nil {
		query, args = query+" LIMIT "+d.next(args), append(args, *v)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sleep records")
	}
	defer rows.Close()

	list := make([]*store.SleepRecord, 0)
	for rows.Next() {
		r := &store.SleepRecord{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.Quality, &r.Duration, &r.SleepTs, &r.WakeTs, &r.Mood, &r.Notes, &r.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan sleep record")
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate sleep records")
	}
	return list, nil
}

func (d *DB) DeleteSleepRecord(ctx context.Context, delete *store.DeleteSleepRecord) error {
	stmt := `DELETE FROM sleep_record WHERE id = ` + d.placeholder(1) + ` AND user_id = ` + d.placeholder(2)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete sleep record")
	}
	return nil
}
