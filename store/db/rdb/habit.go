package rdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eidos/store"
)

const habitColumns = `id, user_id, name, description, frequency, target_count, icon, color, active, created_ts`

func scanHabit(row rowScanner) (*store.Habit, error) {
	h := &store.Habit{}
	var frequency string
	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &frequency, &h.TargetCount, &h.Icon, &h.Color, &h.Active, &h.CreatedTs); err != nil {
		return nil, err
	}
	h.Frequency = store.HabitFrequency(frequency)
	return h, nil
}

func (d *DB) CreateHabit(ctx context.Context, create *store.Habit) (*store.Habit, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	fields := []string{"user_id", "name", "description", "frequency", "target_count", "icon", "color", "active", "created_ts"}
	args := []any{create.UserID, create.Name, create.Description, string(create.Frequency), create.TargetCount, create.Icon, create.Color, create.Active, create.CreatedTs}
	stmt := `INSERT INTO habit (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create habit")
	}
	return create, nil
}

func (d *DB) ListHabits(ctx context.Context, find *store.FindHabit) ([]*store.Habit, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+d.next(args)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+d.next(args)), append(args, *v)
	}
	if v := find.Active; v != nil {
		where, args = append(where, "active = "+d.next(args)), append(args, *v)
	}

	query := `SELECT ` + habitColumns + ` FROM habit WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts ASC, id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list habits")
	}
	defer rows.Close()

	list := make([]*store.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan habit")
		}
		list = append(list, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate habits")
	}
	return list, nil
}

func (d *DB) UpdateHabit(ctx context.Context, update *store.UpdateHabit) (*store.Habit, error) {
	set, args := []string{}, []any{}
	if v := update.Name; v != nil {
		set, args = append(set, "name = "+d.next(args)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+d.next(args)), append(args, *v)
	}
	if v := update.Frequency; v != nil {
		set, args = append(set, "frequency = "+d.next(args)), append(args, string(*v))
	}
	if v := update.TargetCount; v != nil {
		set, args = append(set, "target_count = "+d.next(args)), append(args, *v)
	}
	if v := update.Icon; v != nil {
		set, args = append(set, "icon = "+d.next(args)), append(args, *v)
	}
	if v := update.Color; v != nil {
		set, args = append(set, "color = "+d.next(args)), append(args, *v)
	}
	if v := update.Active; v != nil {
		set, args = append(set, "active = "+d.next(args)), append(args, *v)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE habit SET ` + strings.Join(set, ", ") + ` WHERE id = ` + d.placeholder(len(args)) + ` RETURNING ` + habitColumns
	h, err := scanHabit(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to update habit")
	}
	return h, nil
}

func (d *DB) DeleteHabit(ctx context.Context, delete *store.DeleteHabit) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	logStmt := `DELETE FROM habit_log WHERE habit_id IN (SELECT id FROM habit WHERE id = ` + d.placeholder(1) + ` AND user_id = ` + d.placeholder(2) + `)`
	if _, err := tx.ExecContext(ctx, logStmt, delete.ID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete habit logs")
	}
	habitStmt := `DELETE FROM habit WHERE id = ` + d.placeholder(1) + ` AND user_id = ` + d.placeholder(2)
	if _, err := tx.ExecContext(ctx, habitStmt, delete.ID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete habit")
	}
	return tx.Commit()
}

func (d *DB) CreateHabitLog(ctx context.Context, create *store.HabitLog) (*store.HabitLog, error) {
	if create.CompletedTs == 0 {
		create.CompletedTs = now()
	}
	fields := []string{"habit_id", "completed_ts", "notes"}
	args := []any{create.HabitID, create.CompletedTs, create.Notes}
	stmt := `INSERT INTO habit_log (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create habit log")
	}
	return create, nil
}

func (d *DB) ListHabitLogs(ctx context.Context, find *store.FindHabitLog) ([]*store.HabitLog, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.HabitID; v != nil {
		where, args = append(where, "habit_log.habit_id = "+d.next(args)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "habit.user_id = "+d.next(args)), append(args, *v)
	}
	if v := find.CompletedTsAfter; v != nil {
		where, args = append(where, "habit_log.completed_ts >= "+d.next(args)), append(args, *v)
	}

	query := `SELECT habit_log.id, habit_log.habit_id, habit_log.completed_ts, habit_log.notes
		FROM habit_log JOIN habit ON habit.id = habit_log.habit_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY habit_log.completed_ts DESC, habit_log.id DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list habit logs")
	}
	defer rows.Close()

	list := make([]*store.HabitLog, 0)
	for rows.Next() {
		l := &store.HabitLog{}
		if err := rows.Scan(&l.ID, &l.HabitID, &l.CompletedTs, &l.Notes); err != nil {
			return nil, errors.Wrap(err, "failed to scan habit log")
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate habit logs")
	}
	return list, nil
}
