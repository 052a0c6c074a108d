package rdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eidos/store"
)

const calendarEventColumns = `id, user_id, title, description, start_ts, end_ts, all_day, recurrence, reminder_minutes, color, module_id, created_ts, updated_ts`

func scanCalendarEvent(row rowScanner) (*store.CalendarEvent, error) {
	e := &store.CalendarEvent{}
	var endTs sql.NullInt64
	var reminderMinutes, moduleID sql.NullInt32
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartTs, &endTs, &e.AllDay, &e.Recurrence,
		&reminderMinutes, &e.Color, &moduleID, &e.CreatedTs, &e.UpdatedTs); err != nil {
		return nil, err
	}
	if endTs.Valid {
		e.EndTs = &endTs.Int64
	}
	if reminderMinutes.Valid {
		e.ReminderMinutes = &reminderMinutes.Int32
	}
	if moduleID.Valid {
		e.ModuleID = &moduleID.Int32
	}
	return e, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt32(v *int32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *v, Valid: true}
}

func (d *DB) CreateCalendarEvent(ctx context.Context, create *store.CalendarEvent) (*store.CalendarEvent, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = create.CreatedTs
	}
	if create.Color == "" {
		create.Color = store.DefaultEventColor
	}
	fields := []string{"user_id", "title", "description", "start_ts", "end_ts", "all_day", "recurrence", "reminder_minutes", "color", "module_id", "created_ts", "updated_ts"}
	args := []any{create.UserID, create.Title, create.Description, create.StartTs, nullInt64(create.EndTs), create.AllDay, create.Recurrence,
		nullInt32(create.ReminderMinutes), create.Color, nullInt32(create.ModuleID), create.CreatedTs, create.UpdatedTs}
	stmt := `INSERT INTO calendar_event (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create calendar event")
	}
	return create, nil
}

func (d *DB) ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+d.next(args)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+d.next(args)), append(args, *v)
	}
	if v := find.StartTsAfter; v != nil {
		where, args = append(where, "start_ts >= "+d.next(args)), append(args, *v)
	}
	if v := find.StartTsBefore; v != nil {
		where, args = append(where, "start_ts <= "+d.next(args)), append(args, *v)
	}

	query := `SELECT ` + calendarEventColumns + ` FROM calendar_event WHERE ` + strings.Join(where, " AND ") + ` ORDER BY start_ts ASC, id ASC`
	if v := find.Limit; v != nil {
		query, args = query+" LIMIT "+d.next(args), append(args, *v)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list calendar events")
	}
	defer rows.Close()

	list := make([]*store.CalendarEvent, 0)
	for rows.Next() {
		e, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan calendar event")
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate calendar events")
	}
	return list, nil
}

func (d *DB) UpdateCalendarEvent(ctx context.Context, update *store.UpdateCalendarEvent) (*store.CalendarEvent, error) {
	updatedTs := update.UpdatedTs
	if updatedTs == 0 {
		updatedTs = now()
	}
	set, args := []string{"updated_ts = " + d.placeholder(1)}, []any{updatedTs}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+d.next(args)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+d.next(args)), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = "+d.next(args)), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = "+d.next(args)), append(args, *v)
	}
	if v := update.AllDay; v != nil {
		set, args = append(set, "all_day = "+d.next(args)), append(args, *v)
	}
	if v := update.Recurrence; v != nil {
		set, args = append(set, "recurrence = "+d.next(args)), append(args, *v)
	}
	if v := update.ReminderMinutes; v != nil {
		set, args = append(set, "reminder_minutes = "+d.next(args)), append(args, *v)
	}
	if v := update.Color; v != nil {
		set, args = append(set, "color = "+d.next(args)), append(args, *v)
	}

	args = append(args, update.ID)
	stmt := `UPDATE calendar_event SET ` + strings.Join(set, ", ") + ` WHERE id = ` + d.placeholder(len(args)) + ` RETURNING ` + calendarEventColumns
	e, err := scanCalendarEvent(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to update calendar event")
	}
	return e, nil
}

func (d *DB) DeleteCalendarEvent(ctx context.Context, delete *store.DeleteCalendarEvent) error {
	stmt := `DELETE FROM calendar_event WHERE id = ` + d.placeholder(1) + ` AND user_id = ` + d.placeholder(2)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete calendar event")
	}
	return nil
}
