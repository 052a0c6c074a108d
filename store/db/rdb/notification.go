package rdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eidos/store"
)

const notificationColumns = `id, user_id, title, message, priority, is_read, module_id, created_ts`

func scanNotification(row rowScanner) (*store.Notification, error) {
	n := &store.Notification{}
	var priority string
	var moduleID sql.NullInt32
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &priority, &n.Read, &moduleID, &n.CreatedTs); err != nil {
		return nil, err
	}
	n.Priority = store.NotificationPriority(priority)
	if moduleID.Valid {
		n.ModuleID = &moduleID.Int32
	}
	return n, nil
}

func (d *DB) CreateNotification(ctx context.Context, create *store.Notification) (*store.Notification, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	if create.Priority == "" {
		create.Priority = store.NotificationPriorityNormal
	}
	fields := []string{"user_id", "title", "message", "priority", "is_read", "module_id", "created_ts"}
	args := []any{create.UserID, create.Title, create.Message, string(create.Priority), create.Read, nullInt32(create.ModuleID), create.CreatedTs}
	stmt := `INSERT INTO notification (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create notification")
	}
	return create, nil
}

func (d *DB) ListNotifications(ctx context.Context, find *store.FindNotification) ([]*store.Notification, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+d.next(args)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+d.next(args)), append(args, *v)
	}
	if v := find.Read; v != nil {
		where, args = append(where, "is_read = "+d.next(args)), append(args, *v)
	}

	query := `SELECT ` + notificationColumns + ` FROM notification WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	defer rows.Close()

	list := make([]*store.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan notification")
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate notifications")
	}
	return list, nil
}

func (d *DB) UpdateNotifications(ctx context.Context, update *store.UpdateNotification) (int64, error) {
	args := []any{update.Read, update.UserID, update.Read}
	stmt := `UPDATE notification SET is_read = ` + d.placeholder(1) +
		` WHERE user_id = ` + d.placeholder(2) + ` AND is_read <> ` + d.placeholder(3)
	if v := update.ID; v != nil {
		stmt, args = stmt+" AND id = "+d.next(args), append(args, *v)
	}
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to update notifications")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count updated notifications")
	}
	return affected, nil
}

func (d *DB) DeleteNotification(ctx context.Context, delete *store.DeleteNotification) error {
	stmt := `DELETE FROM notification WHERE id = ` + d.placeholder(1) + ` AND user_id = ` + d.placeholder(2)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete notification")
	}
	return nil
}
