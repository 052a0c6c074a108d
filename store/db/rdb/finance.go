package rdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eidos/store"
)

func (d *DB) CreateTransaction(ctx context.Context, create *store.Transaction) (*store.Transaction, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	fields := []string{"user_id", "type", "amount", "category", "description", "ts", "created_ts"}
	args := []any{create.UserID, string(create.Type), create.Amount, create.Category, create.Description, create.Ts, create.CreatedTs}
	stmt := `INSERT INTO finance_transaction (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create transaction")
	}
	return create, nil
}

func (d *DB) ListTransactions(ctx context.Context, find *store.FindTransaction) ([]*store.Transaction, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = "+d.next(args)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+d.next(args)), append(args, *v)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "type = "+d.next(args)), append(args, string(*v))
	}
	if v := find.TsAfter; v != nil {
		where, args = append(where, "ts >= "+d.next(args)), append(args, *v)
	}
	if v := find.TsBefore; v != nil {
		where, args = append(where, "ts <= "+d.next(args)), append(args, *v)
	}

	query := `SELECT id, user_id, type, amount, category, description, ts, created_ts FROM finance_transaction WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY ts DESC, id DESC`
	if v := find.Limit; v != nil {
		query, args = query+" LIMIT "+d.next(args), append(args, *v)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}
	defer rows.Close()

	list := make([]*store.Transaction, 0)
	for rows.Next() {
		t := &store.Transaction{}
		var txType string
		if err := rows.Scan(&t.ID, &t.UserID, &txType, &t.Amount, &t.Category, &t.Description, &t.Ts, &t.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan transaction")
		}
		t.Type = store.TransactionType(txType)
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate transactions")
	}
	return list, nil
}

func (d *DB) DeleteTransaction(ctx context.Context, delete *store.DeleteTransaction) error {
	stmt := `DELETE FROM finance_transaction WHERE id = ` + d.placeholder(1) + ` AND user_id = ` + d.placeholder(2)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID, delete.UserID); err != nil {
		return errors.Wrap(err, "failed to delete transaction")
	}
	return nil
}
