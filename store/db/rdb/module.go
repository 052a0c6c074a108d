package rdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/eidos/store"
)

const moduleColumns = `module.id, module.name, module.description, module.author_id, module.version, module.manifest, module.api_key, module.status, module.installs, module.created_ts, module.updated_ts`

func scanModule(row rowScanner, extra ...any) (*store.Module, error) {
	m := &store.Module{}
	var status string
	dest := append([]any{&m.ID, &m.Name, &m.Description, &m.AuthorID, &m.Version, &m.Manifest, &m.APIKey, &status, &m.Installs, &m.CreatedTs, &m.UpdatedTs}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.Status = store.ModuleStatus(status)
	return m, nil
}

func (d *DB) CreateModule(ctx context.Context, create *store.Module) (*store.Module, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = create.CreatedTs
	}
	fields := []string{"name", "description", "author_id", "version", "manifest", "api_key", "status", "installs", "created_ts", "updated_ts"}
	args := []any{create.Name, create.Description, create.AuthorID, create.Version, create.Manifest, create.APIKey, string(create.Status), create.Installs, create.CreatedTs, create.UpdatedTs}
	stmt := `INSERT INTO module (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create module")
	}
	return create, nil
}

func (d *DB) ListModules(ctx context.Context, find *store.FindModule) ([]*store.Module, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "module.id = "+d.next(args)), append(args, *v)
	}
	if v := find.AuthorID; v != nil {
		where, args = append(where, "module.author_id = "+d.next(args)), append(args, *v)
	}
	if v := find.APIKey; v != nil {
		where, args = append(where, "module.api_key = "+d.next(args)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "module.status = "+d.next(args)), append(args, string(*v))
	}
	if v := find.VisibleTo; v != nil {
		where, args = append(where, "(module.status = 'public' OR module.author_id = "+d.next(args)+")"), append(args, *v)
	}

	query := `SELECT ` + moduleColumns + ` FROM module WHERE ` + strings.Join(where, " AND ") + ` ORDER BY module.id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list modules")
	}
	defer rows.Close()

	list := make([]*store.Module, 0)
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan module")
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate modules")
	}
	return list, nil
}

func (d *DB) UpdateModule(ctx context.Context, update *store.UpdateModule) (*store.Module, error) {
	updatedTs := update.UpdatedTs
	if updatedTs == 0 {
		updatedTs = now()
	}
	set, args := []string{"updated_ts = " + d.placeholder(1)}, []any{updatedTs}
	if v := update.Name; v != nil {
		set, args = append(set, "name = "+d.next(args)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+d.next(args)), append(args, *v)
	}
	if v := update.Version; v != nil {
		set, args = append(set, "version = "+d.next(args)), append(args, *v)
	}
	if v := update.Manifest; v != nil {
		set, args = append(set, "manifest = "+d.next(args)), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = "+d.next(args)), append(args, string(*v))
	}
	if v := update.InstallsDelta; v != nil {
		set, args = append(set, "installs = installs + "+d.next(args)), append(args, *v)
	}

	args = append(args, update.ID)
	stmt := `UPDATE module SET ` + strings.Join(set, ", ") + ` WHERE id = ` + d.placeholder(len(args)) + ` RETURNING ` +
		strings.ReplaceAll(moduleColumns, "module.", "")
	m, err := scanModule(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to update module")
	}
	return m, nil
}

func (d *DB) DeleteModule(ctx context.Context, delete *store.DeleteModule) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_module WHERE module_id = `+d.placeholder(1), delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete module installations")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM module WHERE id = `+d.placeholder(1), delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete module")
	}
	return tx.Commit()
}

func (d *DB) CreateUserModule(ctx context.Context, create *store.UserModule) (*store.UserModule, error) {
	if create.InstalledTs == 0 {
		create.InstalledTs = now()
	}
	if create.Config == "" {
		create.Config = "{}"
	}
	fields := []string{"user_id", "module_id", "enabled", "config", "installed_ts"}
	args := []any{create.UserID, create.ModuleID, create.Enabled, create.Config, create.InstalledTs}
	stmt := `INSERT INTO user_module (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create user module")
	}
	return create, nil
}

func (d *DB) ListUserModules(ctx context.Context, find *store.FindUserModule) ([]*store.UserModule, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+d.next(args)), append(args, *v)
	}
	if v := find.ModuleID; v != nil {
		where, args = append(where, "module_id = "+d.next(args)), append(args, *v)
	}
	if v := find.Enabled; v != nil {
		where, args = append(where, "enabled = "+d.next(args)), append(args, *v)
	}

	query := `SELECT id, user_id, module_id, enabled, config, installed_ts FROM user_module WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY installed_ts ASC, id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user modules")
	}
	defer rows.Close()

	list := make([]*store.UserModule, 0)
	for rows.Next() {
		um := &store.UserModule{}
		if err := rows.Scan(&um.ID, &um.UserID, &um.ModuleID, &um.Enabled, &um.Config, &um.InstalledTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan user module")
		}
		list = append(list, um)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate user modules")
	}
	return list, nil
}

func (d *DB) UpdateUserModule(ctx context.Context, update *store.UpdateUserModule) (*store.UserModule, error) {
	set, args := []string{}, []any{}
	if v := update.Enabled; v != nil {
		set, args = append(set, "enabled = "+d.next(args)), append(args, *v)
	}
	if v := update.Config; v != nil {
		set, args = append(set, "config = "+d.next(args)), append(args, *v)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.UserID, update.ModuleID)
	stmt := `UPDATE user_module SET ` + strings.Join(set, ", ") +
		` WHERE user_id = ` + d.placeholder(len(args)-1) + ` AND module_id = ` + d.placeholder(len(args)) +
		` RETURNING id, user_id, module_id, enabled, config, installed_ts`
	um := &store.UserModule{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&um.ID, &um.UserID, &um.ModuleID, &um.Enabled, &um.Config, &um.InstalledTs); err != nil {
		return nil, errors.Wrap(err, "failed to update user module")
	}
	return um, nil
}

func (d *DB) DeleteUserModule(ctx context.Context, delete *store.DeleteUserModule) error {
	stmt := `DELETE FROM user_module WHERE user_id = ` + d.placeholder(1) + ` AND module_id = ` + d.placeholder(2)
	if _, err := d.db.ExecContext(ctx, stmt, delete.UserID, delete.ModuleID); err != nil {
		return errors.Wrap(err, "failed to delete user module")
	}
	return nil
}

func (d *DB) ListInstalledModules(ctx context.Context, userID int32, enabledOnly bool) ([]*store.InstalledModule, error) {
	where, args := []string{"user_module.user_id = " + d.placeholder(1)}, []any{userID}
	if enabledOnly {
		where, args = append(where, "user_module.enabled = "+d.next(args)), append(args, true)
	}

	query := `SELECT ` + moduleColumns + `, user_module.enabled, user_module.config, user_module.installed_ts
		FROM user_module JOIN module ON module.id = user_module.module_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY user_module.installed_ts ASC, user_module.id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list installed modules")
	}
	defer rows.Close()

	list := make([]*store.InstalledModule, 0)
	for rows.Next() {
		installed := &store.InstalledModule{}
		m, err := scanModule(rows, &installed.Enabled, &installed.Config, &installed.InstalledTs)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan installed module")
		}
		installed.Module = m
		list = append(list, installed)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate installed modules")
	}
	return list, nil
}
