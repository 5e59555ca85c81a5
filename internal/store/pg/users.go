package pg

import (
	"context"
	"database/sql"
	"errors"

	"chatdesk.org/internal/directory"
)

// Users implements directory.Store over the users table.
type Users struct {
	db *sql.DB
}

var _ directory.Store = (*Users)(nil)

func (s *Users) List(ctx context.Context) ([]directory.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, email, role, full_name from users order by name asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []directory.User
	for rows.Next() {
		var u directory.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.FullName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Users) GetByID(ctx context.Context, id string) (directory.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, email, role, full_name from users where id=$1`, id)
	return scanUser(row)
}

func (s *Users) GetByEmail(ctx context.Context, email string) (directory.User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, email, role, full_name from users where email=$1`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (directory.User, error) {
	var u directory.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.User{}, directory.ErrNotFound
		}
		return directory.User{}, err
	}
	return u, nil
}

func (s *Users) Create(ctx context.Context, u directory.User) error {
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, name, email, role, full_name) values($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Email, string(u.Role), u.FullName)
	if isUniqueViolation(err) {
		return directory.ErrEmailInUse
	}
	return err
}

func (s *Users) Update(ctx context.Context, id string, upd directory.Update) (directory.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return directory.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var u directory.User
	row := tx.QueryRowContext(ctx,
		`select id, name, email, role, full_name from users where id=$1 for update`, id)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.User{}, directory.ErrNotFound
		}
		return directory.User{}, err
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}

	_, err = tx.ExecContext(ctx,
		`update users set name=$2, email=$3, role=$4, full_name=$5 where id=$1`,
		u.ID, u.Name, u.Email, string(u.Role), u.FullName)
	if isUniqueViolation(err) {
		return directory.User{}, directory.ErrEmailInUse
	}
	if err != nil {
		return directory.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return directory.User{}, err
	}
	return u, nil
}

func (s *Users) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return directory.ErrNotFound
	}
	return nil
}
