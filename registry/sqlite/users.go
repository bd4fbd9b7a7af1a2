package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"net/mail"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/google/uuid"
)

type UsersDB struct {
	db *sql.DB
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role INTEGER NOT NULL,
		email TEXT NOT NULL,
		created INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *UsersDB) Create(ctx context.Context, user registry.User) (registry.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return registry.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO users (id, username, password, role, email, created, last_logout_time) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return registry.User{}, wrapDBError(err)
	}
	newEmail := convertToDB_Email(user.Email)
	now := time.Now()
	_, err = stmt.ExecContext(ctx, newUUID.String(), user.Username, user.Password, user.Role.String(), newEmail, now.Unix(), now.Unix())
	if err != nil {
		return registry.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *UsersDB) GetAll(ctx context.Context) ([]registry.User, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, username, password, role, email, created, last_logout_time FROM users;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []registry.User
	for rows.Next() {
		var user registry.User
		var email, role, id string
		var created, logoutTime int64

		if err := rows.Scan(&id, &user.Username, &user.Password, &role, &email, &created, &logoutTime); err != nil {
			return nil, wrapDBError(err)
		}

		if err := convertFromDB_UUID(id, &user.ID); err != nil {
			return all, err
		}
		if err := convertFromDB_Email(email, &user.Email); err != nil {
			return all, err
		}
		if err := convertFromDB_Role(role, &user.Role); err != nil {
			return all, err
		}
		user.Created = time.Unix(created, 0)
		user.LastLogoutTime = time.Unix(logoutTime, 0)

		all = append(all, user)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *UsersDB) Update(ctx context.Context, id uuid.UUID, user registry.User) (registry.User, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET id=?, username=?, password=?, role=?, email=?, last_logout_time=? WHERE id=?;`,
		user.ID.String(), user.Username, user.Password, user.Role.String(), convertToDB_Email(user.Email), user.LastLogoutTime.Unix(), id.String(),
	)
	if err != nil {
		return registry.User{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return registry.User{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return registry.User{}, registry.ErrNotFound
	}
	return repo.GetByID(ctx, user.ID)
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (registry.User, error) {
	user := registry.User{Username: username}
	var id, role, email string
	var created, logout int64

	row := repo.db.QueryRowContext(ctx, `SELECT id, password, role, email, created, last_logout_time FROM users WHERE username = ?;`, username)
	if err := row.Scan(&id, &user.Password, &role, &email, &created, &logout); err != nil {
		return user, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &user.ID); err != nil {
		return user, err
	}
	if err := convertFromDB_Email(email, &user.Email); err != nil {
		return user, err
	}
	if err := convertFromDB_Role(role, &user.Role); err != nil {
		return user, err
	}
	user.Created = time.Unix(created, 0)
	user.LastLogoutTime = time.Unix(logout, 0)

	return user, nil
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (registry.User, error) {
	user := registry.User{ID: id}
	var role, email string
	var created, logout int64

	row := repo.db.QueryRowContext(ctx, `SELECT username, password, role, email, created, last_logout_time FROM users WHERE id = ?;`, id.String())
	if err := row.Scan(&user.Username, &user.Password, &role, &email, &created, &logout); err != nil {
		return user, wrapDBError(err)
	}

	if err := convertFromDB_Email(email, &user.Email); err != nil {
		return user, err
	}
	if err := convertFromDB_Role(role, &user.Role); err != nil {
		return user, err
	}
	user.Created = time.Unix(created, 0)
	user.LastLogoutTime = time.Unix(logout, 0)

	return user, nil
}

func (repo *UsersDB) Delete(ctx context.Context, id uuid.UUID) (registry.User, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, registry.ErrNotFound
	}
	return curVal, nil
}

func (repo *UsersDB) Close() error { return nil }

func convertToDB_Email(email *mail.Address) string {
	if email == nil {
		return ""
	}
	return email.Address
}

func convertFromDB_Email(s string, target **mail.Address) error {
	if s == "" {
		*target = nil
		return nil
	}
	email, err := mail.ParseAddress(s)
	if err != nil {
		return fmt.Errorf("%w: stored email %q is invalid: %v", registry.ErrDecodingFailure, s, err)
	}
	*target = email
	return nil
}

func convertFromDB_Role(s string, target *registry.Role) error {
	r, err := registry.ParseRole(s)
	if err != nil {
		return fmt.Errorf("%w: stored role %q is invalid: %v", registry.ErrDecodingFailure, s, err)
	}
	*target = r
	return nil
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("stored UUID %q is invalid: %w", s, err)
	}
	*target = u
	return nil
}

func convertToDB_ByteSlice(b []byte) string {
	if len(b) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

func convertFromDB_ByteSlice(s string, target *[]byte) error {
	if s == "" {
		*target = nil
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", registry.ErrDecodingFailure, err)
	}
	*target = decoded
	return nil
}
