package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

const userColumns = `id, email, pending_email, username, password_hash, email_verified,
	global_role, country, timezone, locale, created_at, updated_at, deleted_at`

type usersRepo struct {
	q *queries
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u            domain.User
		pendingEmail sql.NullString
		passwordHash sql.NullString
		role         string
		country      sql.NullString
		deletedAt    sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &pendingEmail, &u.Username, &passwordHash, &u.EmailVerified,
		&role, &country, &u.Timezone, &u.Locale, &u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.PendingEmail = mapNullStringPtr(pendingEmail)
	u.PasswordHash = mapNullString(passwordHash)
	u.GlobalRole = domain.Role(role)
	u.Country = mapNullString(country)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	u.DeletedAt = mapNullTimePtr(deletedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetActiveUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`,
		domain.NormalizeEmail(email)))
}

func (r *usersRepo) GetActiveUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER(?) AND deleted_at IS NULL`,
		username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO users (id, email, pending_email, username, password_hash, email_verified,
			global_role, country, timezone, locale, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		domain.NormalizeEmail(u.Email),
		mapOptionalString(u.PendingEmail),
		u.Username,
		mapStringNull(u.PasswordHash),
		u.EmailVerified,
		string(u.GlobalRole),
		mapStringNull(u.Country),
		u.Timezone,
		u.Locale,
		utc(u.CreatedAt),
		utc(u.UpdatedAt),
	)
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, at time.Time) error {
	res, err := r.q.exec(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(hash), utc(at), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	res, err := r.q.exec(ctx,
		`UPDATE users SET email_verified = ?, updated_at = ? WHERE id = ?`,
		true, utc(at), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) SetPendingEmail(ctx context.Context, userID string, email *string, at time.Time) error {
	if email != nil {
		normalized := domain.NormalizeEmail(*email)
		email = &normalized
	}
	res, err := r.q.exec(ctx,
		`UPDATE users SET pending_email = ?, updated_at = ? WHERE id = ?`,
		mapOptionalString(email), utc(at), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) ConfirmEmailChange(ctx context.Context, userID, email string, at time.Time) error {
	res, err := r.q.exec(ctx, `
		UPDATE users
		SET email = ?, pending_email = NULL, email_verified = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		domain.NormalizeEmail(email), true, utc(at), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *usersRepo) SoftDeleteUser(ctx context.Context, userID string, at time.Time) error {
	res, err := r.q.exec(ctx, `
		UPDATE users SET deleted_at = ?, pending_email = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		utc(at), utc(at), userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
