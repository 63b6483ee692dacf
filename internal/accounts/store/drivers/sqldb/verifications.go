package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

const verificationColumns = `id, user_id, token, type, destination, expires_at, used_at, created_at`

type verificationsRepo struct {
	q *queries
}

func scanVerification(row interface{ Scan(...any) error }) (domain.VerificationCode, error) {
	var (
		v      domain.VerificationCode
		typ    string
		usedAt sql.NullTime
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.Token, &typ, &v.Destination, &v.ExpiresAt, &usedAt, &v.CreatedAt); err != nil {
		return domain.VerificationCode{}, mapNotFound(err)
	}
	v.Type = domain.VerificationType(typ)
	v.ExpiresAt = v.ExpiresAt.UTC()
	v.CreatedAt = v.CreatedAt.UTC()
	v.UsedAt = mapNullTimePtr(usedAt)
	return v, nil
}

func (r *verificationsRepo) list(ctx context.Context, query string, args ...any) ([]domain.VerificationCode, error) {
	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VerificationCode
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *verificationsRepo) LockPurpose(ctx context.Context, userID string, typ domain.VerificationType) error {
	if r.q.dialect.LockPurposeSQL == "" {
		return nil
	}
	_, err := r.q.exec(ctx, r.q.dialect.LockPurposeSQL, userID+":"+string(typ))
	return err
}

func (r *verificationsRepo) InvalidateActive(
	ctx context.Context,
	userID string,
	typ domain.VerificationType,
	at time.Time,
) (int64, error) {
	res, err := r.q.exec(ctx, `
		UPDATE verifications SET used_at = ?, updated_at = ?
		WHERE user_id = ? AND type = ? AND used_at IS NULL`,
		utc(at), utc(at), userID, string(typ))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *verificationsRepo) CreateVerification(ctx context.Context, v domain.VerificationCode) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO verifications (id, user_id, token, type, destination, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Token, string(v.Type), v.Destination, utc(v.ExpiresAt), utc(v.CreatedAt), utc(v.CreatedAt))
	return err
}

func (r *verificationsRepo) ListUnconsumedByToken(
	ctx context.Context,
	token string,
	typ domain.VerificationType,
) ([]domain.VerificationCode, error) {
	return r.list(ctx, `
		SELECT `+verificationColumns+` FROM verifications
		WHERE token = ? AND type = ? AND used_at IS NULL
		ORDER BY id DESC`,
		token, string(typ))
}

func (r *verificationsRepo) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.exec(ctx, `
		UPDATE verifications SET used_at = ?, updated_at = ?
		WHERE id = ? AND used_at IS NULL`,
		utc(at), utc(at), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *verificationsRepo) ListUnconsumedForUser(
	ctx context.Context,
	userID string,
	typ domain.VerificationType,
) ([]domain.VerificationCode, error) {
	return r.list(ctx, `
		SELECT `+verificationColumns+` FROM verifications
		WHERE user_id = ? AND type = ? AND used_at IS NULL
		ORDER BY id DESC`,
		userID, string(typ))
}
