package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

const sessionColumns = `id, user_id, token_hash, expires_at, ip_address, user_agent, device,
	location, revoked_at, created_at`

type sessionsRepo struct {
	q *queries
}

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var (
		s         domain.Session
		userAgent sql.NullString
		device    sql.NullString
		location  sql.NullString
		revokedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.IPAddress,
		&userAgent, &device, &location, &revokedAt, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.UserAgent = mapNullString(userAgent)
	s.Device = mapNullString(device)
	s.Location = decodeLocation(location)
	s.RevokedAt = mapNullTimePtr(revokedAt)
	s.ExpiresAt = s.ExpiresAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	location, err := encodeLocation(s.Location)
	if err != nil {
		return err
	}
	_, err = r.q.exec(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, ip_address, user_agent,
			device, location, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, utc(s.ExpiresAt), s.IPAddress,
		mapStringNull(s.UserAgent), mapStringNull(s.Device), location, utc(s.CreatedAt))
	return err
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	return scanSession(r.q.queryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, hash))
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, hash string, at time.Time) error {
	_, err := r.q.exec(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL`,
		utc(at), hash)
	return err
}

func (r *sessionsRepo) RevokeAllUserSessions(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.q.exec(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		utc(at), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) ListUnrevokedUserSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.q.query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = ? AND revoked_at IS NULL
		ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) HasSessionFromIP(ctx context.Context, userID, ip string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE user_id = ? AND ip_address = ?)`, userID, ip)
}

func (r *sessionsRepo) HasAnySession(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE user_id = ?)`, userID)
}

func (r *sessionsRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.q.queryRow(ctx, query, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}
