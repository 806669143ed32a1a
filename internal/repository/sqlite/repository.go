package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mailsage/internal/model"
	"mailsage/internal/repository"
)

const userColumns = `id, google_id, email, name, access_token, refresh_token, token_expiry, created_at, updated_at`

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnix(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(google_id) DO UPDATE SET
  email = excluded.email,
  name = excluded.name,
  access_token = excluded.access_token,
  refresh_token = excluded.refresh_token,
  token_expiry = excluded.token_expiry,
  updated_at = excluded.updated_at`,
		user.ID, user.GoogleID, user.Email, user.Name,
		user.AccessToken, user.RefreshToken, toUnix(user.TokenExpiry),
		toUnix(user.CreatedAt), toUnix(user.UpdatedAt))
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID)
}

func (r *UserRepository) findOne(ctx context.Context, query, arg string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return user, err
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET google_id = ?, email = ?, name = ?, access_token = ?,
  refresh_token = ?, token_expiry = ?, updated_at = ? WHERE id = ?`,
		user.GoogleID, user.Email, user.Name, user.AccessToken,
		user.RefreshToken, toUnix(user.TokenExpiry), time.Now().UnixMilli(), user.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var access, refresh sql.NullString
	var expiry, created, updated int64
	if err := row.Scan(&user.ID, &user.GoogleID, &user.Email, &user.Name,
		&access, &refresh, &expiry, &created, &updated); err != nil {
		return nil, err
	}
	user.AccessToken = access.String
	user.RefreshToken = refresh.String
	user.TokenExpiry = fromUnix(expiry)
	user.CreatedAt = fromUnix(created)
	user.UpdatedAt = fromUnix(updated)
	return user, nil
}

type PinRepository struct {
	db *sql.DB
}

func (r *PinRepository) ListPins(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT message_id FROM pins WHERE user_id = ? ORDER BY message_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PinRepository) SetPin(ctx context.Context, userID, messageID string, pinned bool) error {
	if !pinned {
		_, err := r.db.ExecContext(ctx,
			`DELETE FROM pins WHERE user_id = ? AND message_id = ?`, userID, messageID)
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO pins (user_id, message_id, pinned_at) VALUES (?, ?, ?)`,
		userID, messageID, time.Now().UnixMilli())
	return err
}

type SummaryRepository struct {
	db *sql.DB
}

func (r *SummaryRepository) SaveSummary(ctx context.Context, record *model.SummaryRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO summaries (user_id, message_id, summary, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, message_id) DO UPDATE SET
  summary = excluded.summary,
  updated_at = excluded.updated_at`,
		record.UserID, record.MessageID, record.Summary, toUnix(record.UpdatedAt))
	return err
}

func (r *SummaryRepository) FindSummary(ctx context.Context, userID, messageID string) (*model.SummaryRecord, error) {
	record := &model.SummaryRecord{}
	var updated int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, message_id, summary, updated_at FROM summaries WHERE user_id = ? AND message_id = ?`,
		userID, messageID).Scan(&record.UserID, &record.MessageID, &record.Summary, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	record.UpdatedAt = fromUnix(updated)
	return record, nil
}

func (r *SummaryRepository) DeleteSummary(ctx context.Context, userID, messageID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM summaries WHERE user_id = ? AND message_id = ?`, userID, messageID)
	return err
}
