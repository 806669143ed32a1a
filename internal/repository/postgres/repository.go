package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mailsage/internal/model"
	"mailsage/internal/repository"

	_ "github.com/lib/pq"
)

const userColumns = `id, google_id, email, name, access_token, refresh_token, token_expiry, created_at, updated_at`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (google_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.GoogleID, user.Email, user.Name,
		user.AccessToken, user.RefreshToken, nullTime(user.TokenExpiry),
		user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	user := &model.User{}
	var access, refresh sql.NullString
	var expiry sql.NullTime
	err := row.Scan(
		&user.ID, &user.GoogleID, &user.Email, &user.Name,
		&access, &refresh, &expiry,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.AccessToken = access.String
	user.RefreshToken = refresh.String
	user.TokenExpiry = expiry.Time
	return user, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET google_id=$1, email=$2, name=$3, access_token=$4,
		refresh_token=$5, token_expiry=$6, updated_at=NOW() WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query,
		user.GoogleID, user.Email, user.Name,
		user.AccessToken, user.RefreshToken, nullTime(user.TokenExpiry),
		user.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Postgres pin repository implementation
type PostgresPinRepository struct {
	db *sql.DB
}

func NewPostgresPinRepository(db *sql.DB) *PostgresPinRepository {
	return &PostgresPinRepository{db: db}
}

func (r *PostgresPinRepository) ListPins(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT message_id FROM pins WHERE user_id = $1 ORDER BY message_id`, userID)
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

func (r *PostgresPinRepository) SetPin(ctx context.Context, userID, messageID string, pinned bool) error {
	if !pinned {
		_, err := r.db.ExecContext(ctx,
			`DELETE FROM pins WHERE user_id = $1 AND message_id = $2`, userID, messageID)
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pins (user_id, message_id, pinned_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, message_id) DO NOTHING`, userID, messageID)
	return err
}

// Postgres summary repository implementation
type PostgresSummaryRepository struct {
	db *sql.DB
}

func NewPostgresSummaryRepository(db *sql.DB) *PostgresSummaryRepository {
	return &PostgresSummaryRepository{db: db}
}

func (r *PostgresSummaryRepository) SaveSummary(ctx context.Context, record *model.SummaryRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO summaries (user_id, message_id, summary, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, message_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			updated_at = EXCLUDED.updated_at`,
		record.UserID, record.MessageID, record.Summary, record.UpdatedAt)
	return err
}

func (r *PostgresSummaryRepository) FindSummary(ctx context.Context, userID, messageID string) (*model.SummaryRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, message_id, summary, updated_at FROM summaries WHERE user_id = $1 AND message_id = $2`,
		userID, messageID)

	record := &model.SummaryRecord{}
	if err := row.Scan(&record.UserID, &record.MessageID, &record.Summary, &record.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *PostgresSummaryRepository) DeleteSummary(ctx context.Context, userID, messageID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM summaries WHERE user_id = $1 AND message_id = $2`, userID, messageID)
	return err
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// InitializeDatabase creates the necessary tables
func InitializeDatabase(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) PRIMARY KEY,
			google_id VARCHAR(255) UNIQUE NOT NULL,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			access_token TEXT,
			refresh_token TEXT,
			token_expiry TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pins (
			user_id VARCHAR(255) NOT NULL,
			message_id VARCHAR(255) NOT NULL,
			pinned_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, message_id)
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			user_id VARCHAR(255) NOT NULL,
			message_id VARCHAR(255) NOT NULL,
			summary TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, message_id)
		)`,
	}

	for _, table := range tables {
		_, err := db.Exec(table)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Open connects to dsn, creates the schema and returns the repositories.
func Open(dsn string) (*repository.Repositories, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &repository.Repositories{
		Users:     NewPostgresUserRepository(db),
		Pins:      NewPostgresPinRepository(db),
		Summaries: NewPostgresSummaryRepository(db),
		Close:     db.Close,
	}, nil
}
