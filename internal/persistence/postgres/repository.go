// Package postgres stores users and activity logs in PostgreSQL, keeping each log as a JSONB array.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/exercisetracker/internal/domain"
)

//go:embed schema.sql
var schema string

type activityDocument struct {
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Date        string `json:"date"`
}

// Repository provides Postgres-backed persistence for users and activity logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveUser upserts the user row keyed by id.
func (r *Repository) SaveUser(ctx context.Context, user domain.User) error {
	const stmt = `INSERT INTO users (id, username) VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username`

	if _, err := r.pool.Exec(ctx, stmt, user.ID, user.Username); err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}
	return nil
}

// FindUser implements domain.UserRepository.
func (r *Repository) FindUser(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, username FROM users WHERE id=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &user, nil
}

// FindLog implements domain.ActivityLogRepository.
func (r *Repository) FindLog(ctx context.Context, userID string) (*domain.ActivityLog, error) {
	return r.SliceLog(ctx, userID, 0)
}

// AppendActivity appends the activity unless the array already contains an equal entry.
func (r *Repository) AppendActivity(ctx context.Context, userID string, activity domain.Activity) error {
	const stmt = `UPDATE activity_logs
        SET activities = activities || $2::jsonb, updated_at = NOW()
        WHERE id = $1 AND NOT activities @> $2::jsonb`

	element, err := encodeElement(activity)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, stmt, userID, element); err != nil {
		return fmt.Errorf("append activity for %s: %w", userID, err)
	}
	return nil
}

// CreateLog inserts the log keyed by userID, merging into a concurrently created row.
func (r *Repository) CreateLog(ctx context.Context, userID string, activity domain.Activity) error {
	const stmt = `INSERT INTO activity_logs (id, user_id, activities) VALUES ($1, $1, $2::jsonb)
        ON CONFLICT (id) DO UPDATE SET
            activities = CASE
                WHEN activity_logs.activities @> EXCLUDED.activities THEN activity_logs.activities
                ELSE activity_logs.activities || EXCLUDED.activities
            END,
            updated_at = NOW()`

	element, err := encodeElement(activity)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, stmt, userID, element); err != nil {
		return fmt.Errorf("create activity log for %s: %w", userID, err)
	}
	return nil
}

// FilterLog keeps activities dated within [from, to] using byte-wise collation, then at most limit.
func (r *Repository) FilterLog(ctx context.Context, userID, from, to string, limit int) ([]domain.ActivityLog, error) {
	const query = `SELECT l.id, l.user_id, COALESCE((
            SELECT jsonb_agg(s.elem ORDER BY s.pos)
            FROM (
                SELECT t.elem, t.pos
                FROM jsonb_array_elements(l.activities) WITH ORDINALITY AS t(elem, pos)
                WHERE (t.elem->>'date') COLLATE "C" >= $2::text COLLATE "C"
                  AND (t.elem->>'date') COLLATE "C" <= $3::text COLLATE "C"
                ORDER BY t.pos
                LIMIT $4
            ) s
        ), '[]'::jsonb)
        FROM activity_logs l WHERE l.id = $1`

	rows, err := r.pool.Query(ctx, query, userID, from, to, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("filter activity log for %s: %w", userID, err)
	}
	defer rows.Close()

	out := make([]domain.ActivityLog, 0, 1)
	for rows.Next() {
		record, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("filter activity log for %s: %w", userID, err)
	}
	return out, nil
}

// SliceLog returns the log with its first limit activities.
func (r *Repository) SliceLog(ctx context.Context, userID string, limit int) (*domain.ActivityLog, error) {
	const query = `SELECT l.id, l.user_id, COALESCE((
            SELECT jsonb_agg(s.elem ORDER BY s.pos)
            FROM (
                SELECT t.elem, t.pos
                FROM jsonb_array_elements(l.activities) WITH ORDINALITY AS t(elem, pos)
                ORDER BY t.pos
                LIMIT $2
            ) s
        ), '[]'::jsonb)
        FROM activity_logs l WHERE l.id = $1`

	record, err := scanLog(r.pool.QueryRow(ctx, query, userID, limitArg(limit)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func scanLog(row pgx.Row) (*domain.ActivityLog, error) {
	var (
		record domain.ActivityLog
		raw    []byte
	)
	if err := row.Scan(&record.ID, &record.UserID, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan activity log: %w", err)
	}

	var docs []activityDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode activities for %s: %w", record.ID, err)
	}
	record.Activities = make([]domain.Activity, 0, len(docs))
	for _, doc := range docs {
		record.Activities = append(record.Activities, domain.Activity{
			Description: doc.Description,
			Duration:    doc.Duration,
			Date:        doc.Date,
		})
	}
	return &record, nil
}

// encodeElement renders the activity as a one-element JSON array for || and @>.
func encodeElement(activity domain.Activity) (string, error) {
	body, err := json.Marshal([]activityDocument{{
		Description: activity.Description,
		Duration:    activity.Duration,
		Date:        activity.Date,
	}})
	if err != nil {
		return "", fmt.Errorf("encode activity: %w", err)
	}
	return string(body), nil
}

// limitArg maps "no limit" to NULL, which Postgres treats as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
