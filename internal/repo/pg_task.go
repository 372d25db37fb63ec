package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgTaskRepo is the pgx-backed TaskRepo, reading and writing the `tasks`
// table (spec.md §6 persisted state layout: one table per entity kind).
type PgTaskRepo struct {
	db *pgxpool.Pool
}

// NewPgTaskRepo constructs a PgTaskRepo.
func NewPgTaskRepo(db *pgxpool.Pool) *PgTaskRepo {
	return &PgTaskRepo{db: db}
}

const taskColumns = `
	id, user_id, created_at_utc, updated_at_utc, is_deleted, version,
	date, title, description, start_time, end_time, location, travel_time_seconds,
	reminder_at_utc, reminder_acknowledged_at_utc, is_completed
`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var travelSeconds *int64
	if err := row.Scan(
		&t.ID, &t.UserID, &t.CreatedAtUtc, &t.UpdatedAtUtc, &t.IsDeleted, &t.Version,
		&t.Date, &t.Title, &t.Description, &t.StartTime, &t.EndTime, &t.Location, &travelSeconds,
		&t.ReminderAtUtc, &t.ReminderAcknowledgedAtUtc, &t.IsCompleted,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if travelSeconds != nil {
		d := time.Duration(*travelSeconds) * time.Second
		t.TravelTime = &d
	}
	return &t, nil
}

func (r *PgTaskRepo) GetByID(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*domain.Task, error) {
	row := tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	return scanTask(row)
}

func (r *PgTaskRepo) Insert(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
	var travelSeconds *int64
	if t.TravelTime != nil {
		s := int64(t.TravelTime.Seconds())
		travelSeconds = &s
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO tasks (id, user_id, created_at_utc, updated_at_utc, is_deleted, version,
			date, title, description, start_time, end_time, location, travel_time_seconds,
			reminder_at_utc, reminder_acknowledged_at_utc, is_completed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, t.ID, t.UserID, t.CreatedAtUtc, t.UpdatedAtUtc, t.IsDeleted, t.Version,
		t.Date, t.Title, t.Description, t.StartTime, t.EndTime, t.Location, travelSeconds,
		t.ReminderAtUtc, t.ReminderAcknowledgedAtUtc, t.IsCompleted)
	return err
}

func (r *PgTaskRepo) Update(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
	var travelSeconds *int64
	if t.TravelTime != nil {
		s := int64(t.TravelTime.Seconds())
		travelSeconds = &s
	}
	_, err := tx.Exec(ctx, `
		UPDATE tasks SET
			updated_at_utc = $2, is_deleted = $3, version = $4,
			date = $5, title = $6, description = $7, start_time = $8, end_time = $9,
			location = $10, travel_time_seconds = $11,
			reminder_at_utc = $12, reminder_acknowledged_at_utc = $13, is_completed = $14
		WHERE id = $1
	`, t.ID, t.UpdatedAtUtc, t.IsDeleted, t.Version,
		t.Date, t.Title, t.Description, t.StartTime, t.EndTime, t.Location, travelSeconds,
		t.ReminderAtUtc, t.ReminderAcknowledgedAtUtc, t.IsCompleted)
	return err
}

func (r *PgTaskRepo) ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Task, error) {
	var rows pgx.Rows
	var err error
	if sinceUtc == nil {
		rows, err = r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND is_deleted = false ORDER BY updated_at_utc ASC`, userID)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND updated_at_utc > $2 ORDER BY updated_at_utc ASC`, userID, *sinceUtc)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
