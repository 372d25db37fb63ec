package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgNoteRepo is the pgx-backed NoteRepo.
type PgNoteRepo struct {
	db *pgxpool.Pool
}

// NewPgNoteRepo constructs a PgNoteRepo.
func NewPgNoteRepo(db *pgxpool.Pool) *PgNoteRepo {
	return &PgNoteRepo{db: db}
}

const noteColumns = `id, user_id, created_at_utc, updated_at_utc, is_deleted, version, date, title, summary, tags`

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.CreatedAtUtc, &n.UpdatedAtUtc, &n.IsDeleted, &n.Version, &n.Date, &n.Title, &n.Summary, &n.Tags); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *PgNoteRepo) GetByID(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*domain.Note, error) {
	row := tx.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	return scanNote(row)
}

func (r *PgNoteRepo) Insert(ctx context.Context, tx pgx.Tx, n *domain.Note) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO notes (id, user_id, created_at_utc, updated_at_utc, is_deleted, version, date, title, summary, tags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, n.ID, n.UserID, n.CreatedAtUtc, n.UpdatedAtUtc, n.IsDeleted, n.Version, n.Date, n.Title, n.Summary, n.Tags)
	return err
}

func (r *PgNoteRepo) Update(ctx context.Context, tx pgx.Tx, n *domain.Note) error {
	_, err := tx.Exec(ctx, `
		UPDATE notes SET updated_at_utc = $2, is_deleted = $3, version = $4, date = $5, title = $6, summary = $7, tags = $8
		WHERE id = $1
	`, n.ID, n.UpdatedAtUtc, n.IsDeleted, n.Version, n.Date, n.Title, n.Summary, n.Tags)
	return err
}

func (r *PgNoteRepo) ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Note, error) {
	var rows pgx.Rows
	var err error
	if sinceUtc == nil {
		rows, err = r.db.Query(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id = $1 AND is_deleted = false ORDER BY updated_at_utc ASC`, userID)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id = $1 AND updated_at_utc > $2 ORDER BY updated_at_utc ASC`, userID, *sinceUtc)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
