package recordings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voicebank/backend/internal/models"
)

// Persistence errors surfaced to callers.
var (
	// ErrNotFound reports a missing recording. A negative result, not a failure.
	ErrNotFound = errors.New("recording not found")
	// ErrDuplicateID reports a primary key collision on insert.
	ErrDuplicateID = errors.New("recording id already exists")
	// ErrInvalidReference reports a category/age/gender/parent id that does
	// not resolve to an existing row.
	ErrInvalidReference = errors.New("referenced row does not exist")
)

// Postgres error codes (SQLSTATE).
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

const recordingColumns = `id, name, category_id, privacy, age_id, gender_id, location, occupation, parent_id, status, created_at, updated_at`

// Repository handles recording persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a recordings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists a new recording under the given id in the pending state.
// The row becomes visible to reads only after MarkCommitted.
func (r *Repository) Insert(ctx context.Context, id uuid.UUID, rec *models.NewRecording) (*models.Recording, error) {
	const q = `INSERT INTO recording (id, name, category_id, privacy, age_id, gender_id, location, occupation, parent_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + recordingColumns
	row := r.pool.QueryRow(ctx, q,
		id, rec.Name, rec.CategoryID, int16(rec.Privacy), rec.AgeID, rec.GenderID,
		rec.Location, rec.Occupation, rec.ParentID, models.RecordingStatusPending)
	out, err := scanRecording(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

// MarkCommitted flips a pending row to committed after its blob upload
// succeeded. Fails with ErrNotFound if the row is gone (e.g. reaped).
func (r *Repository) MarkCommitted(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE recording SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	tag, err := r.pool.Exec(ctx, q, models.RecordingStatusCommitted, id, models.RecordingStatusPending)
	if err != nil {
		return fmt.Errorf("mark committed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a committed recording by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	const q = `SELECT ` + recordingColumns + ` FROM recording WHERE id = $1 AND status = $2`
	rec, err := scanRecording(r.pool.QueryRow(ctx, q, id, models.RecordingStatusCommitted))
	if err != nil {
		return nil, mapPgError(err)
	}
	return rec, nil
}

// ListByParent returns the committed recordings derived from the given
// parent, oldest first. An empty slice means no children.
func (r *Repository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.Recording, error) {
	const q = `SELECT ` + recordingColumns + ` FROM recording
		WHERE parent_id = $1 AND status = $2 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, parentID, models.RecordingStatusCommitted)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var list []models.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

// Random returns up to count committed recordings in random order, for
// sampling surfaces like a landing page.
func (r *Repository) Random(ctx context.Context, count int) ([]models.Recording, error) {
	const q = `SELECT ` + recordingColumns + ` FROM recording
		WHERE status = $1 ORDER BY RANDOM() LIMIT $2`
	rows, err := r.pool.Query(ctx, q, models.RecordingStatusCommitted, count)
	if err != nil {
		return nil, fmt.Errorf("random recordings: %w", err)
	}
	defer rows.Close()

	var list []models.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("scan random: %w", err)
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

// Count returns the number of committed recordings.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM recording WHERE status = $1`
	var count int64
	if err := r.pool.QueryRow(ctx, q, models.RecordingStatusCommitted).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recordings: %w", err)
	}
	return count, nil
}

// StalePending returns ids of rows stuck in pending for longer than grace.
// These are orphan candidates: their blob upload never completed.
func (r *Repository) StalePending(ctx context.Context, grace time.Duration) ([]uuid.UUID, error) {
	const q = `SELECT id FROM recording WHERE status = $1 AND created_at < NOW() - make_interval(secs => $2)`
	rows, err := r.pool.Query(ctx, q, models.RecordingStatusPending, grace.Seconds())
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale pending: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeletePending removes a pending row during reconciliation. Committed rows
// are never deleted through this store.
func (r *Repository) DeletePending(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM recording WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, q, id, models.RecordingStatusPending)
	if err != nil {
		return fmt.Errorf("delete pending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecording(row pgx.Row) (*models.Recording, error) {
	var rec models.Recording
	var privacy int16
	err := row.Scan(&rec.ID, &rec.Name, &rec.CategoryID, &privacy, &rec.AgeID, &rec.GenderID,
		&rec.Location, &rec.Occupation, &rec.ParentID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Privacy = models.Privacy(privacy)
	return &rec, nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.ConstraintName)
		case pgUniqueViolation:
			return ErrDuplicateID
		}
	}
	return err
}
