package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pkgerrors "pipelinq/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, note *Note) error
	Get(ctx context.Context, id string) (*Note, error)
	List(ctx context.Context, objectType, objectID string, limit int) ([]Note, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context, objectType, objectID string) (int64, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, note *Note) error {
	query := `
		INSERT INTO notes (id, object_type, object_id, message, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		note.ID, note.ObjectType, note.ObjectID, note.Message, note.ActorID, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Note, error) {
	query := `
		SELECT id, object_type, object_id, message, actor_id, created_at
		FROM notes
		WHERE id = $1
	`

	var n Note
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.ObjectType, &n.ObjectID, &n.Message, &n.ActorID, &n.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithMessage("note not found").WithDetail("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &n, nil
}

func (r *PostgresRepository) List(ctx context.Context, objectType, objectID string, limit int) ([]Note, error) {
	query := `
		SELECT id, object_type, object_id, message, actor_id, created_at
		FROM notes
		WHERE object_type = $1 AND object_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, objectType, objectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.ObjectType, &n.ObjectID, &n.Message, &n.ActorID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return pkgerrors.ErrNotFound.WithMessage("note not found").WithDetail("id", id)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, objectType, objectID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE object_type = $1 AND object_id = $2`, objectType, objectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted notes: %w", err)
	}
	return n, nil
}
