package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type Store interface {
	// CreateTag fails with errTagExists when the name is taken.
	CreateTag(ctx context.Context, name string) (Tag, error)
	GetTagByName(ctx context.Context, name string) (Tag, error)
	RenameTag(ctx context.Context, id int64, name string) error
	DeleteTag(ctx context.Context, id int64) error
	AssignTag(ctx context.Context, category Category, id int64) error
	UnassignTag(ctx context.Context, category Category, id int64) error
	TagsForCategory(ctx context.Context, category Category) ([]Tag, error)
	CategoriesForTag(ctx context.Context, id int64) ([]Category, error)
}

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) CreateTag(ctx context.Context, name string) (Tag, error) {
	tag := Tag{Name: name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id`, name,
	).Scan(&tag.ID)
	if isUniqueViolation(err) {
		return Tag{}, errTagExists.WithCause(err)
	}
	if err != nil {
		return Tag{}, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (s *PostgresStore) GetTagByName(ctx context.Context, name string) (Tag, error) {
	var tag Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE lower(name) = lower($1)`, name,
	).Scan(&tag.ID, &tag.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Tag{}, ErrTagNotFound.WithDetail("name", name)
	}
	if err != nil {
		return Tag{}, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

func (s *PostgresStore) RenameTag(ctx context.Context, id int64, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tags SET name = $2 WHERE id = $1`, id, name)
	if isUniqueViolation(err) {
		return ErrDuplicateTagName.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("failed to rename tag: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrTagNotFound.WithDetail("id", id)
	}
	return nil
}

func (s *PostgresStore) DeleteTag(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) AssignTag(ctx context.Context, category Category, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag_assignments (category, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (category, tag_id) DO NOTHING
	`, string(category), id)
	if err != nil {
		return fmt.Errorf("failed to assign tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) UnassignTag(ctx context.Context, category Category, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM tag_assignments WHERE category = $1 AND tag_id = $2`, string(category), id)
	if err != nil {
		return fmt.Errorf("failed to unassign tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) TagsForCategory(ctx context.Context, category Category) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN tag_assignments a ON a.tag_id = t.id
		WHERE a.category = $1
	`, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

func (s *PostgresStore) CategoriesForTag(ctx context.Context, id int64) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category FROM tag_assignments WHERE tag_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, Category(category))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}
