package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Category struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
}

// CategoryInput holds the writable columns of a category.
type CategoryInput struct {
	Name        string
	Description *string
}

var categoryColumns = []string{"id", "name", "description"}

func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	out := []Category{}
	q := s.sb.Select(categoryColumns...).From("categories").OrderBy("id")
	if err := selectRows(ctx, s.db, &out, q); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (s *Store) Category(ctx context.Context, id int64) (*Category, error) {
	return s.category(ctx, s.db, id)
}

func (s *Store) category(ctx context.Context, q sqlx.QueryerContext, id int64) (*Category, error) {
	var c Category
	err := get(ctx, q, &c, s.sb.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	var id int64
	q := s.sb.Insert("categories").
		Columns("name", "description").
		Values(in.Name, in.Description).
		Suffix("RETURNING id")
	if err := get(ctx, s.db, &id, q); err != nil {
		if violation(err) == uniqueViolation {
			return nil, fmt.Errorf("category %q: %w", in.Name, ErrDuplicateCategory)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.Category(ctx, id)
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*Category, error) {
	n, err := exec(ctx, s.db, s.sb.Update("categories").
		Set("name", in.Name).
		Set("description", in.Description).
		Where(sq.Eq{"id": id}))
	if err != nil {
		if violation(err) == uniqueViolation {
			return nil, fmt.Errorf("category %q: %w", in.Name, ErrDuplicateCategory)
		}
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return s.Category(ctx, id)
}

// DeleteCategory removes a category that no item references.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var inUse int
		if err := get(ctx, tx, &inUse, s.sb.Select("COUNT(*)").From("items").Where(sq.Eq{"category_id": id})); err != nil {
			return fmt.Errorf("count items of category %d: %w", id, err)
		}
		if inUse > 0 {
			return fmt.Errorf("category %d has %d items: %w", id, inUse, ErrCategoryInUse)
		}

		n, err := exec(ctx, tx, s.sb.Delete("categories").Where(sq.Eq{"id": id}))
		if err != nil {
			if violation(err) == foreignKeyViolation {
				return fmt.Errorf("category %d: %w", id, ErrCategoryInUse)
			}
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
