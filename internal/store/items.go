package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Item is an inventory record. Genre is the name of its category.
type Item struct {
	ID         int64   `db:"id" json:"id"`
	Artist     string  `db:"artist" json:"artist"`
	Title      string  `db:"title" json:"title"`
	Label      *string `db:"label" json:"label"`
	Year       int     `db:"year" json:"year"`
	Quantity   int     `db:"quantity" json:"quantity"`
	Price      float64 `db:"price" json:"price"`
	CategoryID int64   `db:"category_id" json:"category_id"`
	ImgURL     *string `db:"img_url" json:"img_url"`
	Genre      string  `db:"genre" json:"genre"`
}

// ItemInput holds the writable columns of an item.
type ItemInput struct {
	Artist     string
	Title      string
	Label      *string
	Year       int
	Quantity   int
	Price      float64
	CategoryID int64
	ImgURL     *string
}

func (s *Store) itemQuery() sq.SelectBuilder {
	return s.sb.Select(
		"i.id", "i.artist", "i.title", "i.label", "i.year", "i.quantity",
		"i.price", "i.category_id", "i.img_url", "c.name AS genre",
	).
		From("items i").
		Join("categories c ON c.id = i.category_id").
		OrderBy("i.id")
}

func (s *Store) Items(ctx context.Context) ([]Item, error) {
	out := []Item{}
	if err := selectRows(ctx, s.db, &out, s.itemQuery()); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

func (s *Store) Item(ctx context.Context, id int64) (*Item, error) {
	return s.item(ctx, s.db, id)
}

func (s *Store) item(ctx context.Context, q sqlx.QueryerContext, id int64) (*Item, error) {
	var it Item
	err := get(ctx, q, &it, s.itemQuery().Where(sq.Eq{"i.id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return &it, nil
}

// ItemsByCategory returns the items of a category, possibly none.
func (s *Store) ItemsByCategory(ctx context.Context, categoryID int64) ([]Item, error) {
	out := []Item{}
	if err := selectRows(ctx, s.db, &out, s.itemQuery().Where(sq.Eq{"i.category_id": categoryID})); err != nil {
		return nil, fmt.Errorf("list items of category %d: %w", categoryID, err)
	}
	return out, nil
}

func (s *Store) CreateItem(ctx context.Context, in ItemInput) (*Item, error) {
	var created *Item
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		var id int64
		q := s.sb.Insert("items").
			Columns("artist", "title", "label", "year", "quantity", "price", "category_id", "img_url").
			Values(in.Artist, in.Title, in.Label, in.Year, in.Quantity, in.Price, in.CategoryID, in.ImgURL).
			Suffix("RETURNING id")
		if err := get(ctx, tx, &id, q); err != nil {
			return s.itemWriteError(err, in.CategoryID, "create item")
		}
		var err error
		created, err = s.item(ctx, tx, id)
		return err
	})
	return created, err
}

func (s *Store) UpdateItem(ctx context.Context, id int64, in ItemInput) (*Item, error) {
	var updated *Item
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		n, err := exec(ctx, tx, s.sb.Update("items").SetMap(map[string]any{
			"artist":      in.Artist,
			"title":       in.Title,
			"label":       in.Label,
			"year":        in.Year,
			"quantity":    in.Quantity,
			"price":       in.Price,
			"category_id": in.CategoryID,
			"img_url":     in.ImgURL,
		}).Where(sq.Eq{"id": id}))
		if err != nil {
			return s.itemWriteError(err, in.CategoryID, fmt.Sprintf("update item %d", id))
		}
		if n == 0 {
			return fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		updated, err = s.item(ctx, tx, id)
		return err
	})
	return updated, err
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	n, err := exec(ctx, s.db, s.sb.Delete("items").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// AdjustQuantity adds delta to the stock of an item in a single statement.
// The update is refused when the result would drop below zero.
func (s *Store) AdjustQuantity(ctx context.Context, id int64, delta int) (*Item, error) {
	var adjusted *Item
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, s.sb.Update("items").
			Set("quantity", sq.Expr("quantity + ?", delta)).
			Where(sq.Eq{"id": id}).
			Where(sq.Expr("quantity + ? >= 0", delta)))
		if err != nil {
			return fmt.Errorf("adjust quantity of item %d: %w", id, err)
		}
		if n == 0 {
			if _, getErr := s.item(ctx, tx, id); getErr != nil {
				return getErr
			}
			return fmt.Errorf("item %d by %d: %w", id, delta, ErrInsufficientQuantity)
		}
		adjusted, err = s.item(ctx, tx, id)
		return err
	})
	return adjusted, err
}

func (s *Store) UpdatePrice(ctx context.Context, id int64, price float64) (*Item, error) {
	n, err := exec(ctx, s.db, s.sb.Update("items").Set("price", price).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("update price of item %d: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return s.Item(ctx, id)
}

// ReassignCategory moves every listed item to categoryID. Either all items
// move or none do.
func (s *Store) ReassignCategory(ctx context.Context, itemIDs []int64, categoryID int64) ([]Item, error) {
	ids := slices.Clone(itemIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	out := []Item{}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireCategory(ctx, tx, categoryID); err != nil {
			return err
		}
		n, err := exec(ctx, tx, s.sb.Update("items").
			Set("category_id", categoryID).
			Where(sq.Eq{"id": ids}))
		if err != nil {
			return s.itemWriteError(err, categoryID, "reassign items")
		}
		if n != int64(len(ids)) {
			var found []int64
			if err := selectRows(ctx, tx, &found, s.sb.Select("id").From("items").Where(sq.Eq{"id": ids})); err != nil {
				return fmt.Errorf("reassign items: %w", err)
			}
			for _, id := range ids {
				if !slices.Contains(found, id) {
					return fmt.Errorf("item %d: %w", id, ErrNotFound)
				}
			}
			return fmt.Errorf("reassign items: updated %d of %d", n, len(ids))
		}
		return selectRows(ctx, tx, &out, s.itemQuery().Where(sq.Eq{"i.id": ids}))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) requireCategory(ctx context.Context, q sqlx.QueryerContext, id int64) error {
	if _, err := s.category(ctx, q, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("category %d: %w", id, ErrUnknownCategory)
		}
		return err
	}
	return nil
}

func (s *Store) itemWriteError(err error, categoryID int64, op string) error {
	if violation(err) == foreignKeyViolation {
		return fmt.Errorf("category %d: %w", categoryID, ErrUnknownCategory)
	}
	return fmt.Errorf("%s: %w", op, err)
}
