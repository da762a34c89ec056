package repository

import (
	"context"
	"database/sql"
	"fmt"

	"deepflow/backend/internal/model"
)

type ShelfRepository struct {
	db *sql.DB
}

func NewShelfRepository(db *sql.DB) *ShelfRepository {
	return &ShelfRepository{db: db}
}

func (r *ShelfRepository) Insert(ctx context.Context, item *model.ShelfItem) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO shelf_items (id, user_id, text, created_at)
		 VALUES (?, ?, ?, ?)`,
		item.ID,
		item.UserID,
		item.Text,
		formatTime(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert shelf item: %w", err)
	}
	return nil
}

func (r *ShelfRepository) List(ctx context.Context, userID string) ([]model.ShelfItem, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, text, created_at
		 FROM shelf_items
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shelf items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ShelfItem, 0)
	for rows.Next() {
		var item model.ShelfItem
		var createdAt string
		if err := rows.Scan(&item.ID, &item.UserID, &item.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan shelf item: %w", err)
		}
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse shelf created_at: %w", err)
		}
		item.CreatedAt = parsed
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shelf items: %w", err)
	}
	return items, nil
}

func (r *ShelfRepository) Delete(ctx context.Context, itemID, userID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM shelf_items WHERE id = ? AND user_id = ?`,
		itemID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete shelf item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shelf item rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
