package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository provides access to chat log storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new chat log repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a chat line.
func (r *Repository) Create(ctx context.Context, entry *ChatLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create chat log: %w", err)
	}
	return nil
}

// FindByRoom returns the most recent lines of a room, newest first.
func (r *Repository) FindByRoom(ctx context.Context, room string, limit int) ([]*ChatLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []*ChatLog
	err := r.db.WithContext(ctx).
		Where("room = ?", room).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find chat logs: %w", err)
	}
	return logs, nil
}

// Count returns the number of stored lines.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&ChatLog{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count chat logs: %w", err)
	}
	return n, nil
}
