// Package history archives every successful publish in a relational store,
// so the JSON queue file only ever holds pending work.
package history

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domainPost "github.com/fbautopost/backend/domains/post"
)

type Repository struct {
	db *gorm.DB
}

// NewRepository migrates the publish_records table and returns the repo.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&domainPost.PublishRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate publish history: %w", err)
	}
	return &Repository{db: db}, nil
}

// Record stores one published post.
func (r *Repository) Record(ctx context.Context, record domainPost.PublishRecord) error {
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record publish: %w", err)
	}
	return nil
}

// Recent returns the latest publishes, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]domainPost.PublishRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []domainPost.PublishRecord
	err := r.db.WithContext(ctx).
		Order("posted_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load publish history: %w", err)
	}
	return records, nil
}

// Count returns the total number of archived publishes.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domainPost.PublishRecord{}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count publish history: %w", err)
	}
	return count, nil
}
