// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"
)

// EntryModel is the database row of a history entry.
type EntryModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"size:191;index;not null"`
	Role      string `gorm:"size:32;not null"`
	Content   string `gorm:"type:text"`
	CreatedAt int64  `gorm:"autoCreateTime:nano"`
}

// TableName returns the table name for the EntryModel.
func (EntryModel) TableName() string {
	return "session_history"
}

// Database keeps history in a SQL database through GORM.
type Database struct {
	db *gorm.DB
}

var _ Provider = (*Database)(nil)

// NewDatabase returns a provider backed by db.
func NewDatabase(db *gorm.DB) (*Database, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &Database{db: db}, nil
}

// Migrate creates or updates the history table.
func (p *Database) Migrate(ctx context.Context) error {
	if err := p.db.WithContext(ctx).AutoMigrate(&EntryModel{}); err != nil {
		return fmt.Errorf("migrate history table: %w", err)
	}
	return nil
}

// Get implements [Provider].
func (p *Database) Get(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	q := p.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var models []EntryModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("get history for session %s: %w", sessionID, err)
	}
	slices.Reverse(models)

	entries := make([]Entry, len(models))
	for i, m := range models {
		entries[i] = Entry{Role: m.Role, Content: m.Content}
	}
	return entries, nil
}

// Append implements [Provider].
func (p *Database) Append(ctx context.Context, sessionID string, entry Entry) error {
	model := &EntryModel{SessionID: sessionID, Role: entry.Role, Content: entry.Content}
	if err := p.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("append history for session %s: %w", sessionID, err)
	}
	return nil
}

// Clear implements [Provider].
func (p *Database) Clear(ctx context.Context, sessionID string) error {
	if err := p.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&EntryModel{}).Error; err != nil {
		return fmt.Errorf("clear history for session %s: %w", sessionID, err)
	}
	return nil
}
