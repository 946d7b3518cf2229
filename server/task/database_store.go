// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	a2a "github.com/go-a2a/a2a-server"
)

// DatabaseStore is a database implementation of Store using GORM.
type DatabaseStore struct {
	db *gorm.DB
}

var _ Store = (*DatabaseStore)(nil)

// NewDatabaseStore creates a new DatabaseStore.
func NewDatabaseStore(db *gorm.DB) (*DatabaseStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	return &DatabaseStore{db: db}, nil
}

// Migrate creates or updates the tables used by the store.
func (s *DatabaseStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&TaskModel{}, &PushNotificationModel{}); err != nil {
		return fmt.Errorf("migrate task tables: %w", err)
	}
	return nil
}

// Create persists a new task.
func (s *DatabaseStore) Create(ctx context.Context, task *a2a.Task) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&TaskModel{}).Where("id = ?", task.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return TaskExistsError{TaskID: task.ID}
		}
		return tx.Create(NewTaskModel(task)).Error
	})
	if err != nil {
		var exists TaskExistsError
		if errors.As(err, &exists) {
			return err
		}
		return NewStoreError("create", task.ID, err)
	}

	return nil
}

// Update replaces a stored task.
func (s *DatabaseStore) Update(ctx context.Context, task *a2a.Task) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old TaskModel
		if err := tx.Where("id = ?", task.ID).First(&old).Error; err != nil {
			return err
		}
		model := NewTaskModel(task)
		model.CreatedAt = old.CreatedAt
		return tx.Save(model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a2a.TaskNotFoundError{TaskID: task.ID}
		}
		return NewStoreError("update", task.ID, err)
	}

	return nil
}

// Get retrieves a task by its ID.
func (s *DatabaseStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	var model TaskModel
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a2a.TaskNotFoundError{TaskID: taskID}
		}
		return nil, NewStoreError("get", taskID, err)
	}

	return model.ToTask(), nil
}

// GetBySession returns the tasks of a session in creation order.
func (s *DatabaseStore) GetBySession(ctx context.Context, sessionID string) ([]*a2a.Task, error) {
	var models []TaskModel
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at, id").
		Find(&models).Error
	if err != nil {
		return nil, NewStoreError("get_by_session", "", err)
	}

	tasks := make([]*a2a.Task, 0, len(models))
	for i := range models {
		tasks = append(tasks, models[i].ToTask())
	}

	return tasks, nil
}

// Delete removes a task and its push notification target.
func (s *DatabaseStore) Delete(ctx context.Context, taskID string) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&PushNotificationModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", taskID).Delete(&TaskModel{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, NewStoreError("delete", taskID, err)
	}

	return deleted, nil
}

// SetPushNotification stores the push notification target of a task.
func (s *DatabaseStore) SetPushNotification(ctx context.Context, taskID string, config a2a.PushNotificationConfig) (bool, error) {
	var stored bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&TaskModel{}).Where("id = ?", taskID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		model := &PushNotificationModel{
			TaskID: taskID,
			Config: JSONColumn[a2a.PushNotificationConfig]{V: config},
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
			return err
		}
		stored = true
		return nil
	})
	if err != nil {
		return false, NewStoreError("set_push_notification", taskID, err)
	}

	return stored, nil
}

// GetPushNotification returns the push notification target of a task.
func (s *DatabaseStore) GetPushNotification(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error) {
	var model PushNotificationModel
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, NewStoreError("get_push_notification", taskID, err)
	}

	config := model.Config.V
	return &config, nil
}

// HasPushNotification reports whether a task has a push notification target.
func (s *DatabaseStore) HasPushNotification(ctx context.Context, taskID string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&PushNotificationModel{}).Where("task_id = ?", taskID).Count(&n).Error; err != nil {
		return false, NewStoreError("has_push_notification", taskID, err)
	}
	return n > 0, nil
}
