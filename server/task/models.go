// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"database/sql/driver"
	"fmt"

	"github.com/go-json-experiment/json"

	a2a "github.com/go-a2a/a2a-server"
)

// JSONColumn stores V as a JSON document in a database column.
type JSONColumn[T any] struct {
	V T
}

// Value implements the driver.Valuer interface for database storage.
func (c JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database retrieval.
func (c *JSONColumn[T]) Scan(value any) error {
	var zero T
	if value == nil {
		c.V = zero
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, c)
	}

	v := zero
	if err := json.Unmarshal(bytes, &v); err != nil {
		return fmt.Errorf("cannot unmarshal %T: %w", c, err)
	}
	c.V = v
	return nil
}

// TaskModel is the database row of a task.
type TaskModel struct {
	ID        string                     `gorm:"primaryKey;size:191"`
	SessionID string                     `gorm:"size:191;index"`
	State     string                     `gorm:"size:32;not null"`
	Status    JSONColumn[a2a.TaskStatus] `gorm:"type:json"`
	History   JSONColumn[[]a2a.Message]  `gorm:"type:json"`
	Artifacts JSONColumn[[]a2a.Artifact] `gorm:"type:json"`
	Metadata  JSONColumn[map[string]any] `gorm:"type:json"`
	CreatedAt int64                      `gorm:"autoCreateTime:nano;index"`
	UpdatedAt int64                      `gorm:"autoUpdateTime:nano"`
}

// TableName returns the table name for the TaskModel.
func (TaskModel) TableName() string {
	return "tasks"
}

// NewTaskModel converts a task into its database row.
func NewTaskModel(task *a2a.Task) *TaskModel {
	return &TaskModel{
		ID:        task.ID,
		SessionID: task.SessionID,
		State:     string(task.Status.State),
		Status:    JSONColumn[a2a.TaskStatus]{V: task.Status},
		History:   JSONColumn[[]a2a.Message]{V: task.History},
		Artifacts: JSONColumn[[]a2a.Artifact]{V: task.Artifacts},
		Metadata:  JSONColumn[map[string]any]{V: task.Metadata},
	}
}

// ToTask converts the row back into a task.
func (m *TaskModel) ToTask() *a2a.Task {
	return &a2a.Task{
		ID:        m.ID,
		SessionID: m.SessionID,
		Status:    m.Status.V,
		History:   m.History.V,
		Artifacts: m.Artifacts.V,
		Metadata:  m.Metadata.V,
	}
}

// PushNotificationModel is the database row of a task's push notification target.
type PushNotificationModel struct {
	TaskID string                                 `gorm:"primaryKey;size:191"`
	Config JSONColumn[a2a.PushNotificationConfig] `gorm:"type:json"`
}

// TableName returns the table name for the PushNotificationModel.
func (PushNotificationModel) TableName() string {
	return "task_push_notifications"
}
