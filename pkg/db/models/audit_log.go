package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
)

// AuditLog is an append-only record of a mutating action.
type AuditLog struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID      *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	Action       enums.AuditAction `gorm:"column:action;type:text;not null"`
	ResourceType string            `gorm:"column:resource_type;not null"`
	ResourceID   string            `gorm:"column:resource_id;not null"`
	Description  string            `gorm:"column:description;not null"`
	Before       json.RawMessage   `gorm:"column:before;type:jsonb"`
	After        json.RawMessage   `gorm:"column:after;type:jsonb"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}
