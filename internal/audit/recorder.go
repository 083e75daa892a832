package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
)

// Entry describes one mutating action to record.
type Entry struct {
	ActorID      *uuid.UUID
	Action       enums.AuditAction
	ResourceType string
	ResourceID   string
	Description  string
	Before       any
	After        any
}

// Recorder appends audit log rows. Recording is best-effort: failures are
// logged and never propagated, so an audit outage cannot block a mutation.
type Recorder struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewRecorder builds the audit recorder.
func NewRecorder(db *gorm.DB, logg *logger.Logger) *Recorder {
	return &Recorder{db: db, logg: logg}
}

// WithTx returns a recorder bound to the provided transaction. Entries written
// inside a transaction share its fate.
func (r *Recorder) WithTx(tx *gorm.DB) *Recorder {
	return &Recorder{db: tx, logg: r.logg}
}

// Record appends the entry.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.db == nil {
		return
	}

	row := models.AuditLog{
		ID:           uuid.New(),
		ActorID:      entry.ActorID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Description:  entry.Description,
		Before:       marshalState(entry.Before),
		After:        marshalState(entry.After),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "audit record failed", err)
		}
	}
}

// List returns recent entries for a resource, newest first.
func (r *Recorder) List(ctx context.Context, resourceType, resourceID string, limit int) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	q := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func marshalState(state any) json.RawMessage {
	if state == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil
	}
	return raw
}
