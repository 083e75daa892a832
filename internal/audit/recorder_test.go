package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:audit_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	auditLogs := `
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  actor_id TEXT,
  action TEXT NOT NULL,
  resource_type TEXT NOT NULL,
  resource_id TEXT NOT NULL,
  description TEXT NOT NULL,
  before TEXT,
  after TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(auditLogs).Error)
	return db
}

func TestRecordAndList(t *testing.T) {
	db := setupAuditTestDB(t)
	recorder := NewRecorder(db, nil)
	ctx := context.Background()

	orderID := uuid.NewString()
	recorder.Record(ctx, Entry{
		Action:       enums.AuditActionCreate,
		ResourceType: "order",
		ResourceID:   orderID,
		Description:  "order created",
		After:        map[string]any{"status": "pending"},
	})

	rows, err := recorder.List(ctx, "order", orderID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AuditActionCreate, rows[0].Action)
	assert.NotEmpty(t, rows[0].After)
	assert.Empty(t, rows[0].Before)
}

func TestRecordFailureDoesNotPanic(t *testing.T) {
	db := setupAuditTestDB(t)
	recorder := NewRecorder(db, nil)

	// Unmarshalable payloads degrade to a null column, not an error.
	recorder.Record(context.Background(), Entry{
		Action:       enums.AuditActionUpdate,
		ResourceType: "order",
		ResourceID:   uuid.NewString(),
		Description:  "order updated",
		After:        func() {},
	})
}
