package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
)

// AuditLog records one mutation to a ledger entity. Rows are append-only and
// never mutated or deleted; they are the sole source of historical truth
// beyond the current-state tables.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	EntityType  string            `gorm:"column:entity_type;not null;index:idx_audit_entity"`
	EntityID    uuid.UUID         `gorm:"column:entity_id;type:uuid;not null;index:idx_audit_entity"`
	Action      enums.AuditAction `gorm:"column:action;type:audit_action_enum;not null"`
	OldValue    json.RawMessage   `gorm:"column:old_value;type:jsonb"`
	NewValue    json.RawMessage   `gorm:"column:new_value;type:jsonb"`
	UserID      *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	UserName    string            `gorm:"column:user_name"`
	UserEmail   string            `gorm:"column:user_email"`
	Description string            `gorm:"column:description"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (l *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
