package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    *uint          `gorm:"column:actor_id;index" json:"actor_id,omitempty"`
	Action     string         `gorm:"column:action;size:100;not null;index:idx_audit_entity_action" json:"action"`
	EntityType string         `gorm:"column:entity_type;size:50;not null;index:idx_audit_entity_action" json:"entity_type"`
	EntityID   string         `gorm:"column:entity_id;size:64;index" json:"entity_id"`
	OldValues  datatypes.JSON `gorm:"column:old_values" json:"old_values,omitempty"`
	NewValues  datatypes.JSON `gorm:"column:new_values" json:"new_values,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
