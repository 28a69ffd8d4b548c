package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smm-wallet/internal/models"
)

// Audit actions.
const (
	ActionOrderPlaced        = "order.placed"
	ActionWalletFundingOrder = "order.wallet_funding"
	ActionPaymentConfirmed   = "order.payment_confirmed"
	ActionOrderAutoPromoted  = "order.auto_promoted"
	ActionOrderStatusUpdated = "order.status_updated"
	ActionWalletDeducted     = "wallet.deducted"
	ActionWalletAdjusted     = "wallet.adjusted"
	ActionRefundApplied      = "refund.applied"
	ActionRefundSkipped      = "refund.skipped"
	ActionRefundFailed       = "refund.failed"
)

type AuditService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewAuditService(db *gorm.DB, logger *zap.Logger) *AuditService {
	return &AuditService{DB: db, Logger: logger}
}

// LogAction records an audit row. It is best effort: failures are logged and swallowed.
func (s *AuditService) LogAction(ctx context.Context, actorID *uint, action, entityType, entityID string, oldValues, newValues interface{}) {
	if s == nil {
		return
	}
	entry := models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  toJSON(oldValues),
		NewValues:  toJSON(newValues),
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		s.Logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
