package services

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"smm-wallet/internal/models"
)

const sweepBatchSize = 500

// ConfirmationService promotes orders whose confirmation deadline passed
// without anyone asking, e.g. the customer closed the tab and the queued task
// was lost.
type ConfirmationService struct {
	DB     *gorm.DB
	Orders *OrderService
	Logger *zap.Logger
}

func NewConfirmationService(db *gorm.DB, orders *OrderService, logger *zap.Logger) *ConfirmationService {
	return &ConfirmationService{DB: db, Orders: orders, Logger: logger}
}

// PromoteExpired returns the number of orders promoted.
func (s *ConfirmationService) PromoteExpired(ctx context.Context) (int, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND confirmation_deadline IS NOT NULL AND confirmation_deadline <= ?",
			models.StatusAwaitingConfirmation, s.Orders.Now()).
		Order("confirmation_deadline ASC").
		Limit(sweepBatchSize).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, id := range ids {
		ok, err := s.Orders.AutoPromote(ctx, id, TriggerSweep)
		if err != nil {
			s.Logger.Error("Sweep failed to promote order", zap.Uint("order_id", id), zap.Error(err))
			continue
		}
		if ok {
			promoted++
		}
	}
	return promoted, nil
}

// StartScheduler runs PromoteExpired on the given cron spec. Stop the returned
// cron on shutdown.
func (s *ConfirmationService) StartScheduler(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := s.PromoteExpired(context.Background())
		if err != nil {
			s.Logger.Error("Confirmation sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.Logger.Info("Confirmation sweep promoted orders", zap.Int("count", n))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	s.Logger.Info("Confirmation sweep scheduled", zap.String("spec", spec))
	return c, nil
}
