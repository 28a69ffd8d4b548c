package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smm-wallet/internal/config"
	"smm-wallet/internal/metrics"
	"smm-wallet/internal/models"
)

type RefundCategory string

const (
	RefundZero     RefundCategory = "zero"
	RefundNegative RefundCategory = "negative"
	RefundNormal   RefundCategory = "normal"
	RefundLarge    RefundCategory = "large"
	RefundExtreme  RefundCategory = "extreme"
)

// ClassifyRefundAmount buckets an order total for the refund decision.
func ClassifyRefundAmount(amount decimal.Decimal, cfg config.RefundConfig) RefundCategory {
	switch {
	case amount.IsZero():
		return RefundZero
	case amount.IsNegative():
		return RefundNegative
	case amount.GreaterThan(cfg.ExtremeThreshold):
		return RefundExtreme
	case amount.GreaterThan(cfg.LargeThreshold):
		return RefundLarge
	default:
		return RefundNormal
	}
}

type RefundResult struct {
	OrderID     uint                      `json:"order_id"`
	Category    RefundCategory            `json:"category"`
	Amount      decimal.Decimal           `json:"amount"`
	Refunded    bool                      `json:"refunded"`
	SkipReason  string                    `json:"skip_reason,omitempty"`
	Transaction *models.WalletTransaction `json:"transaction,omitempty"`
}

type RefundService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	Audit  *AuditService
	Logger *zap.Logger
	Config config.RefundConfig
}

func NewRefundService(db *gorm.DB, ledger *LedgerService, audit *AuditService, logger *zap.Logger, cfg config.RefundConfig) *RefundService {
	return &RefundService{DB: db, Ledger: ledger, Audit: audit, Logger: logger, Config: cfg}
}

// ProcessRefund retries the refund of a failed or refunded order in its own
// transaction. The refund reference keeps it at most once.
func (s *RefundService) ProcessRefund(ctx context.Context, orderID, actorID uint) (*RefundResult, error) {
	var res *RefundResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		// Only orders whose decision already calls for a refund; anything else
		// goes through AdminUpdateStatus.
		if order.Status != models.StatusFailed && order.Status != models.StatusRefunded {
			return ErrInvalidTransition
		}
		var err error
		res, err = s.ProcessRefundTx(ctx, tx, &order, actorID)
		return err
	})
	if err != nil {
		s.RecordFailure(ctx, err, actorID)
		return nil, err
	}
	s.Committed(ctx, res, actorID)
	return res, nil
}

// ProcessRefundTx decides and applies the wallet refund for a failed or
// reversed order inside the caller's transaction. Skips return a result with
// Refunded=false and no error so the caller's status change still goes through.
// Committed must be called after the caller commits.
func (s *RefundService) ProcessRefundTx(ctx context.Context, tx *gorm.DB, order *models.Order, actorID uint) (*RefundResult, error) {
	category := ClassifyRefundAmount(order.TotalPrice, s.Config)
	res := &RefundResult{OrderID: order.ID, Category: category, Amount: order.TotalPrice}

	logFields := []zap.Field{
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", order.UserID),
		zap.Uint("actor_id", actorID),
		zap.String("amount", order.TotalPrice.String()),
		zap.String("category", string(category)),
	}

	switch category {
	case RefundZero, RefundNegative:
		res.SkipReason = "non_positive_amount"
		metrics.Refunds.WithLabelValues(string(category), "skipped").Inc()
		s.Logger.Info("Refund skipped, nothing to refund", logFields...)
		return res, nil
	case RefundLarge, RefundExtreme:
		s.Logger.Warn("Refund amount flagged for manual review", logFields...)
	}

	if !order.WasPaid() {
		res.SkipReason = "unpaid"
		metrics.Refunds.WithLabelValues(string(category), "skipped").Inc()
		s.Logger.Info("Refund skipped, order was never paid", logFields...)
		return res, nil
	}

	if order.IsWalletFunding() {
		var credited int64
		if err := tx.Model(&models.WalletTransaction{}).
			Where("reference = ?", models.FundingReference(order.ID)).
			Count(&credited).Error; err != nil {
			return nil, s.fail(order, fmt.Errorf("check funding credit: %w", err), logFields)
		}
		if credited > 0 {
			// The funds already sit in the wallet.
			res.SkipReason = "funding_already_credited"
			metrics.Refunds.WithLabelValues(string(category), "skipped").Inc()
			s.Logger.Info("Refund skipped, funding already credited", logFields...)
			return res, nil
		}
	}

	var existing int64
	if err := tx.Model(&models.WalletTransaction{}).
		Where("order_id = ? AND transaction_type = ?", order.ID, models.TransactionRefund).
		Count(&existing).Error; err != nil {
		return nil, s.fail(order, fmt.Errorf("check existing refund: %w", err), logFields)
	}
	if existing > 0 {
		return nil, s.fail(order, ErrDuplicateRefund, logFields)
	}

	orderID := order.ID
	actor := actorID
	trx, err := s.Ledger.ApplyTx(tx, EntryDTO{
		UserID:      order.UserID,
		Type:        models.TransactionRefund,
		Amount:      order.TotalPrice,
		Description: fmt.Sprintf("Refund for order #%s", order.Code),
		Reference:   models.RefundReference(order.ID),
		OrderID:     &orderID,
		CreatedBy:   &actor,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			err = ErrDuplicateRefund
		}
		return nil, s.fail(order, err, logFields)
	}

	res.Refunded = true
	res.Transaction = trx
	return res, nil
}

// Committed publishes and audits a refund after its transaction commits.
func (s *RefundService) Committed(ctx context.Context, res *RefundResult, actorID uint) {
	if res == nil {
		return
	}
	actor := actorID
	entityID := strconv.FormatUint(uint64(res.OrderID), 10)
	if !res.Refunded {
		s.Audit.LogAction(ctx, &actor, ActionRefundSkipped, "order", entityID, nil, res)
		return
	}
	metrics.Refunds.WithLabelValues(string(res.Category), "refunded").Inc()
	s.Ledger.Committed(res.Transaction)
	s.Audit.LogAction(ctx, &actor, ActionRefundApplied, "order", entityID, nil, res)
}

// RefundError keeps the context of a failed refund so it can be audited once
// the surrounding transaction has rolled back.
type RefundError struct {
	OrderID uint
	UserID  uint
	Amount  decimal.Decimal
	Err     error
}

func (e *RefundError) Error() string {
	return fmt.Sprintf("refund order %d: %v", e.OrderID, e.Err)
}

func (e *RefundError) Unwrap() error {
	return e.Err
}

func (s *RefundService) fail(order *models.Order, err error, fields []zap.Field) error {
	metrics.Refunds.WithLabelValues(string(ClassifyRefundAmount(order.TotalPrice, s.Config)), "failed").Inc()
	s.Logger.Error("Refund failed", append(fields, zap.Error(err))...)
	return &RefundError{OrderID: order.ID, UserID: order.UserID, Amount: order.TotalPrice, Err: err}
}

// RecordFailure writes the audit row for a refund error. Call it after the
// transaction that produced err has finished; other errors are ignored.
func (s *RefundService) RecordFailure(ctx context.Context, err error, actorID uint) {
	var rerr *RefundError
	if !errors.As(err, &rerr) {
		return
	}
	actor := actorID
	s.Audit.LogAction(ctx, &actor, ActionRefundFailed, "order", strconv.FormatUint(uint64(rerr.OrderID), 10), nil, map[string]interface{}{
		"user_id": rerr.UserID,
		"amount":  rerr.Amount.String(),
		"error":   rerr.Err.Error(),
	})
}
