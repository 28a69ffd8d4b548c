package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smm-wallet/internal/config"
	"smm-wallet/internal/metrics"
	"smm-wallet/internal/models"
	"smm-wallet/internal/tasks"
	"smm-wallet/pkg/common"
)

// Promotion triggers, used for metrics and audit.
const (
	TriggerScheduledTask = "scheduled_task"
	TriggerSweep         = "sweep"
	TriggerStatusRead    = "status_read"
	TriggerClient        = "client"
)

// Actor is the authenticated caller as reported by the session provider.
type Actor struct {
	ID   uint
	Role models.Role
}

func (a Actor) CanAccess(order *models.Order) bool {
	return a.Role.IsAdmin() || order.UserID == a.ID
}

type OrderService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Refunds  *RefundService
	Audit    *AuditService
	Notifier Notifier
	Queue    tasks.Enqueuer
	Logger   *zap.Logger
	Config   config.OrdersConfig
	// AdminEmail receives payment confirmation notices.
	AdminEmail string
	Now        func() time.Time
	NewCode    func() string
}

// orderCodeAttempts bounds retries when a generated code hits the unique index.
const orderCodeAttempts = 5

func NewOrderService(
	db *gorm.DB,
	ledger *LedgerService,
	refunds *RefundService,
	audit *AuditService,
	notifier Notifier,
	queue tasks.Enqueuer,
	logger *zap.Logger,
	cfg config.OrdersConfig,
	adminEmail string,
) *OrderService {
	return &OrderService{
		DB:         db,
		Ledger:     ledger,
		Refunds:    refunds,
		Audit:      audit,
		Notifier:   notifier,
		Queue:      queue,
		Logger:     logger,
		Config:     cfg,
		AdminEmail: adminEmail,
		Now:        func() time.Time { return time.Now().UTC() },
		NewCode:    common.GenerateOrderCode,
	}
}

type PlaceOrderDTO struct {
	UserID        uint
	ServiceID     uint
	Quantity      int
	Link          string
	PaymentMethod models.PaymentMethod
	BankAccountID *uint
}

// PlaceOrder creates a service purchase. Wallet orders are debited in the same
// transaction that creates them and start as pending; bank transfer orders
// start as awaiting_payment.
func (s *OrderService) PlaceOrder(ctx context.Context, data PlaceOrderDTO) (*models.Order, error) {
	if !data.PaymentMethod.Valid() {
		return nil, ErrInvalidPayment
	}

	var svc models.Service
	if err := s.DB.WithContext(ctx).Where("id = ? AND active = ?", data.ServiceID, true).First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}
	if data.Quantity <= 0 || data.Quantity < svc.MinQuantity || (svc.MaxQuantity > 0 && data.Quantity > svc.MaxQuantity) {
		return nil, ErrInvalidQuantity
	}

	total := models.ComputeTotal(data.Quantity, svc.PricePer1k)
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}

	serviceID := svc.ID
	order := &models.Order{
		UserID:        data.UserID,
		ServiceID:     &serviceID,
		Link:          data.Link,
		Quantity:      data.Quantity,
		PricePer1k:    svc.PricePer1k,
		TotalPrice:    total,
		PaymentMethod: data.PaymentMethod,
	}

	if data.PaymentMethod == models.PaymentBankTransfer {
		bankID, err := s.activeBankAccount(ctx, data.BankAccountID)
		if err != nil {
			return nil, err
		}
		order.BankAccountID = &bankID
		order.Status = models.StatusAwaitingPayment
		if err := s.createOrder(s.DB.WithContext(ctx), order); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		s.afterCreate(ctx, order, ActionOrderPlaced)
		return order, nil
	}

	order.Status = models.StatusPending
	var trx *models.WalletTransaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.createOrder(tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		orderID := order.ID
		var err error
		trx, err = s.Ledger.ApplyTx(tx, EntryDTO{
			UserID:      data.UserID,
			Type:        models.TransactionDebit,
			Amount:      total,
			Description: fmt.Sprintf("Payment for order #%s (%s)", order.Code, svc.Name),
			Reference:   models.DebitReference(order.ID),
			OrderID:     &orderID,
		})
		return err
	})
	if err != nil {
		s.Logger.Warn("Wallet order rejected",
			zap.Uint("user_id", data.UserID),
			zap.Uint("service_id", data.ServiceID),
			zap.String("amount", total.String()),
			zap.Error(err))
		return nil, err
	}

	s.Ledger.Committed(trx)
	s.afterCreate(ctx, order, ActionOrderPlaced)
	return order, nil
}

type FundWalletDTO struct {
	UserID        uint
	Amount        decimal.Decimal
	BankAccountID *uint
}

// FundWallet opens a bank transfer order whose completion credits the wallet.
func (s *OrderService) FundWallet(ctx context.Context, data FundWalletDTO) (*models.Order, error) {
	amount := data.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	bankID, err := s.activeBankAccount(ctx, data.BankAccountID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        data.UserID,
		Quantity:      1,
		PricePer1k:    amount,
		TotalPrice:    amount,
		Status:        models.StatusAwaitingPayment,
		PaymentMethod: models.PaymentBankTransfer,
		BankAccountID: &bankID,
	}
	if err := s.createOrder(s.DB.WithContext(ctx), order); err != nil {
		return nil, fmt.Errorf("create funding order: %w", err)
	}
	s.afterCreate(ctx, order, ActionWalletFundingOrder)
	return order, nil
}

type DeductDTO struct {
	UserID      uint
	OrderID     uint
	Amount      decimal.Decimal
	Description string
}

// DeductForOrder pays an unpaid service order from the wallet.
func (s *OrderService) DeductForOrder(ctx context.Context, data DeductDTO) (*models.Order, *models.WalletTransaction, error) {
	if !data.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	var order models.Order
	var trx *models.WalletTransaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockOrder(tx, data.OrderID, &order); err != nil {
			return err
		}
		if order.UserID != data.UserID {
			return ErrForbidden
		}
		if order.IsWalletFunding() {
			return ErrInvalidPayment
		}
		if order.Status != models.StatusAwaitingPayment {
			return ErrInvalidTransition
		}
		if !order.TotalPrice.Equal(data.Amount.Round(2)) {
			return ErrAmountMismatch
		}

		desc := data.Description
		if desc == "" {
			desc = fmt.Sprintf("Payment for order #%s", order.Code)
		}
		orderID := order.ID
		var err error
		trx, err = s.Ledger.ApplyTx(tx, EntryDTO{
			UserID:      data.UserID,
			Type:        models.TransactionDebit,
			Amount:      order.TotalPrice,
			Description: desc,
			Reference:   models.DebitReference(order.ID),
			OrderID:     &orderID,
		})
		if err != nil {
			return err
		}

		order.Status = models.StatusPending
		order.PaymentMethod = models.PaymentWallet
		return tx.Model(&order).Updates(map[string]interface{}{
			"status":         order.Status,
			"payment_method": order.PaymentMethod,
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}

	s.Ledger.Committed(trx)
	metrics.StatusTransitions.WithLabelValues(string(models.StatusPending)).Inc()
	actor := data.UserID
	s.Audit.LogAction(ctx, &actor, ActionWalletDeducted, "order", idString(order.ID),
		map[string]interface{}{"status": models.StatusAwaitingPayment},
		map[string]interface{}{"status": order.Status, "transaction_id": trx.ID, "amount": trx.Amount.String()})
	return &order, trx, nil
}

type ConfirmPaymentResult struct {
	Order            *models.Order `json:"order"`
	AlreadyConfirmed bool          `json:"already_confirmed"`
}

// ConfirmPayment records the customer's "I've sent the money" claim. Calling it
// again while the order awaits confirmation changes nothing and sends nothing.
func (s *OrderService) ConfirmPayment(ctx context.Context, actor Actor, orderID uint) (*ConfirmPaymentResult, error) {
	var order models.Order
	already := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockOrder(tx, orderID, &order); err != nil {
			return err
		}
		if order.UserID != actor.ID {
			return ErrForbidden
		}
		switch order.Status {
		case models.StatusAwaitingConfirmation:
			already = true
			return nil
		case models.StatusAwaitingPayment:
		default:
			return ErrInvalidTransition
		}

		now := s.Now()
		deadline := now.Add(s.Config.ConfirmationTimeout)
		order.Status = models.StatusAwaitingConfirmation
		order.AwaitingConfirmationAt = &now
		order.ConfirmationDeadline = &deadline
		return tx.Model(&order).Updates(map[string]interface{}{
			"status":                   order.Status,
			"awaiting_confirmation_at": now,
			"confirmation_deadline":    deadline,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	if already {
		return &ConfirmPaymentResult{Order: &order, AlreadyConfirmed: true}, nil
	}

	metrics.StatusTransitions.WithLabelValues(string(order.Status)).Inc()
	s.scheduleAutoConfirm(&order)
	s.notify(ctx, EmailPaymentConfirmation, s.AdminEmail, map[string]interface{}{
		"order_id":    order.ID,
		"order_code":  order.Code,
		"user_id":     order.UserID,
		"amount":      order.TotalPrice.String(),
		"deadline":    order.ConfirmationDeadline,
		"is_funding":  order.IsWalletFunding(),
		"bank_acctid": order.BankAccountID,
	})
	uid := actor.ID
	s.Audit.LogAction(ctx, &uid, ActionPaymentConfirmed, "order", idString(order.ID),
		map[string]interface{}{"status": models.StatusAwaitingPayment},
		map[string]interface{}{"status": order.Status, "confirmation_deadline": order.ConfirmationDeadline})
	return &ConfirmPaymentResult{Order: &order}, nil
}

type AutoUpdateDTO struct {
	Actor   Actor
	OrderID uint
	Status  models.OrderStatus
	Reason  string
}

type PromotionResult struct {
	OrderID  uint               `json:"order_id"`
	Status   models.OrderStatus `json:"status"`
	Promoted bool               `json:"promoted"`
	Reason   string             `json:"reason,omitempty"`
}

// AutoUpdate is the client's timeout request. The server decides: the order is
// promoted only once its own deadline has passed.
func (s *OrderService) AutoUpdate(ctx context.Context, data AutoUpdateDTO) (*PromotionResult, error) {
	if data.Status != models.StatusPending {
		return nil, ErrInvalidStatus
	}
	reason := data.Reason
	if reason == "" {
		reason = tasks.ReasonAutoConfirmationTimeout
	}

	order, err := s.findOrder(ctx, data.OrderID)
	if err != nil {
		return nil, err
	}
	if !data.Actor.CanAccess(order) {
		return nil, ErrForbidden
	}

	switch order.Status {
	case models.StatusAwaitingPayment:
		return nil, ErrInvalidTransition
	case models.StatusAwaitingConfirmation:
		if order.ConfirmationDeadline != nil && s.Now().Before(*order.ConfirmationDeadline) {
			return nil, ErrConfirmationPending
		}
	default:
		return &PromotionResult{OrderID: order.ID, Status: order.Status}, nil
	}

	promoted, err := s.AutoPromote(ctx, order.ID, TriggerClient)
	if err != nil {
		return nil, err
	}
	if !promoted {
		order, err = s.findOrder(ctx, data.OrderID)
		if err != nil {
			return nil, err
		}
		return &PromotionResult{OrderID: order.ID, Status: order.Status}, nil
	}
	return &PromotionResult{OrderID: order.ID, Status: models.StatusPending, Promoted: true, Reason: reason}, nil
}

// AutoPromote moves an order past its confirmation deadline to pending. The
// conditional update makes concurrent or repeated calls promote at most once.
func (s *OrderService) AutoPromote(ctx context.Context, orderID uint, trigger string) (bool, error) {
	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND confirmation_deadline IS NOT NULL AND confirmation_deadline <= ?",
			orderID, models.StatusAwaitingConfirmation, now).
		Updates(map[string]interface{}{
			"status":            models.StatusPending,
			"auto_confirmed_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("auto promote order %d: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	metrics.AutoPromotions.WithLabelValues(trigger).Inc()
	metrics.StatusTransitions.WithLabelValues(string(models.StatusPending)).Inc()
	s.Logger.Info("Order auto-promoted to pending",
		zap.Uint("order_id", orderID),
		zap.String("trigger", trigger),
		zap.String("reason", tasks.ReasonAutoConfirmationTimeout))
	s.Audit.LogAction(ctx, nil, ActionOrderAutoPromoted, "order", idString(orderID),
		map[string]interface{}{"status": models.StatusAwaitingConfirmation},
		map[string]interface{}{"status": models.StatusPending, "reason": tasks.ReasonAutoConfirmationTimeout, "trigger": trigger})
	return true, nil
}

type OrderStatusView struct {
	OrderID              uint               `json:"order_id"`
	Status               models.OrderStatus `json:"status"`
	ConfirmationDeadline *time.Time         `json:"confirmation_deadline,omitempty"`
	PaymentVerifiedAt    *time.Time         `json:"payment_verified_at,omitempty"`
	AutoConfirmedAt      *time.Time         `json:"auto_confirmed_at,omitempty"`
}

// GetStatus returns the order status, first promoting it if its confirmation
// deadline has already passed.
func (s *OrderService) GetStatus(ctx context.Context, actor Actor, orderID uint) (*OrderStatusView, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order) {
		return nil, ErrForbidden
	}

	if order.Status == models.StatusAwaitingConfirmation && order.ConfirmationDeadline != nil &&
		!s.Now().Before(*order.ConfirmationDeadline) {
		promoted, err := s.AutoPromote(ctx, order.ID, TriggerStatusRead)
		if err != nil {
			s.Logger.Error("Lazy promotion failed", zap.Uint("order_id", order.ID), zap.Error(err))
		} else if promoted {
			if order, err = s.findOrder(ctx, orderID); err != nil {
				return nil, err
			}
		}
	}

	return &OrderStatusView{
		OrderID:              order.ID,
		Status:               order.Status,
		ConfirmationDeadline: order.ConfirmationDeadline,
		PaymentVerifiedAt:    order.PaymentVerifiedAt,
		AutoConfirmedAt:      order.AutoConfirmedAt,
	}, nil
}

type ListOrdersDTO struct {
	UserID uint
	Status models.OrderStatus
	Page   int
	Limit  int
}

// ListOrders pages through orders, newest first. UserID 0 lists all users.
func (s *OrderService) ListOrders(ctx context.Context, data ListOrdersDTO) (common.PaginationResult, error) {
	page := common.NewPage(data.Page, data.Limit, 20)

	query := s.DB.WithContext(ctx).Model(&models.Order{})
	if data.UserID != 0 {
		query = query.Where("user_id = ?", data.UserID)
	}
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Scopes(page.Scope).Find(&orders).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(orders, total, page, "Orders fetched"), nil
}

type AdminUpdateDTO struct {
	OrderID    uint
	AdminID    uint
	Status     models.OrderStatus
	AdminNotes *string
}

type AdminUpdateResult struct {
	Order         *models.Order             `json:"order"`
	StatusChanged bool                      `json:"status_changed"`
	Refund        *RefundResult             `json:"refund,omitempty"`
	Credit        *models.WalletTransaction `json:"credit,omitempty"`
}

// AdminUpdateStatus applies an admin decision. Ledger effects of the decision
// (refund on failed/refunded, wallet credit on a completed funding order)
// commit or roll back together with the status change.
func (s *OrderService) AdminUpdateStatus(ctx context.Context, data AdminUpdateDTO) (*AdminUpdateResult, error) {
	if data.Status != "" && !data.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var order models.Order
	var oldValues map[string]interface{}
	result := &AdminUpdateResult{Order: &order}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockOrder(tx, data.OrderID, &order); err != nil {
			return err
		}
		from := order.Status
		oldValues = map[string]interface{}{"status": from, "admin_notes": order.AdminNotes}

		updates := map[string]interface{}{}
		if data.AdminNotes != nil {
			order.AdminNotes = *data.AdminNotes
			updates["admin_notes"] = order.AdminNotes
		}

		to := data.Status
		if to != "" && to != from {
			if from.Terminal() {
				return fmt.Errorf("%w: order is %s", ErrInvalidTransition, from)
			}
			if !models.CanTransition(from, to) {
				return ErrInvalidTransition
			}
			result.StatusChanged = true
			now := s.Now()
			order.Status = to
			updates["status"] = to

			switch to {
			case models.StatusPending:
				if order.PaymentMethod == models.PaymentBankTransfer && order.PaymentVerifiedAt == nil {
					order.PaymentVerifiedAt = &now
					updates["payment_verified_at"] = now
				}
			case models.StatusCompleted:
				order.CompletedAt = &now
				updates["completed_at"] = now
				if order.PaymentMethod == models.PaymentBankTransfer && order.PaymentVerifiedAt == nil {
					order.PaymentVerifiedAt = &now
					updates["payment_verified_at"] = now
				}
			case models.StatusCancelled:
				order.CancelledAt = &now
				updates["cancelled_at"] = now
			}

			switch {
			case to == models.StatusFailed || to == models.StatusRefunded:
				refund, err := s.Refunds.ProcessRefundTx(ctx, tx, &order, data.AdminID)
				if err != nil {
					return err
				}
				result.Refund = refund
			case to == models.StatusCompleted && order.IsWalletFunding() && from != models.StatusAwaitingRefund:
				credit, err := s.creditFunding(tx, &order, data.AdminID)
				if err != nil {
					return err
				}
				result.Credit = credit
			}
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		s.Refunds.RecordFailure(ctx, err, data.AdminID)
		s.Logger.Warn("Admin order update rejected",
			zap.Uint("order_id", data.OrderID),
			zap.Uint("admin_id", data.AdminID),
			zap.String("status", string(data.Status)),
			zap.Error(err))
		return nil, err
	}

	s.Refunds.Committed(ctx, result.Refund, data.AdminID)
	s.Ledger.Committed(result.Credit)

	admin := data.AdminID
	s.Audit.LogAction(ctx, &admin, ActionOrderStatusUpdated, "order", idString(order.ID), oldValues,
		map[string]interface{}{"status": order.Status, "admin_notes": order.AdminNotes})

	if result.StatusChanged {
		metrics.StatusTransitions.WithLabelValues(string(order.Status)).Inc()
		s.notifyCustomer(ctx, &order, result)
	}
	return result, nil
}

func (s *OrderService) creditFunding(tx *gorm.DB, order *models.Order, adminID uint) (*models.WalletTransaction, error) {
	if !order.TotalPrice.IsPositive() {
		return nil, nil
	}
	orderID := order.ID
	admin := adminID
	return s.Ledger.ApplyTx(tx, EntryDTO{
		UserID:      order.UserID,
		Type:        models.TransactionCredit,
		Amount:      order.TotalPrice,
		Description: fmt.Sprintf("Wallet funding #%s", order.Code),
		Reference:   models.FundingReference(order.ID),
		OrderID:     &orderID,
		CreatedBy:   &admin,
	})
}

func (s *OrderService) notifyCustomer(ctx context.Context, order *models.Order, result *AdminUpdateResult) {
	var kind string
	switch order.Status {
	case models.StatusCompleted:
		kind = EmailOrderCompleted
		if order.IsWalletFunding() {
			kind = EmailWalletFunded
		}
	case models.StatusFailed:
		kind = EmailOrderFailed
	case models.StatusRefunded:
		kind = EmailOrderRefunded
	default:
		return
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Select("id", "email", "full_name").First(&user, order.UserID).Error; err != nil {
		s.Logger.Error("Failed to load customer for notification", zap.Uint("order_id", order.ID), zap.Error(err))
		return
	}

	payload := map[string]interface{}{
		"order_id":    order.ID,
		"order_code":  order.Code,
		"name":        user.FullName,
		"total_price": order.TotalPrice.String(),
		"status":      order.Status,
		"admin_notes": order.AdminNotes,
	}
	if result.Refund != nil {
		payload["refunded"] = result.Refund.Refunded
	}
	s.notify(ctx, kind, user.Email, payload)
}

func (s *OrderService) notify(ctx context.Context, kind, recipient string, payload map[string]interface{}) {
	if s.Notifier == nil || recipient == "" {
		return
	}
	if err := s.Notifier.Send(ctx, kind, recipient, payload); err != nil {
		s.Logger.Error("Failed to send notification",
			zap.String("kind", kind),
			zap.String("recipient", recipient),
			zap.Error(err))
	}
}

func (s *OrderService) scheduleAutoConfirm(order *models.Order) {
	if s.Queue == nil || order.ConfirmationDeadline == nil {
		return
	}
	task, err := tasks.NewOrderAutoConfirmTask(order.ID, *order.ConfirmationDeadline)
	if err != nil {
		s.Logger.Error("Failed to build auto-confirm task", zap.Uint("order_id", order.ID), zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(task); err != nil {
		// The periodic sweep still promotes the order.
		s.Logger.Warn("Failed to enqueue auto-confirm task", zap.Uint("order_id", order.ID), zap.Error(err))
	}
}

func (s *OrderService) afterCreate(ctx context.Context, order *models.Order, action string) {
	metrics.StatusTransitions.WithLabelValues(string(order.Status)).Inc()
	s.Logger.Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", order.UserID),
		zap.String("status", string(order.Status)),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("total_price", order.TotalPrice.String()))
	uid := order.UserID
	s.Audit.LogAction(ctx, &uid, action, "order", idString(order.ID), nil, map[string]interface{}{
		"status":         order.Status,
		"payment_method": order.PaymentMethod,
		"total_price":    order.TotalPrice.String(),
		"quantity":       order.Quantity,
		"service_id":     order.ServiceID,
	})
}

// createOrder inserts order under a fresh payment code, drawing a new one when
// the code is already taken.
func (s *OrderService) createOrder(db *gorm.DB, order *models.Order) error {
	var err error
	for attempt := 1; attempt <= orderCodeAttempts; attempt++ {
		order.Code = s.NewCode()
		err = db.Create(order).Error
		if !isDuplicateKey(err) {
			return err
		}
		order.ID = 0
		s.Logger.Warn("Order code collision", zap.String("code", order.Code), zap.Int("attempt", attempt))
	}
	return fmt.Errorf("%w: %v", ErrOrderCodeExhausted, err)
}

func (s *OrderService) activeBankAccount(ctx context.Context, id *uint) (uint, error) {
	if id == nil || *id == 0 {
		return 0, ErrBankAccountRequired
	}
	var acct models.BankAccount
	if err := s.DB.WithContext(ctx).Where("id = ? AND active = ?", *id, true).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrBankAccountRequired
		}
		return 0, err
	}
	return acct.ID, nil
}

func (s *OrderService) lockOrder(tx *gorm.DB, orderID uint, order *models.Order) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *OrderService) findOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
