package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smm-wallet/internal/events"
	"smm-wallet/internal/metrics"
	"smm-wallet/internal/models"
)

// LedgerService is the single way a wallet balance changes. Each entry locks
// the user row, moves the balance and appends the transaction row in one
// database transaction.
type LedgerService struct {
	DB     *gorm.DB
	Logger *zap.Logger
	Events *events.Bus
}

func NewLedgerService(db *gorm.DB, logger *zap.Logger, bus *events.Bus) *LedgerService {
	return &LedgerService{DB: db, Logger: logger, Events: bus}
}

type EntryDTO struct {
	UserID      uint
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	// Reference is the idempotency key; the storage layer keeps it unique.
	Reference string
	OrderID   *uint
	CreatedBy *uint
}

// Apply commits one ledger entry in its own transaction and publishes the new balance.
func (s *LedgerService) Apply(ctx context.Context, entry EntryDTO) (*models.WalletTransaction, error) {
	var trx *models.WalletTransaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		trx, err = s.ApplyTx(tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Committed(trx)
	return trx, nil
}

// ApplyTx performs the entry inside the caller's transaction. The caller must
// call Committed once its transaction commits.
func (s *LedgerService) ApplyTx(tx *gorm.DB, entry EntryDTO) (*models.WalletTransaction, error) {
	if !entry.Type.Valid() {
		return nil, fmt.Errorf("unknown transaction type %q", entry.Type)
	}
	amount := entry.Amount.Round(2)
	if !amount.IsPositive() {
		metrics.LedgerRejections.WithLabelValues("invalid_amount").Inc()
		return nil, ErrInvalidAmount
	}

	if entry.Reference != "" {
		var count int64
		if err := tx.Model(&models.WalletTransaction{}).Where("reference = ?", entry.Reference).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check ledger reference: %w", err)
		}
		if count > 0 {
			metrics.LedgerRejections.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.Reference)
		}
	}

	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "wallet_balance").
		Where("id = ?", entry.UserID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	before := user.WalletBalance
	after := before.Add(entry.Type.Signed(amount))
	if after.IsNegative() {
		metrics.LedgerRejections.WithLabelValues("insufficient_balance").Inc()
		return nil, &InsufficientBalanceError{Requested: amount, Available: before}
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("wallet_balance", after).Error; err != nil {
		return nil, fmt.Errorf("update wallet balance: %w", err)
	}

	trx := &models.WalletTransaction{
		UserID:          entry.UserID,
		TransactionType: entry.Type,
		Amount:          amount,
		BalanceBefore:   before,
		BalanceAfter:    after,
		Description:     entry.Description,
		OrderID:         entry.OrderID,
		CreatedBy:       entry.CreatedBy,
	}
	if entry.Reference != "" {
		ref := entry.Reference
		trx.Reference = &ref
	}
	if err := tx.Create(trx).Error; err != nil {
		if isDuplicateKey(err) {
			metrics.LedgerRejections.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.Reference)
		}
		return nil, fmt.Errorf("insert wallet transaction: %w", err)
	}

	return trx, nil
}

// Committed publishes the post-commit side effects of an entry.
func (s *LedgerService) Committed(trx *models.WalletTransaction) {
	if trx == nil {
		return
	}
	metrics.LedgerEntries.WithLabelValues(string(trx.TransactionType)).Inc()
	s.Logger.Info("Ledger entry committed",
		zap.Uint("user_id", trx.UserID),
		zap.Uint("transaction_id", trx.ID),
		zap.String("type", string(trx.TransactionType)),
		zap.String("amount", trx.Amount.String()),
		zap.String("balance_after", trx.BalanceAfter.String()))
	s.Events.Publish(events.WalletEvent{
		Type:          events.TypeWalletUpdated,
		UserID:        trx.UserID,
		Balance:       trx.BalanceAfter,
		TransactionID: trx.ID,
	})
}

type ReconcileResult struct {
	UserID       uint            `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	LedgerTotal  decimal.Decimal `json:"ledger_total"`
	EntryCount   int             `json:"entry_count"`
	BrokenChains []uint          `json:"broken_chains"`
	Consistent   bool            `json:"consistent"`
}

// Reconcile replays a user's ledger from a zero opening balance and checks it
// against the stored balance. A chain break is a row whose balance_before
// differs from the previous row's balance_after.
func (s *LedgerService) Reconcile(ctx context.Context, userID uint) (*ReconcileResult, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var rows []models.WalletTransaction
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	res := &ReconcileResult{
		UserID:       userID,
		Balance:      user.WalletBalance,
		LedgerTotal:  decimal.Zero,
		EntryCount:   len(rows),
		BrokenChains: []uint{},
	}
	running := decimal.Zero
	for _, r := range rows {
		if !r.BalanceBefore.Equal(running) {
			res.BrokenChains = append(res.BrokenChains, r.ID)
		}
		res.LedgerTotal = res.LedgerTotal.Add(r.TransactionType.Signed(r.Amount))
		running = r.BalanceAfter
	}
	res.Consistent = len(res.BrokenChains) == 0 && res.LedgerTotal.Equal(user.WalletBalance)
	return res, nil
}
