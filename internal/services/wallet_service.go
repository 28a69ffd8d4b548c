package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"smm-wallet/internal/models"
	"smm-wallet/pkg/common"
)

type WalletService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	Audit  *AuditService
	Logger *zap.Logger
}

func NewWalletService(db *gorm.DB, ledger *LedgerService, audit *AuditService, logger *zap.Logger) *WalletService {
	return &WalletService{DB: db, Ledger: ledger, Audit: audit, Logger: logger}
}

func (s *WalletService) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Select("id", "wallet_balance").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.WalletBalance, nil
}

type UserTransactionDTO struct {
	UserID    uint
	Type      models.TransactionType
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

func (s *WalletService) GetUserTransactions(ctx context.Context, data UserTransactionDTO) (common.PaginationResult, error) {
	page := common.NewPage(data.Page, data.Limit, 50)

	query := s.DB.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", data.UserID)
	if data.Type != "" {
		query = query.Where("transaction_type = ?", data.Type)
	}
	if data.StartDate != "" {
		query = query.Where("DATE(created_at) >= ?", data.StartDate)
	}
	if data.EndDate != "" {
		query = query.Where("DATE(created_at) <= ?", data.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var transactions []models.WalletTransaction
	if err := query.Order("created_at DESC, id DESC").Scopes(page.Scope).Find(&transactions).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(transactions, total, page, "Successful"), nil
}

func (s *WalletService) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := s.DB.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

type AdjustBalanceDTO struct {
	UserID  uint
	AdminID uint
	// Amount is signed: positive credits, negative debits.
	Amount decimal.Decimal
	Reason string
}

// AdjustBalance is the super admin's manual correction. Each call gets its own
// reference, so retries create separate entries.
func (s *WalletService) AdjustBalance(ctx context.Context, data AdjustBalanceDTO) (*models.WalletTransaction, error) {
	amount := data.Amount.Round(2)
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	txType := models.TransactionCredit
	if amount.IsNegative() {
		txType = models.TransactionDebit
	}
	desc := "Admin adjustment"
	if data.Reason != "" {
		desc = fmt.Sprintf("Admin adjustment: %s", data.Reason)
	}
	admin := data.AdminID

	trx, err := s.Ledger.Apply(ctx, EntryDTO{
		UserID:      data.UserID,
		Type:        txType,
		Amount:      amount.Abs(),
		Description: desc,
		Reference:   "adjust_" + uuid.NewString(),
		CreatedBy:   &admin,
	})
	if err != nil {
		s.Logger.Warn("Balance adjustment rejected",
			zap.Uint("user_id", data.UserID),
			zap.Uint("admin_id", data.AdminID),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	s.Audit.LogAction(ctx, &admin, ActionWalletAdjusted, "user", idString(data.UserID),
		map[string]interface{}{"balance": trx.BalanceBefore.String()},
		map[string]interface{}{"balance": trx.BalanceAfter.String(), "transaction_id": trx.ID, "reason": data.Reason})
	return trx, nil
}

func (s *WalletService) Reconcile(ctx context.Context, userID uint) (*ReconcileResult, error) {
	return s.Ledger.Reconcile(ctx, userID)
}
