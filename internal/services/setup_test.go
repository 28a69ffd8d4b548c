package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smm-wallet/internal/config"
	"smm-wallet/internal/database"
	"smm-wallet/internal/events"
	"smm-wallet/internal/models"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serializes transactions.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task.Type())
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, kind, recipient string, payload map[string]interface{}) error {
	return m.Called(kind, recipient).Error(0)
}

type fixture struct {
	DB           *gorm.DB
	Bus          *events.Bus
	Ledger       *LedgerService
	Audit        *AuditService
	Refunds      *RefundService
	Orders       *OrderService
	Wallets      *WalletService
	Confirmation *ConfirmationService
	Queue        *mockEnqueuer
	Notifier     *mockNotifier
	clock        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	f := &fixture{
		DB:       db,
		Bus:      events.NewBus(),
		Queue:    &mockEnqueuer{},
		Notifier: &mockNotifier{},
		clock:    testNow,
	}
	f.Ledger = NewLedgerService(db, log, f.Bus)
	f.Audit = NewAuditService(db, log)
	f.Refunds = NewRefundService(db, f.Ledger, f.Audit, log, config.DefaultRefundConfig())
	f.Orders = NewOrderService(db, f.Ledger, f.Refunds, f.Audit, f.Notifier, f.Queue, log,
		config.OrdersConfig{ConfirmationTimeout: 60 * time.Second, SweepSchedule: "@every 30s"},
		"admin@example.com")
	f.Orders.Now = func() time.Time { return f.clock }
	f.Wallets = NewWalletService(db, f.Ledger, f.Audit, log)
	f.Confirmation = NewConfirmationService(db, f.Orders, log)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// allowSideEffects accepts any notification or enqueue.
func (f *fixture) allowSideEffects() {
	f.Queue.On("Enqueue", mock.Anything).Return(&asynq.TaskInfo{}, nil).Maybe()
	f.Notifier.On("Send", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) createUser(t *testing.T, email string, balance int64) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Test User", Role: models.RoleUser}
	require.NoError(t, f.DB.Create(user).Error)
	if balance > 0 {
		_, err := f.Ledger.Apply(context.Background(), EntryDTO{
			UserID:      user.ID,
			Type:        models.TransactionCredit,
			Amount:      decimal.NewFromInt(balance),
			Description: "Opening balance",
			Reference:   "seed_" + email,
		})
		require.NoError(t, err)
	}
	return user
}

func (f *fixture) createService(t *testing.T, pricePer1k int64) *models.Service {
	t.Helper()
	svc := &models.Service{
		Name:        "Instagram Followers",
		Platform:    "instagram",
		PricePer1k:  decimal.NewFromInt(pricePer1k),
		MinQuantity: 100,
		MaxQuantity: 100000,
		Active:      true,
	}
	require.NoError(t, f.DB.Create(svc).Error)
	return svc
}

func (f *fixture) createBankAccount(t *testing.T) *models.BankAccount {
	t.Helper()
	acct := &models.BankAccount{BankName: "Test Bank", AccountName: "SMM Store", AccountNumber: "0123456789", Active: true}
	require.NoError(t, f.DB.Create(acct).Error)
	return acct
}

func (f *fixture) balance(t *testing.T, userID uint) decimal.Decimal {
	t.Helper()
	bal, err := f.Wallets.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return bal
}

func (f *fixture) reload(t *testing.T, orderID uint) *models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, f.DB.First(&order, orderID).Error)
	return &order
}

func (f *fixture) refundCount(t *testing.T, orderID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.DB.Model(&models.WalletTransaction{}).
		Where("order_id = ? AND transaction_type = ?", orderID, models.TransactionRefund).
		Count(&n).Error)
	return n
}

func (f *fixture) assertConsistent(t *testing.T, userID uint) {
	t.Helper()
	res, err := f.Ledger.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	require.Truef(t, res.Consistent, "ledger inconsistent: %+v", res)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
