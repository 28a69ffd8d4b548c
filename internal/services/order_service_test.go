package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smm-wallet/internal/models"
	"smm-wallet/internal/tasks"
)

func customer(id uint) Actor {
	return Actor{ID: id, Role: models.RoleUser}
}

func (f *fixture) placeBankOrder(t *testing.T, userID uint, pricePer1k int64, quantity int) *models.Order {
	t.Helper()
	svc := f.createService(t, pricePer1k)
	bank := f.createBankAccount(t)
	order, err := f.Orders.PlaceOrder(context.Background(), PlaceOrderDTO{
		UserID:        userID,
		ServiceID:     svc.ID,
		Quantity:      quantity,
		Link:          "https://tiktok.com/@ada",
		PaymentMethod: models.PaymentBankTransfer,
		BankAccountID: &bank.ID,
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) confirmed(t *testing.T, userID uint) *models.Order {
	t.Helper()
	order := f.placeBankOrder(t, userID, 2000, 1500)
	_, err := f.Orders.ConfirmPayment(context.Background(), customer(userID), order.ID)
	require.NoError(t, err)
	return f.reload(t, order.ID)
}

func TestPlaceWalletOrderDebitsAtomically(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 10000)

	order := f.placeWalletOrder(t, user.ID, 4000, 1000)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, order.TotalPrice.Equal(d("4000")))
	assert.True(t, f.balance(t, user.ID).Equal(d("6000")))

	var trx models.WalletTransaction
	require.NoError(t, f.DB.Where("reference = ?", models.DebitReference(order.ID)).First(&trx).Error)
	assert.Equal(t, models.TransactionDebit, trx.TransactionType)
	require.NotNil(t, trx.OrderID)
	assert.Equal(t, order.ID, *trx.OrderID)
	f.assertConsistent(t, user.ID)
}

func TestPlaceWalletOrderInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 1000)
	svc := f.createService(t, 4000)

	_, err := f.Orders.PlaceOrder(context.Background(), PlaceOrderDTO{
		UserID: user.ID, ServiceID: svc.ID, Quantity: 1000, PaymentMethod: models.PaymentWallet,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var orders int64
	f.DB.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(0), orders)
	assert.True(t, f.balance(t, user.ID).Equal(d("1000")))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 1000)
	svc := f.createService(t, 1000)
	ctx := context.Background()

	_, err := f.Orders.PlaceOrder(ctx, PlaceOrderDTO{UserID: user.ID, ServiceID: svc.ID, Quantity: 50, PaymentMethod: models.PaymentWallet})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.Orders.PlaceOrder(ctx, PlaceOrderDTO{UserID: user.ID, ServiceID: svc.ID, Quantity: 500, PaymentMethod: "card"})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = f.Orders.PlaceOrder(ctx, PlaceOrderDTO{UserID: user.ID, ServiceID: svc.ID, Quantity: 500, PaymentMethod: models.PaymentBankTransfer})
	assert.ErrorIs(t, err, ErrBankAccountRequired)

	require.NoError(t, f.DB.Model(svc).Update("active", false).Error)
	_, err = f.Orders.PlaceOrder(ctx, PlaceOrderDTO{UserID: user.ID, ServiceID: svc.ID, Quantity: 500, PaymentMethod: models.PaymentWallet})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestTotalPriceUsesPerThousandPricing(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 0)
	order := f.placeBankOrder(t, user.ID, 1250, 333)
	assert.True(t, order.TotalPrice.Equal(d("416.25")), order.TotalPrice.String())
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 0)
	order := f.placeBankOrder(t, user.ID, 2000, 1500)

	f.Queue.On("Enqueue", tasks.TypeOrderAutoConfirm).Return(&asynq.TaskInfo{}, nil).Once()
	f.Notifier.On("Send", EmailPaymentConfirmation, "admin@example.com").Return(nil).Once()

	res, err := f.Orders.ConfirmPayment(context.Background(), customer(user.ID), order.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyConfirmed)
	assert.Equal(t, models.StatusAwaitingConfirmation, res.Order.Status)
	require.NotNil(t, res.Order.ConfirmationDeadline)
	assert.True(t, res.Order.ConfirmationDeadline.Equal(testNow.Add(60*time.Second)))

	f.advance(10 * time.Second)
	res, err = f.Orders.ConfirmPayment(context.Background(), customer(user.ID), order.ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyConfirmed)

	f.Queue.AssertNumberOfCalls(t, "Enqueue", 1)
	f.Notifier.AssertNumberOfCalls(t, "Send", 1)
	f.Queue.AssertExpectations(t)
	f.Notifier.AssertExpectations(t)

	reloaded := f.reload(t, order.ID)
	assert.True(t, reloaded.ConfirmationDeadline.Equal(testNow.Add(60*time.Second)))
}

func TestConfirmPaymentSurvivesQueueOutage(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 0)
	order := f.placeBankOrder(t, user.ID, 2000, 1500)

	f.Queue.On("Enqueue", mock.Anything).Return(nil, errors.New("redis down"))
	f.Notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	res, err := f.Orders.ConfirmPayment(context.Background(), customer(user.ID), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingConfirmation, res.Order.Status)
}

func TestConfirmPaymentRejectsOtherUsersAndWrongStatus(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	owner := f.createUser(t, "ada@example.com", 10000)
	other := f.createUser(t, "bob@example.com", 0)

	order := f.placeBankOrder(t, owner.ID, 2000, 1500)
	_, err := f.Orders.ConfirmPayment(context.Background(), customer(other.ID), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	paid := f.placeWalletOrder(t, owner.ID, 1000, 1000)
	_, err = f.Orders.ConfirmPayment(context.Background(), customer(owner.ID), paid.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.Orders.ConfirmPayment(context.Background(), customer(owner.ID), 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAutoUpdateWaitsForServerDeadline(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	order := f.confirmed(t, user.ID)

	dto := AutoUpdateDTO{Actor: customer(user.ID), OrderID: order.ID, Status: models.StatusPending}

	f.advance(30 * time.Second)
	_, err := f.Orders.AutoUpdate(context.Background(), dto)
	assert.ErrorIs(t, err, ErrConfirmationPending)
	assert.Equal(t, models.StatusAwaitingConfirmation, f.reload(t, order.ID).Status)

	f.advance(31 * time.Second)
	res, err := f.Orders.AutoUpdate(context.Background(), dto)
	require.NoError(t, err)
	assert.True(t, res.Promoted)
	assert.Equal(t, tasks.ReasonAutoConfirmationTimeout, res.Reason)

	res, err = f.Orders.AutoUpdate(context.Background(), dto)
	require.NoError(t, err)
	assert.False(t, res.Promoted)
	assert.Equal(t, models.StatusPending, res.Status)

	reloaded := f.reload(t, order.ID)
	assert.Equal(t, models.StatusPending, reloaded.Status)
	require.NotNil(t, reloaded.AutoConfirmedAt)
	assert.Nil(t, reloaded.PaymentVerifiedAt)

	dto.Status = models.StatusCompleted
	_, err = f.Orders.AutoUpdate(context.Background(), dto)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAutoPromotionHappensExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	order := f.confirmed(t, user.ID)
	f.advance(2 * time.Minute)

	triggers := []string{TriggerScheduledTask, TriggerSweep, TriggerStatusRead, TriggerClient, TriggerSweep, TriggerScheduledTask}
	var wg sync.WaitGroup
	var mu sync.Mutex
	promoted := 0
	for _, trigger := range triggers {
		wg.Add(1)
		go func(trigger string) {
			defer wg.Done()
			ok, err := f.Orders.AutoPromote(context.Background(), order.ID, trigger)
			if err == nil && ok {
				mu.Lock()
				promoted++
				mu.Unlock()
			}
		}(trigger)
	}
	wg.Wait()

	assert.Equal(t, 1, promoted)
	var audits int64
	f.DB.Model(&models.AuditLog{}).Where("action = ? AND entity_id = ?", ActionOrderAutoPromoted, idString(order.ID)).Count(&audits)
	assert.Equal(t, int64(1), audits)
}

func TestGetStatusPromotesLazily(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	order := f.confirmed(t, user.ID)

	view, err := f.Orders.GetStatus(context.Background(), customer(user.ID), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingConfirmation, view.Status)

	f.advance(time.Minute)
	view, err = f.Orders.GetStatus(context.Background(), customer(user.ID), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.NotNil(t, view.AutoConfirmedAt)

	other := f.createUser(t, "bob@example.com", 0)
	_, err = f.Orders.GetStatus(context.Background(), customer(other.ID), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.Orders.GetStatus(context.Background(), Actor{ID: other.ID, Role: models.RoleSubAdmin}, order.ID)
	assert.NoError(t, err)
}

func TestSweepPromotesOnlyExpiredOrders(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)

	early := f.confirmed(t, user.ID)
	f.advance(40 * time.Second)
	late := f.confirmed(t, user.ID)
	f.advance(25 * time.Second)

	n, err := f.Confirmation.PromoteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.StatusPending, f.reload(t, early.ID).Status)
	assert.Equal(t, models.StatusAwaitingConfirmation, f.reload(t, late.ID).Status)

	n, err = f.Confirmation.PromoteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSchedulerRunsSweep(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	order := f.confirmed(t, user.ID)
	f.advance(2 * time.Minute)

	c, err := f.Confirmation.StartScheduler("@every 1s")
	require.NoError(t, err)
	t.Cleanup(func() { <-c.Stop().Done() })

	assert.Eventually(t, func() bool {
		var current models.Order
		return f.DB.First(&current, order.ID).Error == nil && current.Status == models.StatusPending
	}, 5*time.Second, 100*time.Millisecond)
	assert.NotNil(t, f.reload(t, order.ID).AutoConfirmedAt)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	f := newFixture(t)

	_, err := f.Confirmation.StartScheduler("every now and then")
	assert.Error(t, err)
}

func TestAdminFailRefundsWalletOrder(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 10000)
	order := f.placeWalletOrder(t, user.ID, 4000, 1000)
	require.True(t, f.balance(t, user.ID).Equal(d("6000")))

	res, err := f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, Status: models.StatusFailed,
	})
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)
	require.NotNil(t, res.Refund)
	assert.True(t, res.Refund.Refunded)
	assert.True(t, f.balance(t, user.ID).Equal(d("10000")))

	// Same status again is a no-op; failed is terminal.
	res, err = f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, Status: models.StatusFailed,
	})
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)
	assert.Nil(t, res.Refund)

	_, err = f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, Status: models.StatusRefunded,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, int64(1), f.refundCount(t, order.ID))
	assert.True(t, f.balance(t, user.ID).Equal(d("10000")))
	f.assertConsistent(t, user.ID)
}

func TestAdminRefundAfterCompletion(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 10000)
	order := f.placeWalletOrder(t, user.ID, 4000, 1000)
	ctx := context.Background()

	for _, status := range []models.OrderStatus{models.StatusCompleted, models.StatusAwaitingRefund, models.StatusRefunded} {
		_, err := f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: status})
		require.NoError(t, err, status)
	}

	reloaded := f.reload(t, order.ID)
	assert.Equal(t, models.StatusRefunded, reloaded.Status)
	assert.NotNil(t, reloaded.CompletedAt)
	assert.True(t, reloaded.TotalPrice.Equal(order.TotalPrice))
	assert.True(t, f.balance(t, user.ID).Equal(d("10000")))
	f.assertConsistent(t, user.ID)
}

func TestAdminInvalidTransitionLeavesOrderUntouched(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 10000)
	order := f.placeWalletOrder(t, user.ID, 4000, 1000)

	_, err := f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, Status: models.StatusRefunded,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, Status: "shipped",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	assert.Equal(t, models.StatusPending, f.reload(t, order.ID).Status)
	assert.Equal(t, int64(0), f.refundCount(t, order.ID))
}

func TestAdminNotesOnlyUpdate(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 10000)
	order := f.placeWalletOrder(t, user.ID, 4000, 1000)

	notes := "delivery started"
	res, err := f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, AdminNotes: &notes,
	})
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)

	reloaded := f.reload(t, order.ID)
	assert.Equal(t, notes, reloaded.AdminNotes)
	assert.Equal(t, models.StatusPending, reloaded.Status)
}

func TestTerminalOrderOnlyTakesNotes(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 10000)
	order := f.placeWalletOrder(t, user.ID, 4000, 1000)
	ctx := context.Background()

	_, err := f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: models.StatusFailed})
	require.NoError(t, err)

	for _, to := range []models.OrderStatus{models.StatusCompleted, models.StatusPending, models.StatusRefunded} {
		_, err = f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: to})
		assert.ErrorIs(t, err, ErrInvalidTransition, "failed -> %s", to)
	}

	notes := "customer informed"
	res, err := f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, AdminNotes: &notes})
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)

	reloaded := f.reload(t, order.ID)
	assert.Equal(t, models.StatusFailed, reloaded.Status)
	assert.Equal(t, notes, reloaded.AdminNotes)
	assert.Equal(t, int64(1), f.refundCount(t, order.ID))
	assert.True(t, f.balance(t, user.ID).Equal(d("10000")))
}

func TestOrderCodeCollisionDrawsFreshCode(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 10000)
	require.NoError(t, f.DB.Create(&models.Order{
		Code: "TAKEN01", UserID: user.ID, Quantity: 1,
		Status: models.StatusCancelled, PaymentMethod: models.PaymentBankTransfer,
	}).Error)

	codes := []string{"TAKEN01", "TAKEN01", "FRESH01"}
	f.Orders.NewCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	order := f.placeWalletOrder(t, user.ID, 4000, 1000)
	assert.Equal(t, "FRESH01", order.Code)
	assert.Empty(t, codes)
	assert.True(t, f.balance(t, user.ID).Equal(d("6000")))
	f.assertConsistent(t, user.ID)
}

func TestOrderCodeExhaustionFailsCleanly(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	bank := f.createBankAccount(t)
	require.NoError(t, f.DB.Create(&models.Order{
		Code: "TAKEN01", UserID: user.ID, Quantity: 1,
		Status: models.StatusCancelled, PaymentMethod: models.PaymentBankTransfer,
	}).Error)

	calls := 0
	f.Orders.NewCode = func() string {
		calls++
		return "TAKEN01"
	}

	_, err := f.Orders.FundWallet(context.Background(), FundWalletDTO{UserID: user.ID, Amount: d("5000"), BankAccountID: &bank.ID})
	assert.ErrorIs(t, err, ErrOrderCodeExhausted)
	assert.Equal(t, orderCodeAttempts, calls)

	var orders int64
	f.DB.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(1), orders)
}

func TestBankTransferFailBeforeVerificationIsNotRefunded(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	order := f.confirmed(t, user.ID)

	res, err := f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, Status: models.StatusFailed,
	})
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)
	assert.False(t, res.Refund.Refunded)
	assert.Equal(t, "unpaid", res.Refund.SkipReason)
	assert.True(t, f.balance(t, user.ID).IsZero())
}

func TestVerifiedBankTransferFailureIsRefunded(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	order := f.confirmed(t, user.ID)
	ctx := context.Background()

	_, err := f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: models.StatusPending})
	require.NoError(t, err)
	assert.NotNil(t, f.reload(t, order.ID).PaymentVerifiedAt)

	res, err := f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: models.StatusFailed})
	require.NoError(t, err)
	assert.True(t, res.Refund.Refunded)
	assert.True(t, f.balance(t, user.ID).Equal(order.TotalPrice))
	f.assertConsistent(t, user.ID)
}

func TestWalletFundingLifecycle(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	bank := f.createBankAccount(t)
	ctx := context.Background()

	_, err := f.Orders.FundWallet(ctx, FundWalletDTO{UserID: user.ID, Amount: d("0"), BankAccountID: &bank.ID})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	order, err := f.Orders.FundWallet(ctx, FundWalletDTO{UserID: user.ID, Amount: d("25000"), BankAccountID: &bank.ID})
	require.NoError(t, err)
	assert.True(t, order.IsWalletFunding())
	assert.Equal(t, 1, order.Quantity)
	assert.True(t, order.TotalPrice.Equal(d("25000")))

	_, err = f.Orders.ConfirmPayment(ctx, customer(user.ID), order.ID)
	require.NoError(t, err)

	_, err = f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: models.StatusPending})
	require.NoError(t, err)
	res, err := f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: models.StatusCompleted})
	require.NoError(t, err)
	require.NotNil(t, res.Credit)
	assert.Equal(t, models.FundingReference(order.ID), *res.Credit.Reference)
	assert.True(t, f.balance(t, user.ID).Equal(d("25000")))

	// Reversing a credited funding order does not credit the wallet again.
	_, err = f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: models.StatusAwaitingRefund})
	require.NoError(t, err)
	res, err = f.Orders.AdminUpdateStatus(ctx, AdminUpdateDTO{OrderID: order.ID, AdminID: 7, Status: models.StatusRefunded})
	require.NoError(t, err)
	assert.False(t, res.Refund.Refunded)
	assert.Equal(t, "funding_already_credited", res.Refund.SkipReason)
	assert.True(t, f.balance(t, user.ID).Equal(d("25000")))
	f.assertConsistent(t, user.ID)
}

func TestZeroAmountFundingOrderFailsWithoutRefund(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 0)
	now := testNow
	order := &models.Order{
		Code: "FUND000", UserID: user.ID, Quantity: 1,
		Status: models.StatusPending, PaymentMethod: models.PaymentBankTransfer, PaymentVerifiedAt: &now,
	}
	require.NoError(t, f.DB.Create(order).Error)

	res, err := f.Orders.AdminUpdateStatus(context.Background(), AdminUpdateDTO{
		OrderID: order.ID, AdminID: 7, Status: models.StatusFailed,
	})
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)
	assert.False(t, res.Refund.Refunded)
	assert.Equal(t, RefundZero, res.Refund.Category)
	assert.Equal(t, models.StatusFailed, f.reload(t, order.ID).Status)
	assert.Equal(t, int64(0), f.refundCount(t, order.ID))
}

func TestDeductForOrderPaysBankOrderFromWallet(t *testing.T) {
	f := newFixture(t)
	f.allowSideEffects()
	user := f.createUser(t, "ada@example.com", 5000)
	order := f.placeBankOrder(t, user.ID, 2000, 1500)
	ctx := context.Background()

	_, _, err := f.Orders.DeductForOrder(ctx, DeductDTO{UserID: user.ID, OrderID: order.ID, Amount: d("2999")})
	assert.ErrorIs(t, err, ErrAmountMismatch)

	paid, trx, err := f.Orders.DeductForOrder(ctx, DeductDTO{UserID: user.ID, OrderID: order.ID, Amount: d("3000")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, paid.Status)
	assert.Equal(t, models.PaymentWallet, paid.PaymentMethod)
	assert.True(t, trx.BalanceAfter.Equal(d("2000")))

	_, _, err = f.Orders.DeductForOrder(ctx, DeductDTO{UserID: user.ID, OrderID: order.ID, Amount: d("3000")})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, f.balance(t, user.ID).Equal(d("2000")))
	f.assertConsistent(t, user.ID)
}

func TestDeductForOrderInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 100)
	order := f.placeBankOrder(t, user.ID, 2000, 1500)

	_, _, err := f.Orders.DeductForOrder(context.Background(), DeductDTO{UserID: user.ID, OrderID: order.ID, Amount: d("3000")})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, models.StatusAwaitingPayment, f.reload(t, order.ID).Status)
	assert.True(t, f.balance(t, user.ID).Equal(d("100")))
}

func TestListOrdersPaginates(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ada@example.com", 0)
	other := f.createUser(t, "bob@example.com", 0)
	for i := 0; i < 3; i++ {
		f.placeBankOrder(t, user.ID, 1000, 1000)
	}
	f.placeBankOrder(t, other.ID, 1000, 1000)

	res, err := f.Orders.ListOrders(context.Background(), ListOrdersDTO{UserID: user.ID, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, 2, res.LastPage)
	assert.Len(t, res.Data.([]models.Order), 2)

	all, err := f.Orders.ListOrders(context.Background(), ListOrdersDTO{Status: models.StatusAwaitingPayment})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Count)
}
