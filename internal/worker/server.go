package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"smm-wallet/internal/services"
	"smm-wallet/internal/tasks"
)

// Promoter is the part of OrderService the worker drives.
type Promoter interface {
	AutoPromote(ctx context.Context, orderID uint, trigger string) (bool, error)
}

type Worker struct {
	Orders Promoter
	Mailer services.Notifier
	Logger *zap.Logger
}

func NewWorker(orders Promoter, mailer services.Notifier, logger *zap.Logger) *Worker {
	return &Worker{Orders: orders, Mailer: mailer, Logger: logger}
}

func (w *Worker) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var p tasks.EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.Mailer.Send(ctx, p.Kind, p.Recipient, p.Payload); err != nil {
		// Email delivery is best effort and never retried.
		w.Logger.Error("Email delivery failed",
			zap.String("kind", p.Kind),
			zap.String("recipient", p.Recipient),
			zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return nil
}

func (w *Worker) HandleOrderAutoConfirm(ctx context.Context, t *asynq.Task) error {
	var p tasks.OrderAutoConfirmPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if p.OrderID == 0 {
		return fmt.Errorf("missing order id: %w", asynq.SkipRetry)
	}

	promoted, err := w.Orders.AutoPromote(ctx, p.OrderID, services.TriggerScheduledTask)
	if err != nil {
		return err
	}
	if !promoted {
		w.Logger.Debug("Auto-confirm task found nothing to promote", zap.Uint("order_id", p.OrderID))
	}
	return nil
}

// NewServeMux registers the task handlers.
func (w *Worker) NewServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEmailDelivery, w.HandleEmailDelivery)
	mux.HandleFunc(tasks.TypeOrderAutoConfirm, w.HandleOrderAutoConfirm)
	return mux
}

func StartWorker(redisOpt asynq.RedisClientOpt, w *Worker) error {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)
	w.Logger.Info("Starting asynq worker", zap.String("redis", redisOpt.Addr))
	return srv.Run(w.NewServeMux())
}
