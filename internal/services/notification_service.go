package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smm-wallet/internal/config"
	"smm-wallet/internal/tasks"
	"smm-wallet/pkg/common"
)

// Email template kinds. Template content lives with the mail provider.
const (
	EmailPaymentConfirmation = "payment_confirmation"
	EmailOrderCompleted      = "order_completed"
	EmailOrderFailed         = "order_failed"
	EmailOrderRefunded       = "order_refunded"
	EmailWalletFunded        = "wallet_funded"
)

// Notifier sends a templated email. Callers log failures and carry on.
type Notifier interface {
	Send(ctx context.Context, kind, recipient string, payload map[string]interface{}) error
}

// QueueNotifier hands emails to the worker through asynq.
type QueueNotifier struct {
	Client tasks.Enqueuer
}

func NewQueueNotifier(client tasks.Enqueuer) *QueueNotifier {
	return &QueueNotifier{Client: client}
}

func (n *QueueNotifier) Send(ctx context.Context, kind, recipient string, payload map[string]interface{}) error {
	task, err := tasks.NewEmailDeliveryTask(tasks.EmailDeliveryPayload{
		Kind:      kind,
		Recipient: recipient,
		Payload:   payload,
	})
	if err != nil {
		return err
	}
	if _, err := n.Client.Enqueue(task); err != nil {
		return fmt.Errorf("enqueue %s email: %w", kind, err)
	}
	return nil
}

// MailAPINotifier posts emails to an HTTP mail provider.
type MailAPINotifier struct {
	Config config.MailConfig
}

func NewMailAPINotifier(cfg config.MailConfig) *MailAPINotifier {
	return &MailAPINotifier{Config: cfg}
}

func (n *MailAPINotifier) Send(ctx context.Context, kind, recipient string, payload map[string]interface{}) error {
	body := map[string]interface{}{
		"from":     n.Config.Sender,
		"to":       recipient,
		"template": kind,
		"data":     payload,
	}
	headers := map[string]string{"Authorization": "Bearer " + n.Config.APIKey}
	if _, err := common.PostJSON(ctx, n.Config.APIURL, body, headers); err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	return nil
}

// LogNotifier only logs; used when no mail provider is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Send(ctx context.Context, kind, recipient string, payload map[string]interface{}) error {
	n.Logger.Info("Email not sent, no mail provider configured",
		zap.String("kind", kind),
		zap.String("recipient", recipient),
		zap.Any("payload", payload))
	return nil
}

// NewNotifier picks the mail API when configured, otherwise logs.
func NewNotifier(cfg config.MailConfig, logger *zap.Logger) Notifier {
	if cfg.APIURL == "" {
		return &LogNotifier{Logger: logger}
	}
	return NewMailAPINotifier(cfg)
}
