// Package tasks defines the asynq task types shared by the API (producer)
// and cmd/worker (consumer).
package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypeEmailDelivery    = "email:deliver"
	TypeOrderAutoConfirm = "order:auto-confirm"
)

// ReasonAutoConfirmationTimeout labels promotions done without admin action.
const ReasonAutoConfirmationTimeout = "auto_confirmation_timeout"

type EmailDeliveryPayload struct {
	Kind      string                 `json:"kind"`
	Recipient string                 `json:"recipient"`
	Payload   map[string]interface{} `json:"payload"`
}

type OrderAutoConfirmPayload struct {
	OrderID uint   `json:"orderId"`
	Reason  string `json:"reason"`
}

// Enqueuer is the part of *asynq.Client the services use.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewEmailDeliveryTask(payload EmailDeliveryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailDelivery, data, asynq.MaxRetry(0), asynq.Queue("low")), nil
}

// NewOrderAutoConfirmTask schedules the timeout promotion for an order. The
// task id is derived from the order so a second enqueue is rejected by asynq.
func NewOrderAutoConfirmTask(orderID uint, at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(OrderAutoConfirmPayload{OrderID: orderID, Reason: ReasonAutoConfirmationTimeout})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOrderAutoConfirm, data,
		asynq.TaskID(AutoConfirmTaskID(orderID)),
		asynq.ProcessAt(at),
		asynq.Queue("critical"),
	), nil
}

func AutoConfirmTaskID(orderID uint) string {
	return fmt.Sprintf("auto-confirm:%d", orderID)
}
