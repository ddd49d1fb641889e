package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/internal/auth"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeSendCode      = "notification:send_code"
	notificationQueue = "notifications"
)

func RedisOpt(c config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
}

// NewSendCodeTask wraps a notification into a task. Delivery is retried by
// the worker, a code that already expired is dropped.
func NewSendCodeTask(n auth.Notification) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeSendCode, payload,
		asynq.Queue(notificationQueue),
		asynq.MaxRetry(10),
		asynq.Timeout(30*time.Second),
		asynq.Deadline(n.ExpiresAt),
	), nil
}

// QueueNotifier hands notifications to the worker through redis
type QueueNotifier struct {
	client *asynq.Client
}

func NewQueueNotifier(c config.RedisConfig) *QueueNotifier {
	return &QueueNotifier{client: asynq.NewClient(RedisOpt(c))}
}

func (q *QueueNotifier) Notify(ctx context.Context, n auth.Notification) error {
	task, err := NewSendCodeTask(n)
	if err != nil {
		return fmt.Errorf("failed to build task, %w", err)
	}

	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task, %w", err)
	}

	zap.L().Debug("Notification queued", zap.String("task_id", info.ID), zap.String("channel", string(n.Channel)))

	return nil
}

func (q *QueueNotifier) Close() error {
	return q.client.Close()
}

// HandleSendCode returns the worker side of NewSendCodeTask
func HandleSendCode(d auth.Notifier) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var n auth.Notification
		if err := json.Unmarshal(t.Payload(), &n); err != nil {
			return fmt.Errorf("malformed payload, %v, %w", err, asynq.SkipRetry)
		}

		if !n.ExpiresAt.IsZero() && time.Now().After(n.ExpiresAt) {
			zap.L().Debug("Dropping notification of an expired code", zap.String("channel", string(n.Channel)))
			return nil
		}

		if err := d.Notify(ctx, n); err != nil {
			zap.L().Error("Failed to deliver notification", zap.Error(err), zap.String("channel", string(n.Channel)))
			return err
		}

		return nil
	}
}

// NewWorker builds the asynq server and its handlers. Run it with
// srv.Run(mux).
func NewWorker(c config.RedisConfig, d auth.Notifier, concurrency int) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(RedisOpt(c), asynq.Config{
		Concurrency: max(concurrency, 1),
		Queues: map[string]int{
			notificationQueue: 1,
		},
		Logger: zap.S(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSendCode, HandleSendCode(d))

	return srv, mux
}
