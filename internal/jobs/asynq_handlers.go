package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"rescuetrack/internal/config"
	"rescuetrack/internal/metrics"
	"rescuetrack/internal/services"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task type definitions
const (
	TypeInviteEmail = "invite:email"
)

const inviteEmailMaxRetry = 5

// RedisOpt builds the asynq connection from the shared redis settings.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// NewInviteEmailTask creates a new invite e-mail task
func NewInviteEmailTask(n services.InviteNotification) (*asynq.Task, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInviteEmail, data, asynq.MaxRetry(inviteEmailMaxRetry)), nil
}

// InviteEnqueuer hands invite e-mails to the asynq worker.
type InviteEnqueuer struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewInviteEnqueuer(client *asynq.Client, logger *zap.Logger) *InviteEnqueuer {
	return &InviteEnqueuer{client: client, logger: logger}
}

func (e *InviteEnqueuer) NotifyInvite(ctx context.Context, n services.InviteNotification) error {
	task, err := NewInviteEmailTask(n)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue invite email: %w", err)
	}
	e.logger.Debug("invite email enqueued", zap.String("task_id", info.ID), zap.String("invite_id", n.InviteID))
	return nil
}

// EmailHandlers processes e-mail tasks
type EmailHandlers struct {
	sender  services.EmailSender
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewEmailHandlers(sender services.EmailSender, m *metrics.Metrics, logger *zap.Logger) *EmailHandlers {
	return &EmailHandlers{sender: sender, metrics: m, logger: logger}
}

// Register mounts the task handlers on mux.
func (h *EmailHandlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeInviteEmail, h.HandleInviteEmail)
}

// HandleInviteEmail renders and sends one invitation. Malformed payloads are not retried.
func (h *EmailHandlers) HandleInviteEmail(ctx context.Context, t *asynq.Task) error {
	var n services.InviteNotification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		h.metrics.InvitesSent.WithLabelValues("invalid").Inc()
		return fmt.Errorf("failed to unmarshal invite payload: %v: %w", err, asynq.SkipRetry)
	}

	msg, err := services.RenderInviteEmail(n)
	if err != nil {
		h.metrics.InvitesSent.WithLabelValues("invalid").Inc()
		return fmt.Errorf("render invite email: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		h.metrics.InvitesSent.WithLabelValues("failed").Inc()
		h.logger.Warn("invite email failed", zap.String("invite_id", n.InviteID), zap.Error(err))
		return err
	}

	h.metrics.InvitesSent.WithLabelValues("sent").Inc()
	h.logger.Info("invite email sent", zap.String("invite_id", n.InviteID))
	return nil
}

// NewWorker creates the asynq server that runs the e-mail tasks.
func NewWorker(cfg config.Config, logger *zap.Logger) *asynq.Server {
	return asynq.NewServer(RedisOpt(cfg.Redis), asynq.Config{
		Concurrency: cfg.Jobs.Concurrency,
		Logger:      logger.Sugar().Named("asynq"),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
}
