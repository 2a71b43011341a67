package scheduler

import (
	"context"
	"fmt"
	"time"

	"requesthub_backend/internal/events"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/platform/config"
	"requesthub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes follow-up reminder tasks and republishes them as domain
// events so the notification module can deliver them.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

// handleFollowUpReminder fires one queued reminder. Reminders for requests
// that moved on (reassigned follow-up, terminal status, no assignee) are
// dropped without error so asynq does not retry them.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		return err
	}

	req, err := w.repo.GetByID(ctx, requestID)
	if err != nil {
		w.log.Warn("reminder dropped: request not loadable", "requestId", payload.RequestID, "error", err)
		return nil
	}
	if req.ArchivedAt != nil || req.AssignedAgentID == nil {
		return nil
	}

	agent, err := w.repo.GetAgentByID(ctx, *req.AssignedAgentID)
	if err != nil {
		w.log.Warn("reminder dropped: assignee not loadable", "requestId", payload.RequestID, "error", err)
		return nil
	}

	dueAt, err := time.Parse(time.RFC3339, payload.DueAt)
	if err != nil {
		dueAt = time.Now()
	}

	return w.bus.PublishSync(ctx, events.FollowUpReminderDue{
		BaseEvent:     events.NewBaseEvent(),
		RequestID:     requestID,
		FollowUpType:  payload.FollowUpType,
		DueAt:         dueAt,
		AssigneeName:  agent.Name,
		AssigneeEmail: agent.Email,
	})
}

// Run starts the worker and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
