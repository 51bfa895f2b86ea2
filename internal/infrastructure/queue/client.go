package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"researchequals-backend/internal/shared"
)

// Enqueuer schedules deferred publication tasks on the worker queues.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(redisAddr, redisPassword string, redisDB int) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

// EnqueueIndexResync queues a retryable index write for one module.
// The task id is derived from the module id so duplicate enqueues
// collapse into one pending task.
func (e *Enqueuer) EnqueueIndexResync(moduleID int64) error {
	payload, err := json.Marshal(shared.IndexResyncPayload{ModuleID: moduleID})
	if err != nil {
		return fmt.Errorf("failed to marshal resync payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeIndexResync, payload)
	_, err = e.client.Enqueue(task,
		asynq.Queue(shared.QueueLow),
		asynq.TaskID(fmt.Sprintf("index_resync:%d", moduleID)),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil && err != asynq.ErrTaskIDConflict {
		return fmt.Errorf("failed to enqueue index resync: %w", err)
	}
	return nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
