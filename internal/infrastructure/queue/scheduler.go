package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"researchequals-backend/internal/shared"
	"researchequals-backend/pkg/logger"
)

// Scheduler registers the periodic publication maintenance jobs.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, redisPassword string, redisDB int) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(
			asynq.RedisClientOpt{
				Addr:     redisAddr,
				Password: redisPassword,
				DB:       redisDB,
			},
			&asynq.SchedulerOpts{
				Location: time.UTC,
			},
		),
	}
}

// RegisterIndexJobs sets up the nightly reconcile sweep that re-pushes
// recently published modules to the search index.
func (s *Scheduler) RegisterIndexJobs() error {
	payload, err := json.Marshal(shared.IndexReconcilePayload{
		WindowHours: 24,
		Limit:       500,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reconcile payload: %w", err)
	}

	entryID, err := s.scheduler.Register(
		"0 3 * * *", // 03:00 UTC daily
		asynq.NewTask(shared.TypeIndexReconcile, payload),
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to register reconcile job: %w", err)
	}

	logger.Info("Registered index reconcile job", map[string]interface{}{
		"entry_id": entryID,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
