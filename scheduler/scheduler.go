package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"gridiron_hub/config"
	"gridiron_hub/models"
	"gridiron_hub/storage"
	"gridiron_hub/tasks"
)

// Scheduler wires the cron schedules and the live fallback poller to the
// task queue, and runs the worker pool that drains it. Every ingestion run,
// scheduled or manual, flows through the queue so results are durable and
// concurrent runs of the same job cannot pile up.
type Scheduler struct {
	cfg    *config.Config
	queue  *storage.TaskQueue
	runner *tasks.Runner
	cron   *cron.Cron
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(cfg *config.Config, queue *storage.TaskQueue, runner *tasks.Runner) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		queue:  queue,
		runner: runner,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	entries := []struct {
		spec string
		task models.TaskType
	}{
		{s.cfg.Scheduler.RosterCron, models.TaskUpdateRoster},
		{s.cfg.Scheduler.GamesCron, models.TaskUpdateGames},
		{s.cfg.Scheduler.PostgameCron, models.TaskUpdatePostgame},
	}
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		task := e.task
		if _, err := s.cron.AddFunc(e.spec, func() { s.enqueueIfIdle(task) }); err != nil {
			return fmt.Errorf("invalid cron expression for %s: %w", task, err)
		}
		log.Printf("Scheduled %s: %s", e.task, e.spec)
	}
	s.cron.Start()

	// The live job reschedules itself at the short interval while a game is
	// in progress. The fallback ticker only seeds it when nothing is queued.
	if s.cfg.Scheduler.LiveFallback > 0 {
		s.wg.Add(1)
		go s.pollLive(ctx)
	}

	workers := s.cfg.Scheduler.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	log.Printf("Scheduler started with %d queue workers", workers)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	close(s.stopCh)
	s.wg.Wait()
}

// TriggerNow enqueues a task for immediate execution and returns its id.
func (s *Scheduler) TriggerNow(task models.TaskType, params models.TaskParams) (string, error) {
	return s.queue.Enqueue(task, params, 0)
}

// TaskStatus returns the stored task, including its result once completed.
func (s *Scheduler) TaskStatus(id string) (*models.Task, error) {
	return s.queue.Get(id)
}

// enqueueIfIdle enqueues a scheduled task unless one of the same type is
// already pending or running.
func (s *Scheduler) enqueueIfIdle(task models.TaskType) {
	busy, err := s.queue.HasPending(task)
	if err != nil {
		log.Printf("Error checking queue for %s: %v", task, err)
		return
	}
	if busy {
		log.Printf("Skipping %s: already queued", task)
		return
	}
	if _, err := s.queue.Enqueue(task, models.TaskParams{}, 0); err != nil {
		log.Printf("Error enqueueing %s: %v", task, err)
	}
}

func (s *Scheduler) pollLive(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Scheduler.LiveFallback)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.enqueueIfIdle(models.TaskUpdateLive)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drainOne(ctx, id)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) drainOne(ctx context.Context, workerID int) {
	task, err := s.queue.ClaimNext(time.Now())
	if err != nil {
		log.Printf("Worker %d: claim error: %v", workerID, err)
		return
	}
	if task == nil {
		return
	}

	log.Printf("Worker %d: running %s (%s)", workerID, task.Task, task.ID)
	result := s.runner.Execute(ctx, task)

	if err := s.queue.Complete(task.ID, result.ToJSON()); err != nil {
		log.Printf("Worker %d: complete %s: %v", workerID, task.ID, err)
	}
}
