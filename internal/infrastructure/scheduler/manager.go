// Package scheduler runs the per-order status polls and the periodic
// recovery sweep on one gocron v2 scheduler.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/orris-inc/zlpay/internal/shared/biztime"
	"github.com/orris-inc/zlpay/internal/shared/goroutine"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

// BatchJob processes one batch per run and reports how many items it touched.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// OrderTask is the work a recurring per-order job performs on each tick.
type OrderTask interface {
	Execute(ctx context.Context, orderID uint) error
}

const orderTaskTimeout = 2 * time.Minute

type jobKey struct {
	taskKey string
	orderID uint
}

// SchedulerManager owns the gocron scheduler. Per-order jobs are tracked by
// (task key, order id) so at most one job exists for each pair.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	mu       sync.Mutex
	handlers map[string]OrderTask
	jobs     map[jobKey]uuid.UUID

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
		handlers:  make(map[string]OrderTask),
		jobs:      make(map[jobKey]uuid.UUID),
	}, nil
}

// RegisterOrderTask binds the handler run by jobs scheduled under taskKey.
func (m *SchedulerManager) RegisterOrderTask(taskKey string, task OrderTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[taskKey] = task
}

// ScheduleRecurring runs the task for orderID every interval, first run one
// interval from now. Scheduling an existing pair is a no-op.
func (m *SchedulerManager) ScheduleRecurring(_ context.Context, taskKey string, orderID uint, interval time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.handlers[taskKey]; !ok {
		return fmt.Errorf("no task registered for %q", taskKey)
	}

	key := jobKey{taskKey: taskKey, orderID: orderID}
	if _, ok := m.jobs[key]; ok {
		return nil
	}

	job, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { m.runOrderTask(key) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags(taskKey),
		gocron.WithName(fmt.Sprintf("%s:%d", taskKey, orderID)),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s for order %d: %w", taskKey, orderID, err)
	}

	m.jobs[key] = job.ID()
	m.logger.Infow("order task scheduled",
		"task", taskKey,
		"order_id", orderID,
		"interval", interval,
	)
	return nil
}

// Cancel removes the job for the pair. Unknown pairs are ignored.
func (m *SchedulerManager) Cancel(taskKey string, orderID uint) error {
	key := jobKey{taskKey: taskKey, orderID: orderID}

	m.mu.Lock()
	id, ok := m.jobs[key]
	delete(m.jobs, key)
	m.mu.Unlock()

	if !ok {
		return nil
	}

	// Cancel is usually called from inside the job being removed.
	goroutine.SafeGo(m.logger, "scheduler-remove-job", func() {
		if err := m.scheduler.RemoveJob(id); err != nil {
			m.logger.Warnw("failed to remove job", "task", taskKey, "order_id", orderID, "error", err)
		}
	})

	m.logger.Infow("order task cancelled", "task", taskKey, "order_id", orderID)
	return nil
}

func (m *SchedulerManager) IsScheduled(taskKey string, orderID uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[jobKey{taskKey: taskKey, orderID: orderID}]
	return ok
}

func (m *SchedulerManager) runOrderTask(key jobKey) {
	m.mu.Lock()
	_, scheduled := m.jobs[key]
	task := m.handlers[key.taskKey]
	m.mu.Unlock()

	// cancelled between the tick firing and now
	if !scheduled || task == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), orderTaskTimeout)
	defer cancel()

	startTime := biztime.NowUTC()
	if err := task.Execute(ctx, key.orderID); err != nil {
		m.logger.Errorw("order task failed",
			"task", key.taskKey,
			"order_id", key.orderID,
			"error", err,
			"duration", time.Since(startTime),
		)
	}
}

// RegisterRecoveryJob re-arms polls for orders that lost their job, for
// example after a restart. It runs once at start and then every interval.
func (m *SchedulerManager) RegisterRecoveryJob(job BatchJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runBatch(ctx, "payment-poll-recovery", job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("payment", "recovery"),
		gocron.WithName("payment-poll-recovery"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered recovery job", "interval", interval)
	return nil
}

func (m *SchedulerManager) runBatch(ctx context.Context, name string, job BatchJob) {
	startTime := biztime.NowUTC()

	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("batch job failed",
			"job", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}
	if count > 0 {
		m.logger.Infow("batch job processed",
			"job", name,
			"count", count,
			"duration", time.Since(startTime),
		)
	}
}

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "jobs", len(m.scheduler.Jobs()))
}

// Shutdown stops the scheduler and waits for running jobs.
func (m *SchedulerManager) Shutdown() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Errorw("failed to shutdown scheduler", "error", err)
		return err
	}

	m.started = false
	m.logger.Infow("scheduler manager stopped")
	return nil
}
