package scheduler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// DailySweepHour and DailySweepMinute pick the daily run time (24h clock)
	DailySweepHour   int
	DailySweepMinute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		DailySweepHour:   2, // 2am
		DailySweepMinute: 0,
		CheckInterval:    time.Minute,
	}
}

// ParseDailySchedule extracts the run time from a five-field cron expression.
// Only daily schedules are supported: the minute and hour fields must be
// numeric and the remaining fields must be wildcards, e.g. "0 2 * * *".
func ParseDailySchedule(expr string) (CronTriggerConfig, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return CronTriggerConfig{}, ErrInvalidCronSchedule
	}
	for _, wildcard := range fields[2:] {
		if wildcard != "*" {
			return CronTriggerConfig{}, ErrInvalidCronSchedule
		}
	}
	minute, err := strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return CronTriggerConfig{}, ErrInvalidCronSchedule
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return CronTriggerConfig{}, ErrInvalidCronSchedule
	}
	return CronTriggerConfig{
		DailySweepHour:   hour,
		DailySweepMinute: minute,
		CheckInterval:    time.Minute,
	}, nil
}

// CronTrigger fires the daily maintenance sweeps
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // Track which date we last ran for
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *CronTrigger {
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("daily_hour", c.config.DailySweepHour),
		zap.Int("daily_minute", c.config.DailySweepMinute),
		zap.Duration("check_interval", c.config.CheckInterval),
	)

	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically if it's time to run the daily sweeps
func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger fires the sweeps once per day at the configured time
func (c *CronTrigger) checkAndTrigger() {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	// Skip if we already ran today
	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// Check if it's the right time
	if now.Hour() != c.config.DailySweepHour || now.Minute() != c.config.DailySweepMinute {
		return
	}

	c.mu.Lock()
	c.lastRunDate = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering daily maintenance sweeps")
	if err := c.scheduler.ScheduleDailySweeps(now); err != nil {
		c.logger.Error("Failed to schedule daily sweeps", zap.Error(err))
	}
}

// TriggerManualSweep allows operators to run one sweep outside the schedule
func (c *CronTrigger) TriggerManualSweep(sweepType SweepType, asOf time.Time) error {
	job := NewJob(sweepType, asOf, c.scheduler.config.RetryAttempts)
	return c.scheduler.SubmitJob(job)
}
