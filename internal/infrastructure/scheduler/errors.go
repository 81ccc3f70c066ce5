package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidSweepType is returned for unknown sweep types
	ErrInvalidSweepType = errors.New("invalid sweep type")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrInvalidCronSchedule is returned for schedules the trigger cannot parse
	ErrInvalidCronSchedule = errors.New("invalid cron schedule expression")
)
