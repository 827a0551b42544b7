package main

import (
	"github.com/robfig/cron/v3"

	appLog "daygrid/internal/log"
)

// cronLogger routes the scheduler's own log lines through appLog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}

// newRefreshJob wraps fn so a run that starts while another is still
// going is skipped. The startup run and every scheduled tick must share
// the returned job.
func newRefreshJob(fn func()) cron.Job {
	return cron.NewChain(cron.SkipIfStillRunning(cronLogger{})).Then(cron.FuncJob(fn))
}

// newScheduler schedules job on a standard 5-field cron spec.
func newScheduler(spec string, job cron.Job) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cronLogger{}))
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, err
	}
	return c, nil
}
