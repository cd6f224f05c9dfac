// Package zlog logs scheduler job lifecycle events with zerolog.
package zlog

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/NetPo4ki/go-smoke/scheduler"
)

// Observer logs submissions and starts at debug level, successful finishes
// at debug, errors at warn and panics at error with the captured stack.
type Observer struct {
	log zerolog.Logger
}

var _ scheduler.Observer = (*Observer)(nil)

func New(log zerolog.Logger) *Observer {
	return &Observer{log: log.With().Str("component", "scheduler").Logger()}
}

func (o *Observer) event(e *zerolog.Event, info scheduler.JobInfo) *zerolog.Event {
	return e.Str("job", info.ID).Str("scheduler", info.Scheduler).Stringer("backend", info.Backend)
}

func (o *Observer) JobSubmitted(info scheduler.JobInfo) {
	o.event(o.log.Debug(), info).Msg("job submitted")
}

func (o *Observer) JobStarted(info scheduler.JobInfo) {
	o.event(o.log.Debug(), info).Dur("queued", time.Since(info.Submitted)).Msg("job started")
}

func (o *Observer) JobFinished(info scheduler.JobInfo, dur time.Duration, err error, panicked bool) {
	switch {
	case panicked:
		e := o.event(o.log.Error(), info).Dur("took", dur).Err(err)
		var ef *scheduler.ExecutionFailure
		if errors.As(err, &ef) {
			e = e.Str("stack", ef.Stack)
		}
		e.Msg("job panicked")
	case err != nil:
		o.event(o.log.Warn(), info).Dur("took", dur).Err(err).Msg("job failed")
	default:
		o.event(o.log.Debug(), info).Dur("took", dur).Msg("job finished")
	}
}
