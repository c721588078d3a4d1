package lottery

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/R3E-Network/delott/pkg/logger"
)

// Scheduler drives round transitions on the operator's behalf: one-shot
// closes at a round's end time, or a recurring cron expression that advances
// whatever round is due. It is sugar over the operator API; every transition
// still goes through the service's own guards.
type Scheduler struct {
	svc      *Service
	operator string
	log      *logger.Logger
	cron     *cron.Cron
}

// NewScheduler creates a stopped scheduler acting as the given operator.
func NewScheduler(svc *Service, operator string, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewDefault("lottery-scheduler")
	}
	return &Scheduler{
		svc:      svc,
		operator: operator,
		log:      log,
		cron:     cron.New(),
	}
}

// Start begins running scheduled jobs.
func (sc *Scheduler) Start() { sc.cron.Start() }

// Stop halts the scheduler; the returned context is done when running jobs finish.
func (sc *Scheduler) Stop() context.Context { return sc.cron.Stop() }

// ScheduleRoundClose registers a one-shot close for a round at the given time.
func (sc *Scheduler) ScheduleRoundClose(roundID int64, at time.Time) cron.EntryID {
	return sc.cron.Schedule(onceAt{at: at}, cron.FuncJob(func() {
		if _, err := sc.svc.CloseRound(context.Background(), sc.operator, roundID); err != nil {
			sc.log.WithError(err).WithField("round_id", roundID).Warn("scheduled close failed")
			return
		}
		sc.log.WithField("round_id", roundID).Info("round closed by scheduler")
	}))
}

// ScheduleAdvance registers a recurring job that closes the current round once
// it is over and draws it once its randomness is fulfilled.
func (sc *Scheduler) ScheduleAdvance(spec string, autoInjection bool) (cron.EntryID, error) {
	return sc.cron.AddFunc(spec, func() { sc.advance(autoInjection) })
}

func (sc *Scheduler) advance(autoInjection bool) {
	ctx := context.Background()

	roundID, err := sc.svc.ViewCurrentRoundID(ctx)
	if err != nil || roundID == 0 {
		return
	}
	round, err := sc.svc.ViewRound(ctx, roundID)
	if err != nil {
		return
	}

	switch round.Status {
	case StatusOpen:
		if _, err := sc.svc.CloseRound(ctx, sc.operator, roundID); err != nil {
			sc.log.WithError(err).WithField("round_id", roundID).Debug("round not ready to close")
		}
	case StatusClosed:
		if _, err := sc.svc.DrawFinalNumberAndMakeClaimable(ctx, sc.operator, roundID, autoInjection); err != nil {
			sc.log.WithError(err).WithField("round_id", roundID).Debug("round not ready to draw")
		}
	}
}

// onceAt fires once at a fixed time, then never again.
type onceAt struct {
	at time.Time
}

func (o onceAt) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	// Zero time tells cron the entry is exhausted.
	return time.Time{}
}
