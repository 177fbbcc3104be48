package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const subscriptionExpiryJob = "subscription-expiry"

// SubscriptionExpirer flips lapsed subscriptions to expired.
type SubscriptionExpirer interface {
	ExpireLapsed(ctx context.Context) (int, error)
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	expirer   SubscriptionExpirer
	logger    *logrus.Entry
}

// NewScheduler registers the subscription sweep to run every interval. The
// sweep never overlaps itself; a run still in progress pushes the next one.
func NewScheduler(expirer SubscriptionExpirer, interval time.Duration, logger *logrus.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &Scheduler{
		scheduler: s,
		expirer:   expirer,
		logger:    logger.WithField("component", "scheduler"),
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.expireSubscriptions),
		gocron.WithName(subscriptionExpiryJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *Scheduler) Start() {
	js.logger.Info("starting scheduler")
	js.scheduler.Start()
}

func (js *Scheduler) Stop() error {
	js.logger.Info("stopping scheduler")
	return js.scheduler.Shutdown()
}

func (js *Scheduler) expireSubscriptions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := js.expirer.ExpireLapsed(ctx)
	if err != nil {
		js.logger.WithError(err).Error("subscription expiry sweep failed")
		return
	}
	if n > 0 {
		js.logger.WithField("expired", n).Info("expired lapsed subscriptions")
	}
}
