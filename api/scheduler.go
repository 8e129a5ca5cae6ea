/*
scheduler.go - Automatic calendar advancement

PURPOSE:
  Optionally ties the simulated calendar to wall-clock time: on a cron
  schedule (typically midnight), advance the simulation by one day and
  persist the resulting state. With no schedule configured the clock
  only moves through the /api/system/simulate endpoint.

USAGE:
  adv := NewAutoAdvancer(handler, "0 0 * * *", log)
  adv.Start()
  // ... later
  <-adv.Stop().Done()

SEE ALSO:
  - handlers.go: Simulate endpoint (manual advancement)
  - bank/engine.go: day-stepping loop
*/
package api

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// AutoAdvancer advances the simulated clock on a cron schedule.
type AutoAdvancer struct {
	handler  *Handler
	schedule string
	cron     *cron.Cron
	log      *logrus.Logger
}

// NewAutoAdvancer creates the advancer. An empty schedule disables it.
func NewAutoAdvancer(h *Handler, schedule string, log *logrus.Logger) *AutoAdvancer {
	return &AutoAdvancer{
		handler:  h,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		log:      log,
	}
}

// Start registers the advancement job and starts the cron loop.
func (a *AutoAdvancer) Start() {
	if a.schedule == "" {
		a.log.Debug("auto-advance disabled, no schedule configured")
		return
	}
	if _, err := a.cron.AddFunc(a.schedule, a.advance); err != nil {
		a.log.WithError(err).Errorf("invalid auto-advance schedule %q", a.schedule)
		return
	}
	a.log.Infof("auto-advance scheduled: %s", a.schedule)
	a.cron.Start()
}

// Stop halts the cron loop. The returned context is done once any
// in-flight advancement has finished.
func (a *AutoAdvancer) Stop() context.Context {
	return a.cron.Stop()
}

func (a *AutoAdvancer) advance() {
	report, err := a.handler.Bank.AdvanceDay()
	if err != nil {
		a.log.WithError(err).Error("auto-advance failed")
		return
	}
	a.log.WithFields(logrus.Fields{
		"to":       report.To.String(),
		"days":     report.Days,
		"executed": report.OrdersExecuted,
		"overdue":  report.BillsOverdue,
	}).Info("calendar auto-advanced")

	if a.handler.Store == nil {
		return
	}
	if err := a.handler.Store.SaveAll(context.Background(), a.handler.Bank.Snapshot()); err != nil {
		a.log.WithError(err).Error("failed to persist auto-advanced state")
	}
}
