// Package schedule triggers investigations on a cron cadence for watch
// mode.
package schedule

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Scheduler runs one investigation function on a cron cadence. Runs
// never overlap: a tick that lands while the previous run is still in
// flight is skipped.
type Scheduler struct {
	cron    *cron.Cron
	run     func()
	running atomic.Bool
}

func New(run func()) *Scheduler {
	return &Scheduler{cron: cron.New(), run: run}
}

// Start registers cronExpr and begins ticking.
func (s *Scheduler) Start(cronExpr string) error {
	if _, err := s.cron.AddFunc(cronExpr, s.tick); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	s.cron.Start()
	log.Printf("scheduler: started with cron %q", cronExpr)
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("scheduler: previous investigation still running, skipping tick")
		return
	}
	defer s.running.Store(false)
	s.run()
}
