// Package scheduler runs the periodic overdue sweep: loans past their
// due date are flipped to overdue, and a notice task is enqueued for
// each one.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/tasks"
)

// OverdueSweeper marks open loans past due as overdue and returns them.
type OverdueSweeper interface {
	SweepOverdue(now time.Time) ([]entities.Loan, error)
}

// OverdueSweepScheduler runs the sweep on a cron schedule.
type OverdueSweepScheduler struct {
	sweeper  OverdueSweeper
	queue    *tasks.Client
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewOverdueSweepScheduler creates a new scheduler. queue may be nil,
// in which case overdue loans are only marked, not notified.
func NewOverdueSweepScheduler(sweeper OverdueSweeper, queue *tasks.Client, schedule string) *OverdueSweepScheduler {
	return &OverdueSweepScheduler{
		sweeper:  sweeper,
		queue:    queue,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *OverdueSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue sweep %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue sweep scheduler: started with schedule %q", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *OverdueSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Overdue sweep scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *OverdueSweepScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *OverdueSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *OverdueSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep performs the actual sweep. Overlapping runs are skipped.
func (s *OverdueSweepScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Overdue sweep: skipped (already running)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	log.Printf("Overdue sweep: starting")
	startTime := time.Now()

	overdue, err := s.sweeper.SweepOverdue(time.Now())
	if err != nil {
		log.Printf("Overdue sweep: failed: %v", err)
		return
	}

	if len(overdue) == 0 {
		log.Printf("Overdue sweep: no overdue loans")
		return
	}

	enqueued := 0
	if s.queue != nil {
		for _, loan := range overdue {
			if _, err := s.queue.Add(tasks.OverdueNoticeTask{LoanID: loan.ID}).Save(); err != nil {
				log.Printf("Overdue sweep: failed to enqueue notice for loan %d: %v", loan.ID, err)
				continue
			}
			enqueued++
		}
	}

	log.Printf("Overdue sweep: %d overdue loans, %d notices enqueued in %v",
		len(overdue), enqueued, time.Since(startTime).Round(time.Millisecond))
}
