package services

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultRevalidateCron = "0 * * * *"

// SchedulerService periodically re-runs the cross-definition graph checks
// over the stored definition set. Registration-time validation catches
// problems at the door; the scheduled sweep catches drift introduced
// behind the API's back, such as manual edits to the registry tables.
type SchedulerService struct {
	registry *RegistryService
	schedule cron.Schedule
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	stopped  bool // Prevents double-close of stopChan
}

// NewSchedulerService creates a new scheduler service. The sweep cadence
// comes from REVALIDATE_CRON (standard five-field cron); an unset or
// unparsable value falls back to hourly.
func NewSchedulerService(registry *RegistryService) *SchedulerService {
	expr := os.Getenv("REVALIDATE_CRON")
	if expr == "" {
		expr = defaultRevalidateCron
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		log.Printf("⚠️ Invalid REVALIDATE_CRON %q, falling back to %q: %v", expr, defaultRevalidateCron, err)
		schedule, _ = parser.Parse(defaultRevalidateCron)
	}

	return &SchedulerService{
		registry: registry,
		schedule: schedule,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler background loop
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Println("⏰ Revalidation scheduler starting...")

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			s.runSweep()
		case <-s.stopChan:
			timer.Stop()
			log.Println("⏰ Revalidation scheduler stopping...")
			s.wg.Wait() // Wait for a running sweep to complete
			log.Println("⏰ Revalidation scheduler stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
}

func (s *SchedulerService) runSweep() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("🔥 Panic in revalidation sweep: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		start := time.Now()
		findings := s.registry.RevalidateGraph(ctx)
		log.Printf("⏰ Revalidation sweep finished in %v with %d findings", time.Since(start), len(findings))
	}()
}
