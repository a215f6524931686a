package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled circulation jobs
type CronService struct {
	cron         *cron.Cron
	transactions *TransactionService
	schedule     string
}

// NewCronService creates a cron service that sweeps overdue borrows on schedule
func NewCronService(transactions *TransactionService, schedule string) *CronService {
	return &CronService{
		cron:         cron.New(),
		transactions: transactions,
		schedule:     schedule,
	}
}

// Start registers jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepOverdue); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("🚀 CronService started [overdue sweep: %s]", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

// RunOnce sweeps overdue borrows immediately
func (s *CronService) RunOnce(ctx context.Context) (int64, error) {
	return s.transactions.SweepOverdue(ctx)
}

func (s *CronService) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.RunOnce(ctx)
	if err != nil {
		log.Printf("❌ Overdue sweep error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("⏰ Marked %d borrows as overdue", n)
	}
}
