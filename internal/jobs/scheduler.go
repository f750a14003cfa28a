package jobs

import (
	"context"
	"log"
	"time"

	"billcraft/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs recurring maintenance jobs.
type Scheduler struct {
	scheduler   gocron.Scheduler
	invoiceRepo repositories.InvoiceRepository
}

func NewScheduler(invoiceRepo repositories.InvoiceRepository) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler:   scheduler,
		invoiceRepo: invoiceRepo,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	// Overdue sweep once a day shortly after midnight.
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 15, 0))),
		gocron.NewTask(s.sweepOverdueInvoices),
		gocron.WithName("overdue-invoice-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

// sweepOverdueInvoices flips pending invoices past their due date to overdue
// across all tenants.
func (s *Scheduler) sweepOverdueInvoices() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	updated, err := s.invoiceRepo.MarkOverdue(ctx)
	if err != nil {
		log.Printf("overdue sweep failed: %v", err)
		return
	}
	if updated > 0 {
		log.Printf("overdue sweep marked %d invoices overdue", updated)
	}
}

func (s *Scheduler) Start() {
	log.Printf("Starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return s.scheduler.Shutdown()
}
