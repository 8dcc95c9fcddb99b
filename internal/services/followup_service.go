package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"awning-admin-api/internal/config"
	"awning-admin-api/internal/models"

	"github.com/robfig/cron/v3"
)

// FollowUpDatabase is the persistence surface the follow-up sweep needs
type FollowUpDatabase interface {
	FindStaleEnquiryWorkflows(ctx context.Context, cutoff time.Time) ([]models.Workflow, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	UpsertFollowUp(ctx context.Context, followUp models.FollowUp) error
	ListOpenFollowUps(ctx context.Context) ([]models.FollowUp, error)
	MarkFollowUpDone(ctx context.Context, id int64) error
}

// FollowUpService runs the generate-then-list cycle for stale enquiries and
// schedules a recurring sweep
type FollowUpService struct {
	db    FollowUpDatabase
	email *EmailService // nil when SendGrid is not configured
	cfg   config.FollowUpConfig
	cron  *cron.Cron
}

// NewFollowUpService creates a new follow-up service
func NewFollowUpService(db FollowUpDatabase, email *EmailService, cfg config.FollowUpConfig) *FollowUpService {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &FollowUpService{
		db:    db,
		email: email,
		cfg:   cfg,
		cron:  c,
	}
}

// Start schedules the recurring sweep and starts the cron scheduler
func (s *FollowUpService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runScheduledSweep)
	if err != nil {
		return fmt.Errorf("failed to schedule follow-up sweep: %w", err)
	}
	s.cron.Start()
	log.Printf("Follow-up sweep scheduled (%s)", s.cfg.CronSchedule)
	return nil
}

// Stop stops the cron scheduler
func (s *FollowUpService) Stop() {
	s.cron.Stop()
	log.Println("Follow-up sweep scheduler stopped")
}

// GenerateAndList runs one generate-then-list cycle: stale enquiry-stage
// workflows get an open follow-up, then every open follow-up is returned
func (s *FollowUpService) GenerateAndList(ctx context.Context) ([]models.FollowUp, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.StaleAfterDays)

	stale, err := s.db.FindStaleEnquiryWorkflows(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for _, workflow := range stale {
		customerName := fmt.Sprintf("customer %d", workflow.CustomerID)
		customer, err := s.db.GetCustomerByID(ctx, workflow.CustomerID)
		if err != nil {
			log.Printf("WARNING: follow-up sweep: customer %d lookup failed: %v", workflow.CustomerID, err)
		} else if customer != nil {
			customerName = customer.Name
		}

		followUp := models.FollowUp{
			WorkflowID:   workflow.ID,
			CustomerID:   workflow.CustomerID,
			CustomerName: customerName,
			Reason:       fmt.Sprintf("enquiry has had no activity since %s", workflow.UpdatedAt.Format("2006-01-02")),
			GeneratedAt:  time.Now(),
		}
		if err := s.db.UpsertFollowUp(ctx, followUp); err != nil {
			log.Printf("WARNING: follow-up sweep: failed to record follow-up for workflow %d: %v", workflow.ID, err)
		}
	}

	return s.db.ListOpenFollowUps(ctx)
}

// MarkDone marks a follow-up as handled
func (s *FollowUpService) MarkDone(ctx context.Context, id int64) error {
	return s.db.MarkFollowUpDone(ctx, id)
}

// runScheduledSweep is the cron entry point; it runs the cycle and sends
// the reminder email as a best-effort notification
func (s *FollowUpService) runScheduledSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	followUps, err := s.GenerateAndList(ctx)
	if err != nil {
		log.Printf("ERROR: scheduled follow-up sweep failed: %v", err)
		return
	}

	log.Printf("Follow-up sweep complete: %d open follow-ups", len(followUps))

	if s.email != nil && s.cfg.NotifyEmail != "" && len(followUps) > 0 {
		if err := s.email.SendFollowUpEmail(s.cfg.NotifyEmail, followUps); err != nil {
			log.Printf("WARNING: failed to send follow-up reminder email: %v", err)
		}
	}
}
