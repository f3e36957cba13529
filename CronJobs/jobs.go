package CronJobs

import (
	"fmt"
	"strings"

	"Fatura/Analytics"
	"Fatura/Models"
	"Fatura/email"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OverdueChecker runs a daily scan for overdue invoices and, when SMTP is
// configured, mails each user a summary of what is past due.
type OverdueChecker struct {
	cronScheduler *cron.Cron
	db            *gorm.DB
	jobID         cron.EntryID
}

// NewOverdueChecker creates an overdue checker over the given database
func NewOverdueChecker(db *gorm.DB) *OverdueChecker {
	return &OverdueChecker{
		cronScheduler: cron.New(cron.WithSeconds()),
		db:            db,
	}
}

// Start schedules the daily scan at 1:00 AM
func (o *OverdueChecker) Start() error {
	var err error
	o.jobID, err = o.cronScheduler.AddFunc("0 0 1 * * *", func() {
		log.Info().Msg("Running scheduled overdue invoice scan")
		o.runScan()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	o.cronScheduler.Start()
	return nil
}

// Stop terminates the checker
func (o *OverdueChecker) Stop() {
	if o.cronScheduler != nil {
		o.cronScheduler.Stop()
		log.Info().Msg("Overdue invoice scan stopped")
	}
}

func (o *OverdueChecker) runScan() {
	var users []Models.User
	if err := o.db.Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("Overdue scan failed to list users")
		return
	}

	emailConfig, emailEnabled := Models.EmailConfigFromEnv()

	for _, user := range users {
		report, err := Analytics.Aging(o.db, user.ID)
		if err != nil {
			log.Error().Err(err).Uint("user_id", user.ID).Msg("Overdue scan failed")
			continue
		}
		overdue := len(report.Bucket10To20) + len(report.Bucket20Plus)
		if overdue == 0 {
			continue
		}

		log.Info().
			Uint("user_id", user.ID).
			Int("overdue_10_20", len(report.Bucket10To20)).
			Int("overdue_20_plus", len(report.Bucket20Plus)).
			Msg("Overdue invoices found")

		if !emailEnabled || user.Email == "" {
			continue
		}
		message := Models.EmailMessage{
			To:      []string{user.Email},
			Subject: fmt.Sprintf("%d overdue invoice(s)", overdue),
			Body:    overdueSummary(report),
		}
		if err := email.SendEmail(emailConfig, message); err != nil {
			log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to send overdue reminder")
		}
	}
}

func overdueSummary(report *Analytics.AgingReport) string {
	var body strings.Builder
	body.WriteString("The following invoices are overdue:\r\n\r\n")
	for _, invoice := range report.Bucket10To20 {
		body.WriteString(fmt.Sprintf("%s - outstanding %s (10-20 days overdue)\r\n",
			invoice.Number, invoice.Remaining().StringFixed(2)))
	}
	for _, invoice := range report.Bucket20Plus {
		body.WriteString(fmt.Sprintf("%s - outstanding %s (20+ days overdue)\r\n",
			invoice.Number, invoice.Remaining().StringFixed(2)))
	}
	return body.String()
}
