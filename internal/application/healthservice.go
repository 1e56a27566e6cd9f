package application

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReport is the readiness view served to the health endpoint and the
// container healthcheck.
type HealthReport struct {
	Status            string
	Database          string
	MailboxConfigured bool
	CheckedAt         time.Time
}

// Healthy reports whether every required dependency is reachable.
func (r HealthReport) Healthy() bool {
	return r.Status == "ok"
}

// HealthService checks the dependencies the mailbox features need.
type HealthService struct {
	db                Pinger
	mailboxConfigured bool
	timeout           time.Duration
}

// NewHealthService creates a HealthService. mailboxConfigured reflects
// whether OAuth client credentials were supplied; its absence degrades
// correspondence features but does not make the service unhealthy.
func NewHealthService(db Pinger, mailboxConfigured bool) *HealthService {
	return &HealthService{
		db:                db,
		mailboxConfigured: mailboxConfigured,
		timeout:           2 * time.Second,
	}
}

// Check pings the database and reports the result.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:            "ok",
		Database:          "ok",
		MailboxConfigured: s.mailboxConfigured,
		CheckedAt:         time.Now().UTC(),
	}

	pingCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		report.Status = "unavailable"
		report.Database = err.Error()
	}

	return report
}
