// Package events publishes domain events to NATS for out-of-process
// consumers (notification delivery, reporting). Publishing is best-effort:
// a missing or failed broker never fails the originating operation.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects emitted by the portal.
const (
	SubjectApplicationApproved  = "hkd.applications.approved"
	SubjectApplicationRejected  = "hkd.applications.rejected"
	SubjectFeesGenerated        = "hkd.fees.generated"
	SubjectFeeOverdue           = "hkd.fees.overdue"
	SubjectRegistrationReviewed = "hkd.registrations.reviewed"
)

// ApplicationEvent describes an application lifecycle decision.
type ApplicationEvent struct {
	ApplicationID uint      `json:"application_id"`
	UserID        uint      `json:"user_id"`
	CourseID      uint      `json:"course_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// FeeBatchEvent describes the outcome of one fee generation run.
type FeeBatchEvent struct {
	Period     string    `json:"period"`
	Created    int       `json:"created"`
	Skipped    int       `json:"skipped"`
	Errored    int       `json:"errored"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FeeEvent describes a single fee transition.
type FeeEvent struct {
	FeeID           uint      `json:"fee_id"`
	MemberProfileID uint      `json:"member_profile_id"`
	Period          string    `json:"period"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// RegistrationEvent describes a program registration decision.
type RegistrationEvent struct {
	RegistrationID uint      `json:"registration_id"`
	UserID         uint      `json:"user_id"`
	ProgramID      uint      `json:"program_id"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher emits domain events. A nil NATS connection turns it into a no-op.
type Publisher struct {
	nc     *nats.Conn
	logger zerolog.Logger
}

// NewPublisher constructs a publisher over an optional NATS connection.
func NewPublisher(nc *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		nc:     nc,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Publish marshals payload to JSON and emits it on subject.
func (p *Publisher) Publish(ctx context.Context, subject string, payload interface{}) {
	if p == nil || p.nc == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to marshal event")
		return
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
