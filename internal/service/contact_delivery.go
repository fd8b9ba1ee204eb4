package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/upgrade-tuition/upgrade-api/internal/models"
)

// LogContactDelivery writes enquiries to the application log. It stands
// in for a real email provider in development and keeps the contact
// flow exercisable without one.
type LogContactDelivery struct {
	logger zerolog.Logger
}

// NewLogContactDelivery constructs a logging delivery provider.
func NewLogContactDelivery(logger zerolog.Logger) *LogContactDelivery {
	return &LogContactDelivery{logger: logger.With().Str("component", "contact_delivery").Logger()}
}

// Deliver logs the enquiry and reports success.
func (l *LogContactDelivery) Deliver(ctx context.Context, enquiry models.ContactEnquiry) error {
	l.logger.Info().
		Str("reference_id", enquiry.ReferenceID).
		Str("level", enquiry.Level).
		Str("subject", enquiry.Subject).
		Bool("has_notes", enquiry.Notes != "").
		Msg("new tuition enquiry")
	return nil
}
