package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/upgrade-tuition/upgrade-api/internal/dto"
	"github.com/upgrade-tuition/upgrade-api/internal/models"
	"github.com/upgrade-tuition/upgrade-api/internal/observability"
)

var (
	// ErrContactSpam indicates the honeypot field was filled. Callers
	// respond as if the enquiry was accepted so bots learn nothing.
	ErrContactSpam = errors.New("contact enquiry flagged as spam")
	// ErrContactDuplicate indicates an identical enquiry arrived recently.
	ErrContactDuplicate = errors.New("duplicate contact enquiry")
)

// ContactDelivery is the transport that forwards an enquiry to the
// tutoring team's inbox.
type ContactDelivery interface {
	Deliver(ctx context.Context, enquiry models.ContactEnquiry) error
}

// ContactService handles enquiries from the public contact form.
type ContactService interface {
	Submit(ctx context.Context, req dto.ContactRequest) (dto.ContactResponse, error)
}

type contactService struct {
	cache     *redis.Client
	validator *validator.Validate
	delivery  ContactDelivery
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	dedupeTTL time.Duration
	tracer    trace.Tracer
}

// NewContactService constructs a contact service. The redis client is
// optional; without it duplicate enquiries are not suppressed.
func NewContactService(cache *redis.Client, validator *validator.Validate, delivery ContactDelivery, logger zerolog.Logger) ContactService {
	return &contactService{
		cache:     cache,
		validator: validator,
		delivery:  delivery,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "contact_service").Logger(),
		dedupeTTL: 5 * time.Minute,
		tracer:    otel.Tracer("github.com/upgrade-tuition/upgrade-api/internal/service/contact"),
	}
}

func (s *contactService) Submit(ctx context.Context, req dto.ContactRequest) (dto.ContactResponse, error) {
	ctx, span := s.tracer.Start(ctx, "contact.submit")
	defer span.End()

	if strings.TrimSpace(req.Website) != "" {
		span.SetStatus(codes.Error, "honeypot tripped")
		observability.ContactEnquiries().WithLabelValues("spam").Inc()
		return dto.ContactResponse{}, ErrContactSpam
	}

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ContactResponse{}, err
	}

	checksum := computeChecksum(req.Name, req.Email, req.Level, req.Subject, req.Notes)
	span.SetAttributes(attribute.String("contact.checksum", checksum))

	if s.cache != nil {
		key := fmt.Sprintf("contact:dedupe:%s", checksum)
		fresh, err := s.cache.SetNX(ctx, key, 1, s.dedupeTTL).Result()
		if err != nil {
			span.RecordError(err)
			return dto.ContactResponse{}, err
		}
		if !fresh {
			span.SetStatus(codes.Error, "duplicate enquiry")
			observability.ContactEnquiries().WithLabelValues("duplicate").Inc()
			return dto.ContactResponse{}, ErrContactDuplicate
		}
	}

	referenceID := uuid.New().String()
	enquiry := models.ContactEnquiry{
		ReferenceID: referenceID,
		Name:        s.sanitizer.Sanitize(strings.TrimSpace(req.Name)),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		Level:       s.sanitizer.Sanitize(strings.TrimSpace(req.Level)),
		Subject:     s.sanitizer.Sanitize(strings.TrimSpace(req.Subject)),
		Notes:       s.sanitizer.Sanitize(strings.TrimSpace(req.Notes)),
		Checksum:    checksum,
		ReceivedAt:  time.Now().UTC(),
	}

	if err := s.delivery.Deliver(ctx, enquiry); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("reference_id", referenceID).Msg("contact delivery failed, enquiry queued")
		observability.ContactEnquiries().WithLabelValues("queued").Inc()
		return dto.ContactResponse{ReferenceID: referenceID, Status: "queued"}, nil
	}

	observability.ContactEnquiries().WithLabelValues("sent").Inc()
	s.logger.Info().Str("reference_id", referenceID).Str("email", maskEmailAddress(enquiry.Email)).Msg("contact enquiry processed")
	span.SetStatus(codes.Ok, "delivered")

	return dto.ContactResponse{ReferenceID: referenceID, Status: "sent"}, nil
}

func computeChecksum(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(strings.TrimSpace(strings.ToLower(part))))
		hasher.Write([]byte("|"))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
