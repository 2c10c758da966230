package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
)

// ContactNotifier is told about every stored contact submission.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, submission models.ContactSubmission) error
}

type ContactService struct {
	repo     database.ContactRepo
	notifier ContactNotifier
	now      func() time.Time
	logger   zerolog.Logger
}

// NewContactService builds the service. notifier may be nil; now defaults to the UTC
// wall clock when nil.
func NewContactService(repo database.ContactRepo, notifier ContactNotifier, now func() time.Time) *ContactService {
	if now == nil {
		now = utcNow
	}
	return &ContactService{
		repo:     repo,
		notifier: notifier,
		now:      now,
		logger:   log.With().Str("component", "contact").Logger(),
	}
}

// Create stores an unread submission. Notification failures are logged and do not fail
// the submission.
func (s *ContactService) Create(ctx context.Context, in models.ContactInput) (*models.ContactSubmission, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	sub := in.NewSubmission(s.now())
	if err := s.repo.Add(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", sub.ID).Msg("Contact submission stored")

	if s.notifier != nil {
		if err := s.notifier.NotifyContact(ctx, *sub); err != nil {
			s.logger.Error().Err(err).Str("id", sub.ID).Msg("Failed to send contact notification")
		}
	}
	return sub, nil
}

// ListAll returns every submission, newest first.
func (s *ContactService) ListAll(ctx context.Context) ([]models.ContactSubmission, error) {
	return s.repo.FindAll(ctx)
}

// MarkRead flags the submission as read. Marking it again changes nothing. A nil result
// means no submission has id.
func (s *ContactService) MarkRead(ctx context.Context, id string) (*models.ContactSubmission, error) {
	return s.repo.MarkRead(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *ContactService) CountUnread(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx)
}
