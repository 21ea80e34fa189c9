package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/port"
)

type ReviewService struct {
	db  port.ReviewRepository
	log logrus.FieldLogger
	now func() time.Time
}

func NewReviewService(db port.ReviewRepository, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{db: db, log: log, now: time.Now}
}

// List returns reviews oldest first.
func (s *ReviewService) List(ctx context.Context) ([]domain.Review, error) {
	reviews, err := s.db.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) Create(ctx context.Context, sub domain.ReviewSubmission) (*domain.Review, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Comment = strings.TrimSpace(sub.Comment)
	if err := domain.Validate(sub); err != nil {
		return nil, err
	}

	review := domain.Review{
		Name:      sub.Name,
		Rating:    sub.Rating,
		Comment:   sub.Comment,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.CreateReview(ctx, &review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.log.WithFields(logrus.Fields{"review_id": review.ID, "rating": review.Rating}).Info("review created")
	return &review, nil
}

type ContactService struct {
	db  port.MessageRepository
	log logrus.FieldLogger
	now func() time.Time
}

func NewContactService(db port.MessageRepository, log logrus.FieldLogger) *ContactService {
	return &ContactService{db: db, log: log, now: time.Now}
}

func (s *ContactService) Create(ctx context.Context, sub domain.MessageSubmission) (*domain.Message, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Message = strings.TrimSpace(sub.Message)
	if err := domain.Validate(sub); err != nil {
		return nil, err
	}

	msg := domain.Message{
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.CreateMessage(ctx, &msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	s.log.WithField("message_id", msg.ID).Info("contact message received")
	return &msg, nil
}
