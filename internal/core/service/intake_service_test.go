package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

func TestReviewCreate(t *testing.T) {
	db := newMockDB()
	svc := NewReviewService(db, quietLogger())

	review, err := svc.Create(context.Background(), domain.ReviewSubmission{
		Name:    " Sarah J. ",
		Rating:  5,
		Comment: "Best burger I've ever had!",
	})
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, "Sarah J.", review.Name)
	assert.False(t, review.CreatedAt.IsZero())

	reviews, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestReviewCreate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		sub   domain.ReviewSubmission
		field string
	}{
		{"rating too high", domain.ReviewSubmission{Name: "A", Rating: 6, Comment: "ok"}, "rating"},
		{"rating zero", domain.ReviewSubmission{Name: "A", Rating: 0, Comment: "ok"}, "rating"},
		{"blank name", domain.ReviewSubmission{Name: "   ", Rating: 3, Comment: "ok"}, "name"},
		{"no comment", domain.ReviewSubmission{Name: "A", Rating: 3}, "comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMockDB()
			svc := NewReviewService(db, quietLogger())

			_, err := svc.Create(context.Background(), tt.sub)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Field(tt.field))
			assert.Empty(t, db.reviews)
		})
	}
}

func TestReviewList_DBError(t *testing.T) {
	db := newMockDB()
	db.failWith = errDBDown
	_, err := NewReviewService(db, quietLogger()).List(context.Background())
	assert.ErrorIs(t, err, errDBDown)
}

func TestContactCreate(t *testing.T) {
	db := newMockDB()
	svc := NewContactService(db, quietLogger())

	msg, err := svc.Create(context.Background(), domain.MessageSubmission{
		Name:    "Emily R.",
		Email:   "emily@example.com",
		Message: "Do you cater for birthday parties?",
	})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Len(t, db.messages, 1)
}

func TestContactCreate_Invalid(t *testing.T) {
	db := newMockDB()
	svc := NewContactService(db, quietLogger())

	_, err := svc.Create(context.Background(), domain.MessageSubmission{
		Name:    "",
		Email:   "emily",
		Message: "short",
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Field("name"))
	assert.NotEmpty(t, verr.Field("email"))
	assert.NotEmpty(t, verr.Field("message"))
	assert.Empty(t, db.messages)
}

func TestContactCreate_DBError(t *testing.T) {
	db := newMockDB()
	db.failWith = errDBDown
	_, err := NewContactService(db, quietLogger()).Create(context.Background(), domain.MessageSubmission{
		Name: "A", Email: "a@example.com", Message: "long enough message",
	})
	assert.ErrorIs(t, err, errDBDown)
}
