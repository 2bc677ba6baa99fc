package repository

import (
	"context"
	"fmt"

	"github.com/set-night/mesabot/internal/domain"
)

type FeedbackRepository struct {
	db Querier
}

func NewFeedbackRepository(db Querier) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// SaveFeedback inserts fb and fills in its id and creation time.
func (r *FeedbackRepository) SaveFeedback(ctx context.Context, fb *domain.Feedback) error {
	if fb.Rating < domain.MinRating || fb.Rating > domain.MaxRating {
		return fmt.Errorf("save feedback: %w", domain.ErrInvalidRating)
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO "Recommendation" ("userName", rating, comment)
		 VALUES ($1, $2, $3)
		 RETURNING id, "createdAt"`,
		fb.UserName, fb.Rating, fb.Comment,
	).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}
