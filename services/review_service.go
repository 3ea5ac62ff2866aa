package services

import (
	"context"

	"github.com/campuscarry/campuscarry-api/metrics"
	"github.com/campuscarry/campuscarry-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinRating = 1
	MaxRating = 5
)

// CreateReviewInput is a rating one party leaves for the other after completion
type CreateReviewInput struct {
	MatchID    uint
	ReviewerID uint
	RevieweeID uint
	Rating     int
	Comment    *string
}

// ReviewService records post-completion reviews and keeps each user's rating current
type ReviewService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewReviewService(db *gorm.DB, logger *zap.Logger) *ReviewService {
	return &ReviewService{db: db, logger: logger}
}

// CreateReview stores the review and recomputes the reviewee's rating as the mean of all
// reviews they have received, in the same transaction.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	var reviewID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := loadMatch(tx, in.MatchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusCompleted {
			return preconditionFailed("Can only review completed matches")
		}
		if in.Rating < MinRating || in.Rating > MaxRating {
			return invalidInput("Rating must be between %d and %d", MinRating, MaxRating)
		}
		reviewee, ok := Counterparty(match, in.ReviewerID)
		if !ok {
			return forbidden("Not authorized to review this match")
		}
		if in.RevieweeID != reviewee {
			return invalidInput("Reviewee must be the other party of the match")
		}

		review := models.Review{
			MatchID:    match.ID,
			ReviewerID: in.ReviewerID,
			RevieweeID: reviewee,
			Rating:     in.Rating,
			Comment:    in.Comment,
		}
		if err := tx.Omit(clause.Associations).Create(&review).Error; err != nil {
			if isUniqueViolation(err) {
				return conflict("You have already reviewed this match", err)
			}
			return unexpected("failed to create review", err)
		}

		if err := refreshRating(tx, reviewee); err != nil {
			return err
		}
		reviewID = review.ID
		return nil
	})
	if err != nil {
		return nil, recordFailure(s.logger, "create_review", err)
	}

	metrics.ReviewsCreatedTotal.Inc()
	s.logger.Info("review created",
		zap.Uint("review_id", reviewID),
		zap.Uint("match_id", in.MatchID),
		zap.Uint("reviewer_id", in.ReviewerID),
		zap.Int("rating", in.Rating),
	)
	return s.GetReview(ctx, reviewID)
}

// refreshRating recomputes a user's rating from every review they have received
func refreshRating(tx *gorm.DB, userID uint) error {
	var ratings []int
	if err := tx.Model(&models.Review{}).Where("reviewee_id = ?", userID).Pluck("rating", &ratings).Error; err != nil {
		return unexpected("failed to read ratings", err)
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("rating", meanRating(ratings)).Error; err != nil {
		return unexpected("failed to update rating", err)
	}
	return nil
}

// meanRating is 0 when the user has not been reviewed yet
func meanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// GetReview returns a single review with both users
func (s *ReviewService) GetReview(ctx context.Context, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).
		Preload("Reviewer", models.UserSummary).
		Preload("Reviewee", models.UserSummary).
		First(&review, reviewID).Error
	if err != nil {
		return nil, recordFailure(s.logger, "get_review", lookupError("Review", err))
	}
	return &review, nil
}

// GetReviewsForUser lists the reviews a user has received, newest first
func (s *ReviewService) GetReviewsForUser(ctx context.Context, userID uint) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.WithContext(ctx).
		Where("reviewee_id = ?", userID).
		Preload("Reviewer", models.UserSummary).
		Preload("Match.Order", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "creator_id", "status")
		}).
		Scopes(newestFirst).
		Find(&reviews).Error
	if err != nil {
		return nil, recordFailure(s.logger, "list_reviews", unexpected("failed to list reviews", err))
	}
	return reviews, nil
}
