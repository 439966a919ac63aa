package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookhub/internal/logger"
	"bookhub/internal/metrics"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"

	"gorm.io/gorm"
)

const (
	DefaultRatingsLimit = 10
	MaxRatingsLimit     = 100
	DefaultTopLimit     = 10
	DefaultMinRatings   = 5
	MaxCommentLength    = 2000
)

type RatingService interface {
	Upsert(ctx context.Context, userID string, bookID string, stars int, comment *string) (*dto.UpsertRatingResponse, error)
	Remove(ctx context.Context, userID string, bookID string) (bool, error)
	Stats(ctx context.Context, bookID string) (*dto.RatingStatsResponse, error)
	ListByBook(ctx context.Context, bookID string, limit int) (*dto.RatingListResponse, error)
	ListByUser(ctx context.Context, userID string) (*dto.RatingListResponse, error)
	AlreadyRated(ctx context.Context, userID string, bookID string) (*dto.AlreadyRatedResponse, error)
	TopRated(ctx context.Context, limit int, minRatings int) ([]dto.TopRatedBook, error)
}

type ratingService struct {
	ratingRepo   repository.RatingRepository
	userRepo     repository.UserRepository
	defaultLimit int
	now          func() time.Time
}

// NewRatingService builds the rating service. defaultLimit applies when a caller passes no limit.
func NewRatingService(ratingRepo repository.RatingRepository, userRepo repository.UserRepository, defaultLimit int) RatingService {
	if defaultLimit <= 0 || defaultLimit > MaxRatingsLimit {
		defaultLimit = DefaultRatingsLimit
	}
	return &ratingService{
		ratingRepo:   ratingRepo,
		userRepo:     userRepo,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

func validateBookID(bookID string) error {
	if !dto.IsValidBookID(bookID) {
		return shared.Validation("invalid book_id", bookID)
	}
	return nil
}

// Upsert creates the user's rating for a book or replaces stars, comment and timestamp.
// Input is validated before anything is persisted.
func (s *ratingService) Upsert(ctx context.Context, userID string, bookID string, stars int, comment *string) (*dto.UpsertRatingResponse, error) {
	if stars < shared.MinStars || stars > shared.MaxStars {
		return nil, shared.Validation(fmt.Sprintf("stars must be between %d and %d", shared.MinStars, shared.MaxStars))
	}
	if err := validateBookID(bookID); err != nil {
		return nil, err
	}
	if comment != nil && len(*comment) > MaxCommentLength {
		return nil, shared.Validation(fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}

	if _, err := findUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		BookID:  bookID,
		UserID:  userID,
		Stars:   stars,
		Comment: comment,
		RatedAt: s.now().UTC(),
	}

	created, err := s.ratingRepo.Upsert(ctx, rating)
	if err != nil {
		return nil, shared.Internal("failed to save rating", err)
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	metrics.RecordRatingWrite(outcome)
	logger.Log.Debugw("rating saved", "user_id", userID, "book_id", bookID, "stars", stars, "outcome", outcome)

	return &dto.UpsertRatingResponse{
		Created: created,
		Rating:  *dto.FromModelToRatingResponse(rating),
	}, nil
}

// Remove deletes the user's rating of a book. Removing a missing rating is not an error.
func (s *ratingService) Remove(ctx context.Context, userID string, bookID string) (bool, error) {
	if err := validateBookID(bookID); err != nil {
		return false, err
	}

	removed, err := s.ratingRepo.Delete(ctx, userID, bookID)
	if err != nil {
		return false, shared.Internal("failed to delete rating", err)
	}
	if removed {
		metrics.RecordRatingWrite("removed")
	}
	return removed, nil
}

// Stats aggregates a book's ratings, returning nil when the book has none.
func (s *ratingService) Stats(ctx context.Context, bookID string) (*dto.RatingStatsResponse, error) {
	if err := validateBookID(bookID); err != nil {
		return nil, err
	}

	counts, err := s.ratingRepo.Distribution(ctx, bookID)
	if err != nil {
		return nil, shared.Internal("failed to aggregate ratings", err)
	}

	var total, sum int64
	distribution := make(map[int]int64, shared.MaxStars)
	for stars := shared.MinStars; stars <= shared.MaxStars; stars++ {
		n := counts[stars]
		distribution[stars] = n
		total += n
		sum += n * int64(stars)
	}
	if total == 0 {
		return nil, nil
	}

	percentages := make(map[int]float64, shared.MaxStars)
	for stars, n := range distribution {
		percentages[stars] = roundedTenths(1000*n, total)
	}

	return &dto.RatingStatsResponse{
		BookID:       bookID,
		Mean:         roundedTenths(10*sum, total),
		Total:        total,
		Distribution: distribution,
		Percentages:  percentages,
	}, nil
}

// roundedTenths returns num/den rounded half up to a whole number of tenths, as a float.
// The rounding is done on integers so 4.25 always becomes 4.3.
func roundedTenths(num, den int64) float64 {
	tenths := (2*num + den) / (2 * den)
	return float64(tenths) / 10
}

// ListByBook returns a book's most recent ratings. limit <= 0 means the default, capped at MaxRatingsLimit.
func (s *ratingService) ListByBook(ctx context.Context, bookID string, limit int) (*dto.RatingListResponse, error) {
	if err := validateBookID(bookID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxRatingsLimit {
		limit = MaxRatingsLimit
	}

	ratings, err := s.ratingRepo.ListByBook(ctx, bookID, limit)
	if err != nil {
		return nil, shared.Internal("failed to list ratings", err)
	}
	return toRatingList(ratings), nil
}

func (s *ratingService) ListByUser(ctx context.Context, userID string) (*dto.RatingListResponse, error) {
	if _, err := findUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, shared.Internal("failed to list ratings", err)
	}
	return toRatingList(ratings), nil
}

// AlreadyRated reports whether the user rated the book and, if so, the rating itself.
func (s *ratingService) AlreadyRated(ctx context.Context, userID string, bookID string) (*dto.AlreadyRatedResponse, error) {
	if err := validateBookID(bookID); err != nil {
		return nil, err
	}

	rating, err := s.ratingRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.AlreadyRatedResponse{Rated: false}, nil
		}
		return nil, shared.Internal("failed to load rating", err)
	}

	return &dto.AlreadyRatedResponse{
		Rated: true,
		Rating: &dto.UserRatingResponse{
			ID:      rating.ID,
			Stars:   rating.Stars,
			Comment: rating.Comment,
			RatedAt: rating.RatedAt,
		},
	}, nil
}

// TopRated ranks books by mean stars, then by number of ratings, ignoring books with fewer than minRatings.
func (s *ratingService) TopRated(ctx context.Context, limit int, minRatings int) ([]dto.TopRatedBook, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxRatingsLimit {
		limit = MaxRatingsLimit
	}
	if minRatings <= 0 {
		minRatings = DefaultMinRatings
	}

	rows, err := s.ratingRepo.TopRated(ctx, limit, minRatings)
	if err != nil {
		return nil, shared.Internal("failed to rank books", err)
	}

	books := make([]dto.TopRatedBook, 0, len(rows))
	for _, row := range rows {
		books = append(books, dto.TopRatedBook{
			BookID: row.BookID,
			Mean:   roundedTenths(10*row.Sum, row.Total),
			Total:  row.Total,
		})
	}
	return books, nil
}

func toRatingList(ratings []models.Rating) *dto.RatingListResponse {
	data := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		data = append(data, *dto.FromModelToRatingResponse(&ratings[i]))
	}
	return &dto.RatingListResponse{Data: data, Total: len(data)}
}
