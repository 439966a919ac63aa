package repository

import (
	"context"
	"errors"
	"fmt"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookAggregate is the raw per-book aggregation used for rankings.
type BookAggregate struct {
	BookID string
	Sum    int64
	Total  int64
}

type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) (created bool, err error)
	Delete(ctx context.Context, userID string, bookID string) (bool, error)
	GetByUserAndBook(ctx context.Context, userID string, bookID string) (*models.Rating, error)
	ListByBook(ctx context.Context, bookID string, limit int) ([]models.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]models.Rating, error)
	Distribution(ctx context.Context, bookID string) (map[int]int64, error)
	TopRated(ctx context.Context, limit int, minRatings int) ([]BookAggregate, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert inserts the rating or overwrites stars, comment and rated_at of the existing
// (book_id, user_id) row. The unique index arbitrates concurrent writers: last commit wins.
// On success rating is reloaded with its User.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) (bool, error) {
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Rating{}).
			Where("book_id = ? AND user_id = ?", rating.BookID, rating.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		created = existing == 0

		if err := tx.Omit("User").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "book_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars", "comment", "rated_at", "updated_at"}),
		}).Create(rating).Error; err != nil {
			return err
		}

		var stored models.Rating
		if err := tx.Joins("User").
			Where("ratings.book_id = ? AND ratings.user_id = ?", rating.BookID, rating.UserID).
			First(&stored).Error; err != nil {
			return err
		}
		*rating = stored
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert rating: %w", err)
	}

	return created, nil
}

// Delete removes a user's rating for a book and reports whether a row was deleted
func (r *ratingRepository) Delete(ctx context.Context, userID string, bookID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.Rating{})
	if result.Error != nil {
		return false, fmt.Errorf("delete rating: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetByUserAndBook retrieves a user's rating for a specific book
func (r *ratingRepository) GetByUserAndBook(ctx context.Context, userID string, bookID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Joins("User").
		Where("ratings.user_id = ? AND ratings.book_id = ?", userID, bookID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating, nil
}

// ListByBook retrieves the most recent ratings of a book with their authors
func (r *ratingRepository) ListByBook(ctx context.Context, bookID string, limit int) ([]models.Rating, error) {
	var ratings []models.Rating

	err := r.db.WithContext(ctx).
		Joins("User").
		Where("ratings.book_id = ?", bookID).
		Order("ratings.rated_at DESC, ratings.id DESC").
		Limit(limit).
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("list ratings by book: %w", err)
	}

	return ratings, nil
}

// ListByUser retrieves every rating authored by a user, most recent first
func (r *ratingRepository) ListByUser(ctx context.Context, userID string) ([]models.Rating, error) {
	var ratings []models.Rating

	err := r.db.WithContext(ctx).
		Joins("User").
		Where("ratings.user_id = ?", userID).
		Order("ratings.rated_at DESC, ratings.id DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("list ratings by user: %w", err)
	}

	return ratings, nil
}

// Distribution counts the ratings of a book per star value. Absent star values are absent keys.
func (r *ratingRepository) Distribution(ctx context.Context, bookID string) (map[int]int64, error) {
	var rows []struct {
		Stars int
		Count int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("stars, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Group("stars").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Stars] = row.Count
	}
	return counts, nil
}

// TopRated ranks books by average stars, then by number of ratings
func (r *ratingRepository) TopRated(ctx context.Context, limit int, minRatings int) ([]BookAggregate, error) {
	var rows []BookAggregate

	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("book_id, SUM(stars) AS sum, COUNT(*) AS total").
		Group("book_id").
		Having("COUNT(*) >= ?", minRatings).
		Order("AVG(stars) DESC, COUNT(*) DESC, book_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top rated books: %w", err)
	}

	return rows, nil
}
