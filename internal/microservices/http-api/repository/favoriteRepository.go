package repository

import (
	"context"
	"fmt"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type FavoriteRepository interface {
	AddMany(ctx context.Context, userID string, bookIDs []string) (conflicts []string, err error)
	Remove(ctx context.Context, userID string, bookID string) (bool, error)
	List(ctx context.Context, userID string) ([]string, error)
	Exists(ctx context.Context, userID string, bookID string) (bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// AddMany inserts all bookIDs for the user in one transaction.
// If any of them is already a favorite nothing is written and those ids are returned.
// A unique violation from a concurrent writer surfaces as ErrDuplicate.
func (r *favoriteRepository) AddMany(ctx context.Context, userID string, bookIDs []string) ([]string, error) {
	var conflicts []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FavoriteBook{}).
			Where("user_id = ? AND book_id IN ?", userID, bookIDs).
			Order("id ASC").
			Pluck("book_id", &conflicts).Error; err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return nil
		}

		rows := make([]models.FavoriteBook, 0, len(bookIDs))
		for _, bookID := range bookIDs {
			rows = append(rows, models.FavoriteBook{UserID: userID, BookID: bookID})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("add favorites: %w", err)
	}

	return conflicts, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID string, bookID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.FavoriteBook{})

	if result.Error != nil {
		return false, fmt.Errorf("remove favorite: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// List returns the user's favorite book ids in insertion order
func (r *favoriteRepository) List(ctx context.Context, userID string) ([]string, error) {
	bookIDs := []string{}

	if err := r.db.WithContext(ctx).
		Model(&models.FavoriteBook{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("book_id", &bookIDs).Error; err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	return bookIDs, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID string, bookID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FavoriteBook{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return count > 0, nil
}
