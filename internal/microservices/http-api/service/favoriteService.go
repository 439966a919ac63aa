package service

import (
	"context"
	"errors"
	"strings"

	"bookhub/internal/logger"
	"bookhub/internal/metrics"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = shared.NotFound("user not found")
	ErrNotFavorited = shared.NotFound("book not in favorites")
)

const msgDuplicateBookIDs = "duplicate book ids in request"

type FavoriteService interface {
	Add(ctx context.Context, userID string, bookIDs string) (*dto.FavoriteListResponse, error)
	Remove(ctx context.Context, userID string, bookID string) (*dto.FavoriteListResponse, error)
	List(ctx context.Context, userID string) (*dto.FavoriteListResponse, error)
	Contains(ctx context.Context, userID string, bookID string) (bool, error)
}

type favoriteService struct {
	repo     repository.FavoriteRepository
	userRepo repository.UserRepository
}

func NewFavoriteService(repo repository.FavoriteRepository, userRepo repository.UserRepository) FavoriteService {
	return &favoriteService{
		repo:     repo,
		userRepo: userRepo,
	}
}

// ParseBookIDs splits a single id or a comma-joined list into trimmed ids.
// Empty elements and ids repeated within the list are rejected.
func ParseBookIDs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, shared.Validation("book_id is required")
	}

	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	seen := make(map[string]int, len(parts))
	var duplicates []string

	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			return nil, shared.Validation("book_id list contains an empty element")
		}
		if !dto.IsValidBookID(id) {
			return nil, shared.Validation("invalid book_id", id)
		}
		seen[id]++
		if seen[id] == 2 {
			duplicates = append(duplicates, id)
		}
		ids = append(ids, id)
	}

	if len(duplicates) > 0 {
		return nil, shared.Validation(msgDuplicateBookIDs, duplicates...)
	}
	return ids, nil
}

// Add appends every requested book to the user's favorites, all or nothing.
func (s *favoriteService) Add(ctx context.Context, userID string, bookIDs string) (*dto.FavoriteListResponse, error) {
	ids, err := ParseBookIDs(bookIDs)
	if err != nil {
		var appErr *shared.Error
		if errors.As(err, &appErr) && appErr.Message == msgDuplicateBookIDs {
			metrics.RecordFavoriteRejection("duplicate_in_request")
		}
		return nil, err
	}

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.repo.AddMany(ctx, userID, ids)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.RecordFavoriteRejection("already_favorited")
			return nil, shared.Conflict("book already in favorites")
		}
		return nil, shared.Internal("failed to add favorites", err)
	}
	if len(conflicts) > 0 {
		metrics.RecordFavoriteRejection("already_favorited")
		return nil, shared.Conflict("books already in favorites", inRequestOrder(ids, conflicts)...)
	}

	metrics.RecordFavoriteWrite("add", len(ids))
	logger.Log.Debugw("favorites added", "user_id", userID, "count", len(ids))

	return s.listFor(ctx, user)
}

func (s *favoriteService) Remove(ctx context.Context, userID string, bookID string) (*dto.FavoriteListResponse, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, shared.Validation("book_id is required")
	}

	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.Remove(ctx, userID, bookID)
	if err != nil {
		return nil, shared.Internal("failed to remove favorite", err)
	}
	if !removed {
		return nil, ErrNotFavorited
	}

	metrics.RecordFavoriteWrite("remove", 1)
	return s.listFor(ctx, user)
}

func (s *favoriteService) List(ctx context.Context, userID string) (*dto.FavoriteListResponse, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.listFor(ctx, user)
}

func (s *favoriteService) Contains(ctx context.Context, userID string, bookID string) (bool, error) {
	if strings.TrimSpace(bookID) == "" {
		return false, shared.Validation("book_id is required")
	}

	if _, err := s.requireUser(ctx, userID); err != nil {
		return false, err
	}

	exists, err := s.repo.Exists(ctx, userID, bookID)
	if err != nil {
		return false, shared.Internal("failed to check favorite", err)
	}
	return exists, nil
}

func (s *favoriteService) listFor(ctx context.Context, user *models.User) (*dto.FavoriteListResponse, error) {
	ids, err := s.repo.List(ctx, user.ID)
	if err != nil {
		return nil, shared.Internal("failed to list favorites", err)
	}
	return &dto.FavoriteListResponse{
		UserID:   user.ID,
		Username: user.Username,
		BookIDs:  ids,
		Total:    len(ids),
	}, nil
}

func (s *favoriteService) requireUser(ctx context.Context, userID string) (*models.User, error) {
	return findUser(ctx, s.userRepo, userID)
}

// findUser maps a missing row to ErrUserNotFound and anything else to an internal error
func findUser(ctx context.Context, userRepo repository.UserRepository, userID string) (*models.User, error) {
	user, err := userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, shared.Internal("failed to look up user", err)
	}
	return user, nil
}

// inRequestOrder returns the members of subset in the order they appear in ids
func inRequestOrder(ids, subset []string) []string {
	want := make(map[string]bool, len(subset))
	for _, id := range subset {
		want[id] = true
	}
	ordered := make([]string, 0, len(subset))
	for _, id := range ids {
		if want[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered
}
