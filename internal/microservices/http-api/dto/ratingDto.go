package dto

import (
	"time"

	"bookhub/internal/microservices/http-api/models"
)

// CreateRatingDTO for creating or updating a rating
type CreateRatingDTO struct {
	Stars   int     `json:"stars" binding:"required,min=1,max=5"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// RatingResponse for returning rating information, Username is the author's display name
type RatingResponse struct {
	ID       int64     `json:"id"`
	BookID   string    `json:"book_id"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Stars    int       `json:"stars"`
	Comment  *string   `json:"comment,omitempty"`
	RatedAt  time.Time `json:"rated_at"`
}

// FromModelToRatingResponse converts a Rating model to RatingResponse DTO
func FromModelToRatingResponse(rating *models.Rating) *RatingResponse {
	return &RatingResponse{
		ID:       rating.ID,
		BookID:   rating.BookID,
		UserID:   rating.UserID,
		Username: rating.User.Username,
		Stars:    rating.Stars,
		Comment:  rating.Comment,
		RatedAt:  rating.RatedAt,
	}
}

// UpsertRatingResponse reports whether the write created a new rating or replaced one
type UpsertRatingResponse struct {
	Created bool           `json:"created"`
	Rating  RatingResponse `json:"rating"`
}

// UserRatingResponse for returning user's own rating inline
type UserRatingResponse struct {
	ID      int64     `json:"id"`
	Stars   int       `json:"stars"`
	Comment *string   `json:"comment,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// AlreadyRatedResponse answers "has this user rated this book" without a second round trip
type AlreadyRatedResponse struct {
	Rated  bool                `json:"rated"`
	Rating *UserRatingResponse `json:"rating,omitempty"`
}

// RatingListResponse for the ratings of one book or one user
type RatingListResponse struct {
	Data  []RatingResponse `json:"data"`
	Total int              `json:"total"`
}

// RatingStatsResponse aggregates the ratings of one book.
// Distribution always holds keys 1..5; Percentages are rounded to one decimal.
type RatingStatsResponse struct {
	BookID       string          `json:"book_id"`
	Mean         float64         `json:"mean"`
	Total        int64           `json:"total"`
	Distribution map[int]int64   `json:"distribution"`
	Percentages  map[int]float64 `json:"percentages"`
}

// TopRatedBook is one entry of the best-rated books ranking
type TopRatedBook struct {
	BookID string  `json:"book_id"`
	Mean   float64 `json:"mean"`
	Total  int64   `json:"total"`
}
