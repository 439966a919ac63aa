package dto

// AddFavoriteRequest: payload to add one book or a comma-joined list of books to favorites
type AddFavoriteRequest struct {
	BookID string `json:"book_id" binding:"required"`
}

// FavoriteListResponse: the user's favorites in insertion order
type FavoriteListResponse struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	BookIDs  []string `json:"favorite_books"`
	Total    int      `json:"total"`
}

// FavoriteCheckResponse: membership test result
type FavoriteCheckResponse struct {
	BookID     string `json:"book_id"`
	IsFavorite bool   `json:"is_favorite"`
}
