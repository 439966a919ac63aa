package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRate_CreatedThenUpdated(t *testing.T) {
	api := setupRouter(t)
	rating := dto.RatingResponse{ID: 1, BookID: "bk1", UserID: "u1", Username: "alice", Stars: 4, RatedAt: time.Now()}

	api.ratings.On("Upsert", mock.Anything, "u1", "bk1", 4, (*string)(nil)).
		Return(&dto.UpsertRatingResponse{Created: true, Rating: rating}, nil).Once()
	api.ratings.On("Upsert", mock.Anything, "u1", "bk1", 4, (*string)(nil)).
		Return(&dto.UpsertRatingResponse{Created: false, Rating: rating}, nil).Once()

	w := api.authed(http.MethodPost, "/api/books/bk1/ratings", `{"stars":4}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.authed(http.MethodPost, "/api/books/bk1/ratings", `{"stars":4}`)
	assert.Equal(t, http.StatusOK, w.Code)
	api.ratings.AssertExpectations(t)
}

func TestRate_WithComment(t *testing.T) {
	api := setupRouter(t)
	api.ratings.On("Upsert", mock.Anything, "u1", "bk1", 5, mock.MatchedBy(func(c *string) bool {
		return c != nil && *c == "great"
	})).Return(&dto.UpsertRatingResponse{Created: true}, nil)

	w := api.authed(http.MethodPost, "/api/books/bk1/ratings", `{"stars":5,"comment":"great"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRate_InvalidStars(t *testing.T) {
	for _, body := range []string{`{"stars":0}`, `{"stars":6}`, `{}`, `{"stars":"five"}`} {
		api := setupRouter(t)

		w := api.authed(http.MethodPost, "/api/books/bk1/ratings", body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		api.ratings.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestRate_RequiresAuth(t *testing.T) {
	api := setupRouter(t)

	w := api.do(http.MethodPost, "/api/books/bk1/ratings", `{"stars":4}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteRating(t *testing.T) {
	api := setupRouter(t)
	api.ratings.On("Remove", mock.Anything, "u1", "bk1").Return(true, nil).Once()
	api.ratings.On("Remove", mock.Anything, "u1", "bk1").Return(false, nil).Once()

	assert.Equal(t, http.StatusOK, api.authed(http.MethodDelete, "/api/books/bk1/ratings", "").Code)
	assert.Equal(t, http.StatusNotFound, api.authed(http.MethodDelete, "/api/books/bk1/ratings", "").Code)
}

func TestRatingStats(t *testing.T) {
	api := setupRouter(t)
	api.ratings.On("Stats", mock.Anything, "bk1").Return(&dto.RatingStatsResponse{
		BookID:       "bk1",
		Mean:         4.0,
		Total:        3,
		Distribution: map[int]int64{1: 0, 2: 0, 3: 1, 4: 1, 5: 1},
		Percentages:  map[int]float64{1: 0, 2: 0, 3: 33.3, 4: 33.3, 5: 33.3},
	}, nil)

	w := api.do(http.MethodGet, "/api/books/bk1/ratings/stats", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.RatingStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4.0, resp.Mean)
	assert.Equal(t, int64(1), resp.Distribution[5])
	assert.Equal(t, int64(0), resp.Distribution[1])
}

func TestRatingStats_NoRatings(t *testing.T) {
	api := setupRouter(t)
	api.ratings.On("Stats", mock.Anything, "bk1").Return(nil, nil)

	w := api.do(http.MethodGet, "/api/books/bk1/ratings/stats", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRatingsByBook(t *testing.T) {
	api := setupRouter(t)
	api.ratings.On("ListByBook", mock.Anything, "bk1", 0).Return(&dto.RatingListResponse{Data: []dto.RatingResponse{}}, nil)
	api.ratings.On("ListByBook", mock.Anything, "bk1", 3).Return(&dto.RatingListResponse{Data: []dto.RatingResponse{}}, nil)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/books/bk1/ratings", "").Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/books/bk1/ratings?limit=3", "").Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/books/bk1/ratings?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/books/bk1/ratings?limit=-1", "").Code)
	api.ratings.AssertExpectations(t)
}

func TestMyRatings(t *testing.T) {
	api := setupRouter(t)
	api.ratings.On("ListByUser", mock.Anything, "u1").Return(&dto.RatingListResponse{Data: []dto.RatingResponse{}}, nil)
	api.ratings.On("AlreadyRated", mock.Anything, "u1", "bk1").Return(&dto.AlreadyRatedResponse{Rated: false}, nil)

	w := api.authed(http.MethodGet, "/api/users/me/ratings", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.authed(http.MethodGet, "/api/books/bk1/ratings/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rated":false}`, w.Body.String())
}

func TestTopRated(t *testing.T) {
	api := setupRouter(t)
	api.ratings.On("TopRated", mock.Anything, 5, 2).Return([]dto.TopRatedBook{{BookID: "bk1", Mean: 4.5, Total: 2}}, nil)

	w := api.do(http.MethodGet, "/api/ratings/top?limit=5&min_ratings=2", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"book_id":"bk1","mean":4.5,"total":2}],"total":1}`, w.Body.String())
}

func TestRatingErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{shared.Validation("invalid book_id"), http.StatusBadRequest},
		{shared.NotFound("user not found"), http.StatusNotFound},
		{shared.Conflict("conflict"), http.StatusConflict},
		{shared.Unauthorized("nope"), http.StatusUnauthorized},
		{shared.Internal("db", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		api := setupRouter(t)
		api.ratings.On("ListByUser", mock.Anything, "u1").Return(nil, tt.err)

		w := api.authed(http.MethodGet, "/api/users/me/ratings", "")

		assert.Equal(t, tt.status, w.Code, tt.err.Error())
	}
}
