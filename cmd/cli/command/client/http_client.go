package client

// http_client.go = typed access to the bookhub HTTP API for the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookhub/internal/microservices/http-api/dto"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s", e.StatusCode, e.Message)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, ", ")
	}
	return msg
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON, decodes a 2xx answer into out and anything else into an APIError
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func bookPath(bookID string) string {
	return "/api/books/" + url.PathEscape(bookID) + "/ratings"
}

// Auth

func (c *HTTPClient) Register(ctx context.Context, request *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var result dto.RegisterResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, request *dto.LoginRequest) (*dto.AuthResponse, error) {
	var result dto.AuthResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	return err
}

// Favorites

// AddFavorites adds one id or several, joined with commas, to the user's favorites
func (c *HTTPClient) AddFavorites(ctx context.Context, bookIDs ...string) (*dto.FavoriteListResponse, error) {
	var result dto.FavoriteListResponse
	req := dto.AddFavoriteRequest{BookID: strings.Join(bookIDs, ",")}
	if _, err := c.do(ctx, http.MethodPost, "/api/favorites", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, bookID string) (*dto.FavoriteListResponse, error) {
	var result dto.FavoriteListResponse
	if _, err := c.do(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(bookID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListFavorites(ctx context.Context) (*dto.FavoriteListResponse, error) {
	var result dto.FavoriteListResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) IsFavorite(ctx context.Context, bookID string) (bool, error) {
	var result dto.FavoriteCheckResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/favorites/"+url.PathEscape(bookID), nil, &result); err != nil {
		return false, err
	}
	return result.IsFavorite, nil
}

// Ratings

func (c *HTTPClient) Rate(ctx context.Context, bookID string, stars int, comment *string) (*dto.UpsertRatingResponse, error) {
	var result dto.UpsertRatingResponse
	req := dto.CreateRatingDTO{Stars: stars, Comment: comment}
	if _, err := c.do(ctx, http.MethodPost, bookPath(bookID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetMyRating(ctx context.Context, bookID string) (*dto.AlreadyRatedResponse, error) {
	var result dto.AlreadyRatedResponse
	if _, err := c.do(ctx, http.MethodGet, bookPath(bookID)+"/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteRating reports false when there was no rating to delete
func (c *HTTPClient) DeleteRating(ctx context.Context, bookID string) (bool, error) {
	_, err := c.do(ctx, http.MethodDelete, bookPath(bookID), nil, nil)
	if IsStatus(err, http.StatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) ListBookRatings(ctx context.Context, bookID string, limit int) (*dto.RatingListResponse, error) {
	path := bookPath(bookID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var result dto.RatingListResponse
	if _, err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetStats returns nil when the book has no ratings
func (c *HTTPClient) GetStats(ctx context.Context, bookID string) (*dto.RatingStatsResponse, error) {
	var result dto.RatingStatsResponse
	_, err := c.do(ctx, http.MethodGet, bookPath(bookID)+"/stats", nil, &result)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) MyRatings(ctx context.Context) (*dto.RatingListResponse, error) {
	var result dto.RatingListResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/users/me/ratings", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) TopRated(ctx context.Context, limit, minRatings int) ([]dto.TopRatedBook, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if minRatings > 0 {
		query.Set("min_ratings", strconv.Itoa(minRatings))
	}
	path := "/api/ratings/top"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result struct {
		Data []dto.TopRatedBook `json:"data"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
