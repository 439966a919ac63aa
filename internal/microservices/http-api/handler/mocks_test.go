package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/service"
	"bookhub/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const bearer = "Bearer good-token"

// MockAuthService mocks the AuthService interface.
// ValidateToken accepts "good-token" for user u1 without recording a call.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	args := m.Called(ctx, username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, login, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(_ context.Context, tokenString string) (*shared.AuthClaims, error) {
	if tokenString != "good-token" {
		return nil, service.ErrInvalidToken
	}
	return &shared.AuthClaims{UserID: "u1", UserName: "alice", SessionID: "s1"}, nil
}

type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) Add(ctx context.Context, userID string, bookIDs string) (*dto.FavoriteListResponse, error) {
	args := m.Called(ctx, userID, bookIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FavoriteListResponse), args.Error(1)
}

func (m *MockFavoriteService) Remove(ctx context.Context, userID string, bookID string) (*dto.FavoriteListResponse, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FavoriteListResponse), args.Error(1)
}

func (m *MockFavoriteService) List(ctx context.Context, userID string) (*dto.FavoriteListResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FavoriteListResponse), args.Error(1)
}

func (m *MockFavoriteService) Contains(ctx context.Context, userID string, bookID string) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) Upsert(ctx context.Context, userID string, bookID string, stars int, comment *string) (*dto.UpsertRatingResponse, error) {
	args := m.Called(ctx, userID, bookID, stars, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpsertRatingResponse), args.Error(1)
}

func (m *MockRatingService) Remove(ctx context.Context, userID string, bookID string) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRatingService) Stats(ctx context.Context, bookID string) (*dto.RatingStatsResponse, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RatingStatsResponse), args.Error(1)
}

func (m *MockRatingService) ListByBook(ctx context.Context, bookID string, limit int) (*dto.RatingListResponse, error) {
	args := m.Called(ctx, bookID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RatingListResponse), args.Error(1)
}

func (m *MockRatingService) ListByUser(ctx context.Context, userID string) (*dto.RatingListResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RatingListResponse), args.Error(1)
}

func (m *MockRatingService) AlreadyRated(ctx context.Context, userID string, bookID string) (*dto.AlreadyRatedResponse, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AlreadyRatedResponse), args.Error(1)
}

func (m *MockRatingService) TopRated(ctx context.Context, limit int, minRatings int) ([]dto.TopRatedBook, error) {
	args := m.Called(ctx, limit, minRatings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.TopRatedBook), args.Error(1)
}

type testAPI struct {
	router    *gin.Engine
	auth      *MockAuthService
	favorites *MockFavoriteService
	ratings   *MockRatingService
}

func setupRouter(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &testAPI{
		auth:      new(MockAuthService),
		favorites: new(MockFavoriteService),
		ratings:   new(MockRatingService),
	}
	router, err := NewRouter(Services{
		Auth:      api.auth,
		Favorites: api.favorites,
		Ratings:   api.ratings,
	}, RouterOptions{})
	require.NoError(t, err)
	api.router = router
	return api
}

func (api *testAPI) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func (api *testAPI) authed(method, path, body string) *httptest.ResponseRecorder {
	return api.do(method, path, body, "Authorization", bearer)
}
