package service

import (
	"context"
	"errors"
	"time"

	"bookhub/internal/config"
	"bookhub/internal/logger"
	"bookhub/internal/metrics"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameInUse          = shared.Conflict("username already in use")
	ErrEmailInUse         = shared.Conflict("email already in use")
	ErrInvalidCredentials = shared.Unauthorized("invalid credentials")
	ErrInvalidToken       = shared.Unauthorized("invalid token")
)

// Claims is the JWT payload. The registered ID (jti) is the session ID.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginResult is what a successful login hands back to the caller
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	Login(ctx context.Context, login, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	ValidateToken(ctx context.Context, tokenString string) (*shared.AuthClaims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	sessions  repository.SessionStore
	validate  *validator.Validate
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessions repository.SessionStore,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		sessions:  sessions,
		validate:  validator.New(),
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.JWTExpiry,
		now:       time.Now,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *authService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	if err := s.validateRegistration(username, password, email); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrNameInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.Internal("failed to look up username", err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.Internal("failed to look up email", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, shared.Internal("failed to hash password", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, shared.Conflict("username or email already in use")
		}
		return nil, shared.Internal("failed to create user", err)
	}

	logger.Log.Infow("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *authService) validateRegistration(username, password, email string) error {
	var details []string
	if n := len(username); n < 3 || n > 50 {
		details = append(details, "username must be 3 to 50 characters")
	}
	if n := len(password); n < 8 || n > auth.MaxPasswordLength {
		details = append(details, "password must be 8 to 72 bytes")
	}
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		details = append(details, "email must be a valid address")
	}
	if len(details) > 0 {
		return shared.Validation("invalid registration", details...)
	}
	return nil
}

// Login authenticates by username or email and opens a session backing the returned token.
func (s *authService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.CompareDummy(password)
			metrics.RecordSessionEvent("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, shared.Internal("failed to look up user", err)
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		metrics.RecordSessionEvent("login_failed")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, shared.Internal("failed to open session", err)
	}

	token, err := s.signToken(user, session)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, shared.Internal("failed to sign token", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Warnw("failed to update last login", "user_id", user.ID, "error", err)
	}

	metrics.RecordSessionEvent("login")
	logger.Log.Infow("user logged in", "user_id", user.ID, "session_id", session.ID)

	return &LoginResult{AccessToken: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func (s *authService) signToken(user *models.User, session *models.Session) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Logout revokes the session; the token stops validating immediately.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return shared.Internal("failed to close session", err)
	}
	metrics.RecordSessionEvent("logout")
	logger.Log.Infow("session closed", "session_id", sessionID)
	return nil
}

// ValidateToken checks signature, expiry and that the backing session still exists.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*shared.AuthClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, shared.Internal("failed to load session", err)
	}
	if session.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	return &shared.AuthClaims{
		UserID:    claims.UserID,
		UserName:  claims.Username,
		SessionID: session.ID,
	}, nil
}
