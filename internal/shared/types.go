package shared

// shared types across the application
// 1st: auth claims carried in the gin context after token validation
// 2nd: star bounds shared by the rating service and its DTOs

const (
	MinStars = 1
	MaxStars = 5
)

type AuthClaims struct {
	UserID    string `json:"user_id"`    // user identifier(UUID)
	UserName  string `json:"username"`   // username
	SessionID string `json:"session_id"` // session the token was issued for
}
