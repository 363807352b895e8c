package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the claim set embedded in both session tokens. A valid session
// carries the same username/email/role triple in its access and refresh
// token.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	ID       string `json:"id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Complete reports whether every claim authorization depends on is present.
func (c *Claims) Complete() bool {
	return c.Username != "" && c.Email != "" && c.Role != ""
}

// SameUser reports whether two claim sets identify the same session user.
func (c *Claims) SameUser(other *Claims) bool {
	return c.Username == other.Username &&
		c.Email == other.Email &&
		c.Role == other.Role
}

// Codec signs and verifies session tokens with a process-wide secret. TTLs
// are fixed at construction; the secret is never rotated mid-process.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken signs a short-lived access token for the given claims.
func (c *Codec) IssueAccessToken(claims Claims) (string, error) {
	return c.issue(claims, c.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the given claims.
func (c *Codec) IssueRefreshToken(claims Claims) (string, error) {
	return c.issue(claims, c.refreshTTL)
}

func (c *Codec) issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "ezwallet",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a session token. Expiry is the only failure
// reported as ErrExpiredToken; every other structural or signature problem
// is ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
