package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crucial707/reminders/internal/models"
)

// ErrInvalidToken covers malformed, badly signed and expired bearer tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims carry the session token as the JWT ID, so deleting the session revokes the JWT.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the subject as an int.
func (c *Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

// Tokens signs and parses HS256 API tokens.
type Tokens struct {
	secret []byte
}

func NewTokens(secret []byte) *Tokens {
	return &Tokens{secret: secret}
}

func (t *Tokens) Issue(user *models.User, sessionToken string, expiresAt time.Time) (string, error) {
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			ID:        sessionToken,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Parse(s string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(s, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
