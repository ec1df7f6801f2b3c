package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenConfig carries signing parameters. TTLs are in seconds.
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  int
	RefreshTTL int
}

// GenerateTokenPair generates a new JWT token pair
func GenerateTokenPair(userID uuid.UUID, username string, cfg TokenConfig) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(time.Duration(cfg.AccessTTL) * time.Second)
	refreshExp := now.Add(time.Duration(cfg.RefreshTTL) * time.Second)

	access, err := sign(newClaims(userID, username, tokenTypeAccess, cfg.Issuer, now, accessExp), cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := sign(newClaims(userID, username, tokenTypeRefresh, cfg.Issuer, now, refreshExp), cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp,
	}, nil
}

// ValidateToken validates an access token and returns the claims
func ValidateToken(tokenString, secret string) (*Claims, error) {
	return parse(tokenString, secret, tokenTypeAccess)
}

// RefreshAccessToken issues a new access token from a valid refresh token.
// The refresh token itself is returned unchanged.
func RefreshAccessToken(refreshToken string, cfg TokenConfig) (*TokenPair, error) {
	claims, err := parse(refreshToken, cfg.Secret, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	accessExp := now.Add(time.Duration(cfg.AccessTTL) * time.Second)
	access, err := sign(newClaims(claims.UserID, claims.Username, tokenTypeAccess, cfg.Issuer, now, accessExp), cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign new access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}, nil
}

func newClaims(userID uuid.UUID, username, tokenType, issuer string, now, exp time.Time) Claims {
	return Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID.String(),
		},
	}
}

func sign(claims Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parse(tokenString, secret, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
