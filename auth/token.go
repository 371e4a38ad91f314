package auth

import (
	"couple-chat/domain"
	"couple-chat/errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "couple-chat"

// Authenticator turns a bearer token into the user it was issued to.
type Authenticator interface {
	Authenticate(token string) (domain.UserID, error)
}

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	jwt.RegisteredClaims
}

// TokenAuthenticator issues and checks HS256 tokens signed with a shared secret.
// Tokens are normally issued by the account service in front of the chat;
// GenerateToken exists for tooling and tests.
type TokenAuthenticator struct {
	secret        []byte
	tokenDuration time.Duration
}

var _ Authenticator = (*TokenAuthenticator)(nil)

func NewTokenAuthenticator(secret string, tokenDuration time.Duration) *TokenAuthenticator {
	return &TokenAuthenticator{secret: []byte(secret), tokenDuration: tokenDuration}
}

// GenerateToken creates a signed JWT for a specific user.
func (a *TokenAuthenticator) GenerateToken(userID domain.UserID) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: string(userID),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// Create the token using the HS256 algorithm (HMAC with SHA256).
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (a *TokenAuthenticator) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		if err := ValidateClaims(*claims); err != nil {
			return nil, err
		}
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

func (a *TokenAuthenticator) Authenticate(token string) (domain.UserID, error) {
	if token == "" {
		return "", errors.ErrUnauthenticated
	}
	claims, err := a.ValidateToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrUnauthenticated, err)
	}
	return domain.UserID(claims.UserID), nil
}
