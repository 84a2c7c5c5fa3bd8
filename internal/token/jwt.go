package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/numbook-server/internal/clock"
	"github.com/dtroode/numbook-server/internal/model"
)

// TTL is the fixed lifetime of every issued token.
const TTL = 30 * time.Minute

// expiryLeeway keeps a token valid during the second of its exp claim.
// exp has whole-second precision and a token expires once exp < now.
const expiryLeeway = time.Second

// Claims is the signed token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64      `json:"userId"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// JWT implements TokenManager backed by symmetric HMAC-SHA256.
type JWT struct {
	secretKey []byte
	clock     clock.Clock
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string, clk clock.Clock) model.TokenManager {
	return &JWT{secretKey: []byte(secretKey), clock: clk}
}

// Generate creates a token for claims that expires TTL from now.
func (j *JWT) Generate(claims model.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(j.clock.Now().Add(TTL)),
		},
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Parse validates signature and expiry and returns the payload claims.
func (j *JWT) Parse(tokenString string) (model.Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return j.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(expiryLeeway),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		return model.Claims{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.UserID <= 0 {
		return model.Claims{}, fmt.Errorf("token has no user id")
	}

	return model.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
