// Package auth issues and verifies the bearer tokens of the API and the
// identity tokens sent to third-party modules.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hrygo/eidos/internal/errors"
)

const (
	// Issuer is the iss claim of every token.
	Issuer = "eidos"
	// AccessTokenAudience is the aud claim of user access tokens.
	AccessTokenAudience = "user.access-token"
	// ModuleTokenAudience is the aud claim of identity tokens sent to modules.
	ModuleTokenAudience = "module.identity"

	// AccessTokenDuration is the lifetime of a user access token.
	AccessTokenDuration = 7 * 24 * time.Hour
	// ModuleTokenDuration is the lifetime of a module identity token.
	ModuleTokenDuration = 5 * time.Minute
)

// Claims are the JWT claims of both token kinds. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens with the server secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// GenerateAccessToken mints an access token for userID. A non-positive ttl
// uses AccessTokenDuration.
func (s *TokenService) GenerateAccessToken(userID int32, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = AccessTokenDuration
	}
	return s.sign(userID, AccessTokenAudience, ttl)
}

// SignModuleToken mints the short-lived identity token for a module call.
func (s *TokenService) SignModuleToken(userID int32) (string, error) {
	return s.sign(userID, ModuleTokenAudience, ModuleTokenDuration)
}

func (s *TokenService) sign(userID int32, audience string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.FormatInt(int64(userID), 10),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeUnauthorized, "failed to sign token")
	}
	return token, nil
}

// ParseAccessToken verifies an access token and returns its user id.
func (s *TokenService) ParseAccessToken(token string) (int32, error) {
	return s.parse(token, AccessTokenAudience)
}

// ParseModuleToken verifies a module identity token and returns its user id.
func (s *TokenService) ParseModuleToken(token string) (int32, error) {
	return s.parse(token, ModuleTokenAudience)
}

func (s *TokenService) parse(token, audience string) (int32, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, errors.Unauthorized("invalid or expired token")
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.Unauthorized("invalid token subject")
	}
	return int32(id), nil
}
