package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/infrastructure/config"
)

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims identify a procurement user. The role rides in both token kinds
// so refreshing never needs a user lookup; the jti is what logout revokes.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string        `json:"user_id"`
	Email        string        `json:"email,omitempty"`
	Role         identity.Role `json:"role"`
	TokenType    TokenType     `json:"token_type"`
	RefreshCount int           `json:"refresh_count,omitempty"`
}

// Actor converts the claims into the workflow actor
func (c *Claims) Actor() (identity.Actor, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil || !c.Role.IsValid() {
		return identity.Actor{}, ErrInvalidClaims
	}
	return identity.NewActor(userID, c.Role), nil
}

// GetRemainingTTL is how long a revoked jti must stay blacklisted
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// JWTService signs and verifies HS256 tokens. Refresh tokens use their
// own secret when one is configured.
type JWTService struct {
	keys       map[TokenType]signingKey
	issuer     string
	maxRefresh int
	parser     *jwt.Parser
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &JWTService{
		keys: map[TokenType]signingKey{
			TokenTypeAccess:  {secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
			TokenTypeRefresh: {secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		},
		issuer:     cfg.Issuer,
		maxRefresh: cfg.MaxRefreshCount,
		parser:     jwt.NewParser(opts...),
	}
}

// GenerateTokenInput is the signed-in user
type GenerateTokenInput struct {
	UserID uuid.UUID
	Email  string
	Role   identity.Role
}

// GenerateTokenPair issues a fresh pair at login
func (s *JWTService) GenerateTokenPair(in GenerateTokenInput) (*TokenPair, error) {
	return s.issue(Claims{UserID: in.UserID.String(), Email: in.Email, Role: in.Role}, time.Now())
}

// RefreshTokenPair trades a refresh token for a new pair, up to the
// configured number of refreshes per login.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.RefreshCount >= s.maxRefresh {
		return nil, ErrMaxRefreshExceeded
	}
	return s.issue(Claims{
		UserID:       claims.UserID,
		Email:        claims.Email,
		Role:         claims.Role,
		RefreshCount: claims.RefreshCount + 1,
	}, time.Now())
}

func (s *JWTService) issue(base Claims, now time.Time) (*TokenPair, error) {
	pair := &TokenPair{TokenType: "Bearer"}

	access := base
	access.RefreshCount = 0
	token, exp, err := s.sign(TokenTypeAccess, access, now)
	if err != nil {
		return nil, err
	}
	pair.AccessToken, pair.AccessTokenExpiresAt = token, exp

	refresh := base
	refresh.Email = ""
	token, exp, err = s.sign(TokenTypeRefresh, refresh, now)
	if err != nil {
		return nil, err
	}
	pair.RefreshToken, pair.RefreshTokenExpiresAt = token, exp
	return pair, nil
}

func (s *JWTService) sign(kind TokenType, claims Claims, now time.Time) (string, time.Time, error) {
	key := s.keys[kind]
	exp := now.Add(key.ttl)
	claims.TokenType = kind
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(exp),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(key.secret)
	return signed, exp, err
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.verify(TokenTypeAccess, token)
}

func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.verify(TokenTypeRefresh, token)
}

func (s *JWTService) verify(kind TokenType, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.keys[kind].secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	if claims.TokenType != kind {
		return nil, ErrInvalidTokenType
	}
	if _, err := claims.Actor(); err != nil {
		return nil, err
	}
	return claims, nil
}
