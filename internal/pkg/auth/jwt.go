package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/edustack/communityhub/internal/app/models"
	"github.com/edustack/communityhub/internal/pkg/apperrors"
)

// JWT errors, aliased to the application sentinels so callers can match
// them with errors.Is at either level.
var (
	ErrInvalidToken  = apperrors.ErrTokenInvalid
	ErrExpiredToken  = apperrors.ErrTokenExpired
	ErrInvalidFormat = errors.New("invalid token format")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService handles issuing and validating actor tokens
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// ActorClaims identifies which concrete actor a token belongs to
type ActorClaims struct {
	ActorKind string `json:"actorKind"`
	ActorID   int64  `json:"actorId"`
	jwt.RegisteredClaims
}

// GenerateToken creates an access token for the given actor
func (s *JWTService) GenerateToken(actor models.ActorRef) (string, error) {
	expiry := time.Now().Add(s.config.AccessTokenExp)

	claims := &ActorClaims{
		ActorKind: string(actor.Kind),
		ActorID:   actor.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.config.TokenIssuer,
			Subject:   actor.String(),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to create access token: %w", err)
	}

	return signed, nil
}

// ResolveActor validates a token string and resolves the actor it identifies
func (s *JWTService) ResolveActor(tokenString string) (models.ActorRef, error) {
	if tokenString == "" {
		return models.ActorRef{}, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.ActorRef{}, ErrExpiredToken
		}
		return models.ActorRef{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid {
		return models.ActorRef{}, ErrInvalidToken
	}

	kind, err := models.ParseActorKind(claims.ActorKind)
	if err != nil || claims.ActorID <= 0 {
		return models.ActorRef{}, ErrInvalidToken
	}

	return models.ActorRef{Kind: kind, ID: claims.ActorID}, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), nil
	}

	return authHeader, nil
}
