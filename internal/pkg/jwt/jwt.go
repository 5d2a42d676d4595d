package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"musicportal/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownRole  = errors.New("unknown role in token")
)

// Service turns bearer tokens minted by the portal's auth component into an acting user.
// Issue exists for the seeder and tests.
type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwtlib.RegisteredClaims
}

// Actor checks the claimed role against the portal roles.
func (c *Claims) Actor() (domain.Actor, error) {
	role := domain.UserRole(c.Role)
	if !role.Valid() {
		return domain.Actor{}, ErrUnknownRole
	}
	return domain.Actor{UserID: c.UserID, Role: role}, nil
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

func (s *Service) Issue(actor domain.Actor) (string, error) {
	if actor.UserID <= 0 || !actor.Role.Valid() {
		return "", ErrInvalidToken
	}
	now := time.Now()
	claims := Claims{
		UserID: actor.UserID,
		Role:   string(actor.Role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate verifies signature and expiry, then resolves the acting user.
func (s *Service) Authenticate(tokenStr string) (domain.Actor, error) {
	var claims Claims
	token, err := jwtlib.ParseWithClaims(tokenStr, &claims, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID <= 0 {
		return domain.Actor{}, ErrInvalidToken
	}
	return claims.Actor()
}
