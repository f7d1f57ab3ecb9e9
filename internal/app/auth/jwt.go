package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims - полезная нагрузка токена API
type Claims struct {
	UserID uint   `json:"user_id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
	Type   string `json:"type"` // access / refresh
	jwt.RegisteredClaims
}

// JWTService - выпуск и проверка HS256-токенов для JSON API
type JWTService struct {
	secret        []byte
	accessExpire  time.Duration
	refreshExpire time.Duration
}

func NewJWTService(secret string, accessExpire, refreshExpire time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpire:  accessExpire,
		refreshExpire: refreshExpire,
	}
}

// GenerateAccessToken - короткоживущий токен доступа
func (s *JWTService) GenerateAccessToken(userID uint, login, role string) (string, error) {
	return s.generate(userID, login, role, TokenTypeAccess, s.accessExpire)
}

// GenerateRefreshToken - токен обновления
func (s *JWTService) GenerateRefreshToken(userID uint, login, role string) (string, error) {
	return s.generate(userID, login, role, TokenTypeRefresh, s.refreshExpire)
}

func (s *JWTService) generate(userID uint, login, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Login:  login,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken - проверка подписи и срока жизни, возврат claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTokenPair - новая пара токенов по действующему refresh-токену
func (s *JWTService) RefreshTokenPair(refreshToken string) (string, string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if claims.Type != TokenTypeRefresh {
		return "", "", ErrInvalidToken
	}

	access, err := s.GenerateAccessToken(claims.UserID, claims.Login, claims.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.GenerateRefreshToken(claims.UserID, claims.Login, claims.Role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// AccessExpire - срок жизни access-токена (для поля expires_at в ответе)
func (s *JWTService) AccessExpire() time.Duration {
	return s.accessExpire
}
