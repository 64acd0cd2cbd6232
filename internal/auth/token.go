package auth

import (
	"errors"
	"time"
	_ "time/tzdata"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrTokenType    = errors.New("token type mismatch")
)

// Claims несут часовой пояс пользователя, чтобы "сегодня" считалось по его календарю.
type Claims struct {
	TokenType TokenType `json:"typ"`
	Timezone  string    `json:"tz,omitempty"`
	jwt.RegisteredClaims
}

// Location возвращает часовой пояс из токена; неизвестный пояс дает UTC.
func (c *Claims) Location() *time.Location {
	return LoadLocation(c.Timezone)
}

// Subject is the identity a token pair is issued for.
type Subject struct {
	UserID   uuid.UUID
	Timezone string
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager инициализирует менеджер JWT токенов.
func NewTokenManager(secret string, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// NewTokenPair создает пару access/refresh токенов. refreshTokenID становится jti
// refresh-токена и ключом его записи в базе.
func (m *TokenManager) NewTokenPair(subject Subject, refreshTokenID uuid.UUID) (TokenPair, error) {
	now := time.Now()

	accessToken, err := m.sign(Claims{
		TokenType:        TokenTypeAccess,
		Timezone:         subject.Timezone,
		RegisteredClaims: m.registered(subject.UserID, uuid.New(), now, m.accessTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := m.sign(Claims{
		TokenType:        TokenTypeRefresh,
		RegisteredClaims: m.registered(subject.UserID, refreshTokenID, now, m.refreshTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  now.Add(m.accessTTL),
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}, nil
}

// ParseAccessToken валидирует access-токен и возвращает claims.
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parseToken(tokenString, TokenTypeAccess)
}

// ParseRefreshToken валидирует refresh-токен и возвращает claims.
func (m *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.parseToken(tokenString, TokenTypeRefresh)
}

func (m *TokenManager) registered(userID, tokenID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   userID.String(),
		ID:        tokenID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (m *TokenManager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *TokenManager) parseToken(tokenString string, tokenType TokenType) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithIssuer(m.issuer))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrTokenType
	}

	return claims, nil
}

// LoadLocation разбирает имя часового пояса IANA; пустое или неизвестное имя дает UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
